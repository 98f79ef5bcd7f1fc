package cmd

import (
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// requestTimeout bounds every call to the node. Confirming transactions
// blocks until the block is mined so the timeout is generous.
const requestTimeout = 10 * time.Minute

func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(url).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json")
}

func get(path string, result any) error {
	req := newClient().R()
	if result != nil {
		req.SetResult(result)
	}

	return send(req, "GET", path)
}

func post(path string, body any, result any) error {
	req := newClient().R()
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	return send(req, "POST", path)
}

func send(req *resty.Request, method string, path string) error {
	var er errs.Response
	req.SetError(&er)

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	if resp.IsError() {
		if er.Error == "" {
			return errors.Errorf("node responded %s", resp.Status())
		}
		if len(er.Fields) > 0 {
			return errors.WithMessage(fmt.Errorf("%v", er.Fields), er.Error)
		}
		return errors.New(er.Error)
	}

	return nil
}
