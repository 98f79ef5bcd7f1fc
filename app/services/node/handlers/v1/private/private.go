// Package private maintains the group of handlers for node administration.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node administration endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Status returns the current status of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.QueryLatestBlock()
	_, mining := h.State.QueryCandidate()
	gen := h.State.QueryGenesis()

	status := Status{
		Blocks:          h.State.QueryChainLength(),
		LatestBlockHash: latest.Hash.String(),
		Complexity:      h.State.QueryComplexity(),
		Mempool:         h.State.QueryMempoolLength(),
		Mining:          mining,
		TransPerBlock:   gen.TransPerBlock,
		MaxNonce:        gen.EndNonce(),
	}

	if h.Evts != nil {
		status.Subscribers = h.Evts.Subscribers()
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// VerifyChain checks the hash linkage and seal of every block.
func (h Handlers) VerifyChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.VerifyChain(); err != nil {
		return errs.NewTrusted(err, http.StatusConflict)
	}

	resp := struct {
		Status string `json:"status"`
		Blocks int    `json:"blocks"`
	}{
		Status: "chain verified",
		Blocks: h.State.QueryChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SetComplexity changes the complexity used for the next mining operation.
func (h Handlers) SetComplexity(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req Complexity
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	h.Log.Infow("set complexity", "traceid", web.GetTraceID(ctx), "complexity", *req.Complexity)
	if err := h.State.SetComplexity(*req.Complexity); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, req, http.StatusOK)
}

// CancelMining signals the background worker to stop the current search.
func (h Handlers) CancelMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("background mining is not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalCancelMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining cancel signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}
