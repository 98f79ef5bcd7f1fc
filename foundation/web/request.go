package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// QueryInt returns the integer value of the query string parameter. The
// default is returned when the parameter is missing.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q: %w", key, err)
	}

	return n, nil
}

// Decode reads the body of an HTTP request looking for a JSON document. The
// body is decoded into the provided value and then validated using the
// validate tags on the struct.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := Check(val); err != nil {
		return err
	}

	return nil
}
