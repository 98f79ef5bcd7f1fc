// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// defaultListSize is the number of transactions or blocks returned when
// the client doesn't ask for a specific number.
const defaultListSize = 10

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var stx SubmitTx
	if err := web.Decode(r, &stx); err != nil {
		return err
	}

	tx := database.NewTransaction(stx.Data, *stx.Weight)

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "tx", tx)
	if err := h.State.SubmitTransaction(tx); err != nil {
		if errors.Is(err, selector.ErrNotComparable) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	pending := h.State.QueryMempoolLength()
	metrics.SetMempool(pending)

	resp := struct {
		Status  string `json:"status"`
		Mempool int    `json:"mempool"`
	}{
		Status:  "transaction added to mempool",
		Mempool: pending,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the most recent uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	n, err := listSize(r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toTxs(h.State.QueryRecentTransactions(n)), http.StatusOK)
}

// ConfirmTransactions mines the candidate block and returns it once it has
// been sealed into the chain. The request blocks until mining completes.
func (h Handlers) ConfirmTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	t := time.Now()
	block, err := h.State.ConfirmPending(ctx)
	metrics.AddMiningResult(time.Since(t), err)
	metrics.SetMempool(h.State.QueryMempoolLength())

	if err != nil {
		switch {
		case errors.Is(err, database.ErrMiningExhausted):
			return errs.NewTrusted(err, http.StatusConflict)
		case ctx.Err() != nil:
			return errs.NewTrusted(errors.New("mining cancelled"), http.StatusServiceUnavailable)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(block), http.StatusOK)
}

// SignalMining starts a background mining operation.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("background mining is not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Blocks returns the most recent blocks in the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	n, err := listSize(r)
	if err != nil {
		return err
	}

	blocks := h.State.QueryRecentBlocks(n)

	out := make([]Block, len(blocks))
	for i, block := range blocks {
		out[i] = toBlock(block)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// Candidate returns the block currently being mined.
func (h Handlers) Candidate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, exists := h.State.QueryCandidate()
	if !exists {
		return errs.NewTrusted(state.ErrNoCandidate, http.StatusNotFound)
	}

	return web.Respond(ctx, w, toBlock(block), http.StatusOK)
}

// =============================================================================

// listSize reads the n query parameter used by the list endpoints.
func listSize(r *http.Request) (int, error) {
	n, err := web.QueryInt(r, "n", defaultListSize)
	if err != nil {
		return 0, errs.NewTrusted(err, http.StatusBadRequest)
	}

	if n < 0 {
		return 0, errs.NewTrusted(errors.New("n must not be negative"), http.StatusBadRequest)
	}

	return n, nil
}
