package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// autoMineOperations signals a mining operation on every tick if there is
// work pending.
func (w *Worker) autoMineOperations() {
	w.evHandler("worker: autoMineOperations: G started")
	defer w.evHandler("worker: autoMineOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if w.hasPendingWork() {
				w.SignalStartMining()
			}
		case <-w.shut:
			w.evHandler("worker: autoMineOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation confirms the pending transactions as a new block. The
// operation can be cancelled by SignalCancelMining or a shutdown.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// After running a mining operation, check if a new operation should
	// be signaled again.
	defer func() {
		if w.ticker != nil && w.state.QueryMempoolLength() > 0 {
			w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", w.state.QueryMempoolLength())
			w.SignalStartMining()
		}
	}()

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-w.shut:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: shutdown")
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		block, err := w.state.ConfirmPending(ctx)
		duration := time.Since(t)

		w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

		if err != nil {
			switch {
			case errors.Is(err, database.ErrMiningExhausted):
				w.evHandler("worker: runMiningOperation: MINING: WARNING: nonce range exhausted")
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
		}

		w.sendResult(Result{Block: block, Duration: duration, Err: err})
	}()

	// Wait for both G's to terminate.
	wg.Wait()
}

// hasPendingWork reports whether there are transactions waiting or a
// candidate that still needs to be sealed.
func (w *Worker) hasPendingWork() bool {
	if w.state.QueryMempoolLength() > 0 {
		return true
	}

	_, exists := w.state.QueryCandidate()
	return exists
}
