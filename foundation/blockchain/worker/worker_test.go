package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T, complexity uint16) *state.State {
	t.Helper()

	gen := genesis.Genesis{
		Complexity:    complexity,
		TransPerBlock: 10,
		Transactions:  []database.Transaction{database.NewTransaction("a", 0.5)},
	}

	st, err := state.New(state.Config{
		Genesis:        gen,
		SelectStrategy: selector.StrategyWeight,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

func TestSignalStartMining(t *testing.T) {
	t.Log("Given the need to mine in the background.")
	{
		st := newState(t, 1)
		w := worker.Run(st, worker.Config{})
		defer st.Shutdown()

		w.SignalStartMining()

		select {
		case r := <-w.Results():
			if r.Err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, r.Err)
			}
			t.Logf("\t%s\tShould be able to mine a block.", success)

			if len(r.Block.Trans) != 1 || st.QueryChainLength() != 2 {
				t.Fatalf("\t%s\tShould append the mined block to the chain.", failed)
			}
			t.Logf("\t%s\tShould append the mined block to the chain.", success)

		case <-time.After(10 * time.Second):
			t.Fatalf("\t%s\tShould get a result before the timeout.", failed)
		}
	}
}

func TestSignalCancelMining(t *testing.T) {
	t.Log("Given the need to cancel a background mining operation.")
	{
		st := newState(t, database.HashSize)
		w := worker.Run(st, worker.Config{})
		defer st.Shutdown()

		w.SignalStartMining()

		// Wait for the candidate to exist so the search is running.
		deadline := time.Now().Add(10 * time.Second)
		for {
			if _, exists := st.QueryCandidate(); exists {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould see a candidate before the timeout.", failed)
			}
			time.Sleep(time.Millisecond)
		}

		w.SignalCancelMining()

		select {
		case r := <-w.Results():
			if !errors.Is(r.Err, context.Canceled) {
				t.Fatalf("\t%s\tShould get a cancelled result: %v", failed, r.Err)
			}
			t.Logf("\t%s\tShould get a cancelled result.", success)

		case <-time.After(10 * time.Second):
			t.Fatalf("\t%s\tShould get a result before the timeout.", failed)
		}

		if _, exists := st.QueryCandidate(); !exists {
			t.Fatalf("\t%s\tShould keep the candidate after a cancel.", failed)
		}
		t.Logf("\t%s\tShould keep the candidate after a cancel.", success)
	}
}

func TestAutoMine(t *testing.T) {
	t.Log("Given the need to mine on an interval.")
	{
		st := newState(t, 0)
		w := worker.Run(st, worker.Config{AutoMine: 10 * time.Millisecond})
		defer st.Shutdown()

		select {
		case r := <-w.Results():
			if r.Err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, r.Err)
			}
			t.Logf("\t%s\tShould be able to mine a block on the interval.", success)

		case <-time.After(10 * time.Second):
			t.Fatalf("\t%s\tShould get a result before the timeout.", failed)
		}
	}
}
