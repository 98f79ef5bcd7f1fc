package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// gathered reads a single series value from the default registry. Counters
// and gauges report their value, histograms their sample count.
func gathered(t *testing.T, name string) float64 {
	t.Helper()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to gather the metrics: %v", failed, err)
	}

	for _, mf := range mfs {
		if mf.GetName() != name || len(mf.GetMetric()) == 0 {
			continue
		}

		pb := mf.GetMetric()[0]
		switch {
		case pb.GetCounter() != nil:
			return pb.GetCounter().GetValue()
		case pb.GetGauge() != nil:
			return pb.GetGauge().GetValue()
		case pb.GetHistogram() != nil:
			return float64(pb.GetHistogram().GetSampleCount())
		}
	}

	t.Fatalf("\t%s\tShould find the %s metric.", failed, name)
	return 0
}

func TestRecordMining(t *testing.T) {
	t.Log("Given the need to record background mining results.")
	{
		gen := genesis.Genesis{
			TransPerBlock: 1,
			Transactions: []database.Transaction{
				database.NewTransaction("a", 0.2),
				database.NewTransaction("b", 0.8),
			},
		}

		st, err := state.New(state.Config{Genesis: gen})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}
		defer st.Shutdown()

		log := zap.NewNop().Sugar()

		testID := 0
		t.Logf("\tTest %d:\tWhen the worker seals a block.", testID)
		{
			sealed := gathered(t, "powledger_blocks_sealed_total")
			samples := gathered(t, "powledger_mining_duration_seconds")

			block, err := st.ConfirmPending(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine a block: %v", failed, testID, err)
			}

			recordMining(log, st, worker.Result{Block: block, Duration: time.Millisecond})

			if got := gathered(t, "powledger_blocks_sealed_total") - sealed; got != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould count the sealed block, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould count the sealed block.", success, testID)

			if got := gathered(t, "powledger_mining_duration_seconds") - samples; got != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould observe the mining duration, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould observe the mining duration.", success, testID)

			if got := gathered(t, "powledger_mempool_transactions"); got != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould refresh the mempool gauge to 1, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould refresh the mempool gauge.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the worker runs out of nonces.", testID)
		{
			sealed := gathered(t, "powledger_blocks_sealed_total")
			exhausted := gathered(t, "powledger_mining_exhausted_total")

			err := fmt.Errorf("mining candidate: %w", database.ErrMiningExhausted)
			recordMining(log, st, worker.Result{Err: err, Duration: time.Millisecond})

			if got := gathered(t, "powledger_mining_exhausted_total") - exhausted; got != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould count the exhausted search, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould count the exhausted search.", success, testID)

			if got := gathered(t, "powledger_blocks_sealed_total") - sealed; got != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould not count a sealed block, got %v.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould not count a sealed block.", success, testID)
		}
	}
}
