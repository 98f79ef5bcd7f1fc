package mempool_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func isAscending(trans []database.Transaction) bool {
	return sort.SliceIsSorted(trans, func(i, j int) bool {
		return trans[i].Weight < trans[j].Weight
	})
}

func TestSchedule(t *testing.T) {
	t.Log("Given the need to keep the mempool ordered by weight.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen scheduling random weights.", testID)
		{
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the mempool: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the mempool.", success, testID)

			rnd := rand.New(rand.NewSource(7))
			for i := range 50 {
				weight := float32(rnd.Intn(10)) / 10
				n, err := mp.Schedule(database.NewTransaction(fmt.Sprintf("tx%d", i), weight))
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to schedule transaction %d: %v", failed, testID, i, err)
				}

				if n != i+1 {
					t.Fatalf("\t%s\tTest %d:\tShould get back the pool size, got %d, exp %d.", failed, testID, n, i+1)
				}

				if !isAscending(mp.Copy()) {
					t.Fatalf("\t%s\tTest %d:\tShould be ascending after schedule %d: %v", failed, testID, i, mp.Copy())
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be ascending after every schedule.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen scheduling a NaN weight.", testID)
		{
			mp, _ := mempool.New()
			mp.Schedule(database.NewTransaction("a", 0.5))

			_, err := mp.Schedule(database.NewTransaction("nan", float32(math.NaN())))
			if !errors.Is(err, selector.ErrNotComparable) {
				t.Fatalf("\t%s\tTest %d:\tShould get a not comparable error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a not comparable error.", success, testID)

			if mp.Count() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the pool unchanged, got %d.", failed, testID, mp.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould leave the pool unchanged.", success, testID)
		}
	}
}

func TestPeekAndDrain(t *testing.T) {
	type table struct {
		name      string
		weights   []float32
		howMany   int
		drained   []float32
		remaining []float32
	}

	tt := []table{
		{
			name:      "batch",
			weights:   []float32{0.5, 0.1, 0.3, 1.0, 0.2, 0.9, 0.4, 0.8, 0.6, 0.7, 0.05, 0.15},
			howMany:   10,
			drained:   []float32{0.15, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			remaining: []float32{0.05, 0.1},
		},
		{
			name:      "short",
			weights:   []float32{0.9, 0.1},
			howMany:   10,
			drained:   []float32{0.1, 0.9},
			remaining: []float32{},
		},
		{
			name:      "empty",
			weights:   []float32{},
			howMany:   10,
			drained:   []float32{},
			remaining: []float32{},
		},
	}

	weights := func(trans []database.Transaction) []float32 {
		out := make([]float32, len(trans))
		for i, tx := range trans {
			out[i] = tx.Weight
		}
		return out
	}

	equal := func(a, b []float32) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	t.Log("Given the need to take batches from the mempool.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %d transactions.", testID, len(tst.weights))
			{
				f := func(t *testing.T) {
					mp, _ := mempool.New()
					for i, w := range tst.weights {
						mp.Schedule(database.NewTransaction(fmt.Sprintf("tx%d", i), w))
					}

					peek := mp.PeekRecent(tst.howMany)
					if !equal(weights(peek), tst.drained) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, weights(peek))
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.drained)
						t.Fatalf("\t%s\tTest %d:\tShould peek the most recent transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould peek the most recent transactions.", success, testID)

					if mp.Count() != len(tst.weights) {
						t.Fatalf("\t%s\tTest %d:\tShould not remove anything on peek.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not remove anything on peek.", success, testID)

					drained := mp.Drain(tst.howMany)
					if !equal(weights(drained), tst.drained) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, weights(drained))
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.drained)
						t.Fatalf("\t%s\tTest %d:\tShould drain the heaviest transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould drain the heaviest transactions.", success, testID)

					rest := mp.Copy()
					if !equal(weights(rest), tst.remaining) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, weights(rest))
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.remaining)
						t.Fatalf("\t%s\tTest %d:\tShould leave the lightest transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the lightest transactions.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestPeekLarger(t *testing.T) {
	t.Log("Given the need to peek more transactions than the pool holds.")
	{
		mp, _ := mempool.New()
		mp.Schedule(database.NewTransaction("a", 0.1))
		mp.Schedule(database.NewTransaction("b", 0.2))

		if got := mp.PeekRecent(100); len(got) != 2 {
			t.Fatalf("\t%s\tShould get back the whole pool, got %d.", failed, len(got))
		}
		t.Logf("\t%s\tShould get back the whole pool.", success)

		if got := mp.PeekRecent(0); len(got) != 0 {
			t.Fatalf("\t%s\tShould get back nothing for zero, got %d.", failed, len(got))
		}
		t.Logf("\t%s\tShould get back nothing for zero.", success)
	}
}
