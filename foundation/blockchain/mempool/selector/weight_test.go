package selector_test

import (
	"errors"
	"math"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestWeightSort(t *testing.T) {
	type test struct {
		name  string
		trans []database.Transaction
		exp   []database.Transaction
	}

	tx := database.NewTransaction

	tt := []test{
		{
			name:  "empty",
			trans: []database.Transaction{},
			exp:   []database.Transaction{},
		},
		{
			name:  "ascending",
			trans: []database.Transaction{tx("c", 0.9), tx("a", 0.1), tx("b", 0.5)},
			exp:   []database.Transaction{tx("a", 0.1), tx("b", 0.5), tx("c", 0.9)},
		},
		{
			name:  "ties",
			trans: []database.Transaction{tx("first", 0.5), tx("low", 0.2), tx("second", 0.5), tx("third", 0.5)},
			exp:   []database.Transaction{tx("low", 0.2), tx("first", 0.5), tx("second", 0.5), tx("third", 0.5)},
		},
	}

	t.Log("Given the need to order transactions by weight.")
	{
		fn, err := selector.Retrieve(selector.StrategyWeight)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to retrieve the strategy: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to retrieve the strategy.", success)

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %d transactions.", testID, len(tst.trans))
			{
				f := func(t *testing.T) {
					if err := fn(tst.trans); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to sort: %v", failed, testID, err)
					}

					for i := range tst.exp {
						if tst.trans[i] != tst.exp[i] {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, tst.trans)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
							t.Fatalf("\t%s\tTest %d:\tShould get back the right order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right order.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestWeightSortNaN(t *testing.T) {
	t.Log("Given the need to reject weights that can't be ordered.")
	{
		fn, _ := selector.Retrieve(selector.StrategyWeight)

		trans := []database.Transaction{
			database.NewTransaction("b", 0.9),
			database.NewTransaction("nan", float32(math.NaN())),
			database.NewTransaction("a", 0.1),
		}

		err := fn(trans)
		if !errors.Is(err, selector.ErrNotComparable) {
			t.Fatalf("\t%s\tShould get a not comparable error: %v", failed, err)
		}
		t.Logf("\t%s\tShould get a not comparable error.", success)

		if trans[0].Data != "b" || trans[2].Data != "a" {
			t.Fatalf("\t%s\tShould leave the transactions untouched: %v", failed, trans)
		}
		t.Logf("\t%s\tShould leave the transactions untouched.", success)
	}

	t.Log("Given the need to retrieve strategies by name.")
	{
		if _, err := selector.Retrieve("tip"); err == nil {
			t.Fatalf("\t%s\tShould not find an unknown strategy.", failed)
		}
		t.Logf("\t%s\tShould not find an unknown strategy.", success)
	}
}
