package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newTestShell(t *testing.T, input string) (*shell, *state.State, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	st, err := state.New(state.Config{
		Genesis: genesis.Genesis{
			Complexity:    0,
			TransPerBlock: 10,
		},
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	var out, errOut bytes.Buffer
	return newShell(st, strings.NewReader(input), &out, &errOut), st, &out, &errOut
}

func TestShellSession(t *testing.T) {
	t.Log("Given the need to drive the chain from text commands.")
	{
		input := strings.Join([]string{
			"create transaction",
			"hello",
			"abc",
			"1.5",
			"0.7",
			"show transactions",
			"x",
			"",
			"mining block",
			"confirm transactions",
			"show blocks",
			"1",
			"bogus",
			"exit",
			"help",
		}, "\n") + "\n"

		sh, st, out, errOut := newTestShell(t, input)
		defer st.Shutdown()

		if err := sh.run(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould run the session: %v", failed, err)
		}
		t.Logf("\t%s\tShould run the session.", success)

		if got := strings.Count(errOut.String(), "Incorrect value"); got != 3 {
			t.Fatalf("\t%s\tShould re-prompt for each bad value, got %d: %s", failed, got, errOut)
		}
		t.Logf("\t%s\tShould re-prompt for each bad value.", success)

		if !strings.Contains(out.String(), "0: hello. Weight 0.7") {
			t.Fatalf("\t%s\tShould list the pending transaction: %s", failed, out)
		}
		t.Logf("\t%s\tShould list the pending transaction.", success)

		if !strings.Contains(out.String(), "No block to mine yet.") {
			t.Fatalf("\t%s\tShould report no candidate before mining.", failed)
		}
		t.Logf("\t%s\tShould report no candidate before mining.", success)

		if st.QueryChainLength() != 2 || st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould mine the transaction into a block.", failed)
		}
		t.Logf("\t%s\tShould mine the transaction into a block.", success)

		if !strings.Contains(errOut.String(), "Unrecognized command!") {
			t.Fatalf("\t%s\tShould reject an unknown command.", failed)
		}
		t.Logf("\t%s\tShould reject an unknown command.", success)

		if strings.Contains(out.String(), "List of all commands") {
			t.Fatalf("\t%s\tShould stop reading after exit.", failed)
		}
		t.Logf("\t%s\tShould stop reading after exit.", success)
	}
}

func TestParseInput(t *testing.T) {
	type weightTable struct {
		name  string
		input string
		valid bool
	}

	wt := []weightTable{
		{name: "zero", input: "0", valid: true},
		{name: "one", input: "1.0", valid: true},
		{name: "middle", input: "0.25", valid: true},
		{name: "negative", input: "-0.1", valid: false},
		{name: "large", input: "1.01", valid: false},
		{name: "nan", input: "NaN", valid: false},
		{name: "text", input: "heavy", valid: false},
	}

	t.Log("Given the need to validate weight input.")
	{
		for testID, tst := range wt {
			f := func(t *testing.T) {
				_, err := parseWeight(tst.input)
				if (err == nil) != tst.valid {
					t.Fatalf("\t%s\tTest %d:\tShould get valid=%t for %q: %v", failed, testID, tst.valid, tst.input, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get valid=%t for %q.", success, testID, tst.valid, tst.input)
			}
			t.Run(tst.name, f)
		}
	}

	t.Log("Given the need to validate size input.")
	{
		n, err := parseSize("")
		if err != nil || n != defaultListSize {
			t.Fatalf("\t%s\tShould default an empty size to %d.", failed, defaultListSize)
		}
		t.Logf("\t%s\tShould default an empty size to %d.", success, defaultListSize)

		if _, err := parseSize("-1"); err == nil {
			t.Fatalf("\t%s\tShould reject a negative size.", failed)
		}
		t.Logf("\t%s\tShould reject a negative size.", success)
	}
}

func TestShellCancelled(t *testing.T) {
	t.Log("Given the need to report a stopped mining attempt.")
	{
		sh, st, _, errOut := newTestShell(t, "")
		defer st.Shutdown()

		if err := st.SetComplexity(database.HashSize); err != nil {
			t.Fatalf("\t%s\tShould be able to set the complexity: %v", failed, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sh.confirmTransactions(ctx)

		if !strings.Contains(errOut.String(), "Mining stopped") {
			t.Fatalf("\t%s\tShould report the stopped search: %s", failed, errOut)
		}
		t.Logf("\t%s\tShould report the stopped search.", success)

		if _, exists := st.QueryCandidate(); !exists {
			t.Fatalf("\t%s\tShould keep the candidate.", failed)
		}
		t.Logf("\t%s\tShould keep the candidate.", success)
	}
}

func TestShellRun(t *testing.T) {
	t.Log("Given the need to start the shell command with its defaults.")
	{
		savedIn, savedOut, savedErr := stdin, stdout, stderr
		savedGenesis, savedLog, savedComplexity, savedPremine := genesisPath, logPath, complexity, premine
		defer func() {
			stdin, stdout, stderr = savedIn, savedOut, savedErr
			genesisPath, logPath, complexity, premine = savedGenesis, savedLog, savedComplexity, savedPremine
		}()

		var out, errOut bytes.Buffer
		stdin = strings.NewReader("show blocks\n\nexit\n")
		stdout = &out
		stderr = &errOut
		genesisPath, logPath, complexity, premine = "", "", 0, true

		cmd := &cobra.Command{}
		cmd.SetContext(context.Background())

		if err := shellRun(cmd, nil); err != nil {
			t.Fatalf("\t%s\tShould be able to run the shell: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to run the shell.", success)

		if !strings.Contains(out.String(), "Block mined with nonce 0") {
			t.Fatalf("\t%s\tShould mine the seed transactions before the first prompt: %s", failed, out.String())
		}
		t.Logf("\t%s\tShould mine the seed transactions before the first prompt.", success)

		if !strings.Contains(out.String(), "-> 9: Initial data. Weight 1") {
			t.Fatalf("\t%s\tShould show the mined block: %s", failed, out.String())
		}
		t.Logf("\t%s\tShould show the mined block.", success)
	}
}
