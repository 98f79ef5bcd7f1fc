package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultListSize is used when the user doesn't give a size.
const defaultListSize = 10

// The terminal the shell talks to.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var (
	genesisPath string
	logPath     string
	complexity  int
	premine     bool
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run an interactive session against an in-process chain.",
	RunE:  shellRun,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVarP(&genesisPath, "genesis", "g", "", "Path to a genesis file.")
	shellCmd.Flags().StringVarP(&logPath, "log", "l", "", "File to write chain events to.")
	shellCmd.Flags().IntVarP(&complexity, "complexity", "c", -1, "Leading zero bytes required in a block hash.")
	shellCmd.Flags().BoolVar(&premine, "premine", true, "Mine the seed transactions before the first prompt.")
}

func shellRun(cmd *cobra.Command, args []string) error {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return err
	}

	if complexity >= 0 {
		if complexity > database.HashSize {
			return database.ErrInvalidComplexity
		}
		gen.Complexity = uint16(complexity)
	}

	var log *zap.SugaredLogger
	if logPath != "" {
		log, err = logger.New("LEDGER", logPath)
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	// The shell needs the chain and the chain needs the shell's event
	// handler, so the handler is bound once the shell exists.
	var sh *shell
	ev := func(v string, args ...any) {
		if log != nil {
			log.Infow(fmt.Sprintf(v, args...))
		}
		if sh != nil {
			sh.event(v, args...)
		}
	}

	st, err := state.New(state.Config{
		Genesis:        gen,
		SelectStrategy: selector.StrategyWeight,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	sh = newShell(st, stdin, stdout, stderr)

	if premine {
		sh.confirmTransactions(cmd.Context())
	}

	sh.showCommands()
	return sh.run(cmd.Context())
}

// =============================================================================

// shell reads text commands and runs them against a chain.
type shell struct {
	st  *state.State
	in  *bufio.Reader
	out io.Writer
	err io.Writer
	bar *progressbar.ProgressBar
}

func newShell(st *state.State, in io.Reader, out io.Writer, err io.Writer) *shell {
	return &shell{
		st:  st,
		in:  bufio.NewReader(in),
		out: out,
		err: err,
	}
}

// run processes commands until exit is entered or the input is closed.
func (sh *shell) run(ctx context.Context) error {
	for {
		line, err := sh.prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if exit := sh.process(ctx, line); exit {
			return nil
		}
	}
}

// process runs a single command. It reports true when the session is over.
func (sh *shell) process(ctx context.Context, command string) bool {
	switch command {
	case "":
	case "exit":
		return true
	case "help":
		sh.showCommands()
	case "create transaction":
		sh.createTransaction()
	case "show transactions":
		sh.showTransactions()
	case "confirm transactions":
		sh.confirmTransactions(ctx)
	case "show blocks":
		sh.showBlocks()
	case "mining block":
		sh.showCandidate()
	default:
		fmt.Fprintln(sh.err, "Unrecognized command!")
	}

	return false
}

func (sh *shell) showCommands() {
	fmt.Fprintln(sh.out, "\nThis is an experimental toy blockchain.")
	fmt.Fprintln(sh.out, "\nList of all commands:")
	fmt.Fprintln(sh.out, "  `help` - Some info about the blockchain and commands.")
	fmt.Fprintln(sh.out, "  `exit` - Exits the session, the blockchain will be lost.")
	fmt.Fprintln(sh.out, "  `create transaction` - Create a new transaction.")
	fmt.Fprintln(sh.out, "  `show transactions` - Show the transactions waiting in the pool.")
	fmt.Fprintln(sh.out, "  `confirm transactions` - Mine the heaviest pending transactions into a block.")
	fmt.Fprintln(sh.out, "  `show blocks` - Show the blocks in the chain.")
	fmt.Fprintln(sh.out, "  `mining block` - Show the block being mined. It is empty until mining starts.")
	fmt.Fprintln(sh.out)
}

func (sh *shell) createTransaction() {
	data, err := sh.prompt("Write a transaction message: ")
	if err != nil {
		return
	}

	var weight float32
	for {
		input, err := sh.prompt("Give some weight to your transaction [min 0.0, max 1.0]: ")
		if err != nil {
			return
		}

		w, err := parseWeight(input)
		if err != nil {
			fmt.Fprintf(sh.err, "Incorrect value, please try again. %s\n", err)
			continue
		}

		weight = w
		break
	}

	if err := sh.st.SubmitTransaction(database.NewTransaction(data, weight)); err != nil {
		fmt.Fprintf(sh.err, "Transaction rejected: %s\n", err)
		return
	}

	fmt.Fprintln(sh.out, "Transaction added to the pool.")
}

func (sh *shell) showTransactions() {
	n, ok := sh.promptSize(fmt.Sprintf("How many transactions you want to display? [%d]: ", defaultListSize))
	if !ok {
		return
	}

	trans := sh.st.QueryRecentTransactions(n)
	if len(trans) == 0 {
		fmt.Fprintln(sh.out, "No transactions in the pool yet.")
		return
	}

	fmt.Fprintf(sh.out, "Showing last %d (or less) transactions.\n", n)
	for i, tx := range trans {
		fmt.Fprintf(sh.out, "%d: %s. Weight %v\n", i, tx.Data, tx.Weight)
	}
}

func (sh *shell) confirmTransactions(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Ctrl-C stops the search and keeps the candidate for a retry.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sh.bar = progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWriter(sh.err),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(fmt.Sprintf("Mining with complexity %d...", sh.st.QueryComplexity())),
		progressbar.OptionSpinnerType(14),
	)
	if err := sh.bar.RenderBlank(); err != nil {
		fmt.Fprintf(sh.err, "Failed to render progress: %s\n", err)
	}

	block, err := sh.st.ConfirmPending(ctx)

	sh.bar.Finish()
	sh.bar = nil

	switch {
	case errors.Is(err, database.ErrMiningExhausted):
		fmt.Fprintln(sh.err, "Every nonce was tried without a solution. The block is kept for another attempt.")
		return
	case err != nil:
		fmt.Fprintf(sh.err, "Mining stopped: %s\n", err)
		return
	}

	fmt.Fprintf(sh.out, "Block mined with nonce %d: %s\n", block.Nonce, block.Hash)
}

func (sh *shell) showBlocks() {
	n, ok := sh.promptSize(fmt.Sprintf("How many blocks you want to display? [%d]: ", defaultListSize))
	if !ok {
		return
	}

	blocks := sh.st.QueryRecentBlocks(n)
	if len(blocks) == 0 {
		fmt.Fprintln(sh.out, "No blocks yet.")
		return
	}

	fmt.Fprintf(sh.out, "Showing last %d (or less) blocks.\n", n)
	for i, block := range blocks {
		fmt.Fprintln(sh.out, i)
		fmt.Fprintf(sh.out, "  -> Timestamp: %d\n", block.TimeStamp.Unix())
		fmt.Fprintf(sh.out, "  -> Hash: %s\n", block.Hash)
		fmt.Fprintf(sh.out, "  -> Previous hash: %s\n", block.PrevBlockHash)
		fmt.Fprintf(sh.out, "  -> Nonce: %d\n", block.Nonce)
		fmt.Fprintln(sh.out, "  -> Transactions:")
		for j, tx := range block.Trans {
			fmt.Fprintf(sh.out, "    -> %d: %s. Weight %v\n", j, tx.Data, tx.Weight)
		}
		fmt.Fprintln(sh.out)
	}
}

func (sh *shell) showCandidate() {
	block, exists := sh.st.QueryCandidate()
	if !exists {
		fmt.Fprintln(sh.out, "No block to mine yet.")
		return
	}

	fmt.Fprintln(sh.out, "Showing current mining block:")
	fmt.Fprintf(sh.out, "  Timestamp: %d\n", block.TimeStamp.Unix())
	fmt.Fprintf(sh.out, "  Hash of previous block: %s\n", block.PrevBlockHash)
	for i, tx := range block.Trans {
		fmt.Fprintf(sh.out, "  -> %d: %s. Weight %v\n", i, tx.Data, tx.Weight)
	}
}

// event moves the mining spinner along while a search is running.
func (sh *shell) event(v string, args ...any) {
	if sh.bar == nil {
		return
	}

	sh.bar.Describe(fmt.Sprintf(v, args...))
	sh.bar.Add(1)
}

// =============================================================================

// prompt writes the message and returns the next trimmed line of input.
func (sh *shell) prompt(message string) (string, error) {
	fmt.Fprint(sh.out, message)

	line, err := sh.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// promptSize asks for a list size until a valid one is given. The boolean
// is false when the input is closed.
func (sh *shell) promptSize(message string) (int, bool) {
	for {
		input, err := sh.prompt(message)
		if err != nil {
			return 0, false
		}

		n, err := parseSize(input)
		if err != nil {
			fmt.Fprintf(sh.err, "Incorrect value, please try again. %s\n", err)
			continue
		}

		return n, true
	}
}

// parseWeight accepts a weight in the range [0.0, 1.0].
func parseWeight(input string) (float32, error) {
	v, err := strconv.ParseFloat(input, 32)
	if err != nil {
		return 0, err
	}

	if !(v >= 0 && v <= 1) {
		return 0, fmt.Errorf("weight %v should be between 0.0 and 1.0", v)
	}

	return float32(v), nil
}

// parseSize accepts a non-negative list size. Empty input is the default.
func parseSize(input string) (int, error) {
	if input == "" {
		return defaultListSize, nil
	}

	n, err := strconv.ParseUint(input, 10, 31)
	if err != nil {
		return 0, err
	}

	return int(n), nil
}
