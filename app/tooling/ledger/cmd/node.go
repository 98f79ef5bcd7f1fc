package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/public"
	"github.com/spf13/cobra"
)

var (
	data   string
	weight string
	size   int
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a transaction to the node.",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := parseWeight(weight)
		if err != nil {
			log.Fatal(err)
		}

		tx := public.SubmitTx{
			Data:   data,
			Weight: &w,
		}

		var resp struct {
			Status  string `json:"status"`
			Mempool int    `json:"mempool"`
		}
		if err := post("/v1/tx/submit", tx, &resp); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%s: %d transaction(s) pending\n", resp.Status, resp.Mempool)
	},
}

var txsCmd = &cobra.Command{
	Use:   "txs",
	Short: "Show the transactions waiting in the node's pool.",
	Run: func(cmd *cobra.Command, args []string) {
		var txs []public.Tx
		if err := get("/v1/tx/uncommitted/list?n="+strconv.Itoa(size), &txs); err != nil {
			log.Fatal(err)
		}

		if len(txs) == 0 {
			fmt.Println("No transactions in the pool yet.")
			return
		}

		for i, tx := range txs {
			fmt.Printf("%d: %s. Weight %v\n", i, tx.Data, tx.Weight)
		}
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Mine the heaviest pending transactions into a block and wait for it.",
	Run: func(cmd *cobra.Command, args []string) {
		var block public.Block
		if err := post("/v1/blocks/confirm", nil, &block); err != nil {
			log.Fatal(err)
		}

		printBlock(block)
	},
}

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Show the most recent blocks in the node's chain.",
	Run: func(cmd *cobra.Command, args []string) {
		var blocks []public.Block
		if err := get("/v1/blocks/list?n="+strconv.Itoa(size), &blocks); err != nil {
			log.Fatal(err)
		}

		for _, block := range blocks {
			printBlock(block)
		}
	},
}

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Show the block the node is mining.",
	Run: func(cmd *cobra.Command, args []string) {
		var block public.Block
		if err := get("/v1/blocks/candidate", &block); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		printBlock(block)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd, txsCmd, confirmCmd, blocksCmd, candidateCmd)

	submitCmd.Flags().StringVarP(&data, "data", "d", "", "Message carried by the transaction.")
	submitCmd.Flags().StringVarP(&weight, "weight", "w", "0", "Weight of the transaction [0.0, 1.0].")
	submitCmd.MarkFlagRequired("data")

	txsCmd.Flags().IntVarP(&size, "size", "n", defaultListSize, "Number of transactions to show.")
	blocksCmd.Flags().IntVarP(&size, "size", "n", defaultListSize, "Number of blocks to show.")
}

func printBlock(block public.Block) {
	fmt.Println(block.Number)
	fmt.Printf("  -> Timestamp: %d\n", block.TimeStamp)
	fmt.Printf("  -> Hash: %s\n", block.Hash)
	fmt.Printf("  -> Previous hash: %s\n", block.PrevBlockHash)
	fmt.Printf("  -> Nonce: %d\n", block.Nonce)
	fmt.Printf("  -> Sealed: %t\n", block.Sealed)
	fmt.Println("  -> Transactions:")
	for i, tx := range block.Trans {
		fmt.Printf("    -> %d: %s. Weight %v\n", i, tx.Data, tx.Weight)
	}
	fmt.Println()
}
