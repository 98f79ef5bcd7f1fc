// This program drives a proof of work ledger, either in-process through an
// interactive shell or against a running node.
package main

import "github.com/ardanlabs/powledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
