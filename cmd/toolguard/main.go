// toolguard - Tool Platform Architecture Validator
// Source: https://github.com/toolnexus/toolguard

package main

import (
	"fmt"
	"os"

	"github.com/toolnexus/toolguard/internal/cli"
	"github.com/toolnexus/toolguard/internal/cli/shared"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(shared.ExitCode(err))
	}
}
