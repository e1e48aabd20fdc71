// Command pkb is the personal knowledge base CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Maxsatbek/my-home/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
