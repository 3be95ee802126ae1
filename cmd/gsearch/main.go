// Command gsearch is a thin CLI front end over the gsearch library:
// build a sketch index from FASTA input, then search, gather, or
// prefetch against it. It is not a reimplementation of any particular
// reference CLI's full flag surface — SPEC_FULL.md scopes the CLI to
// exercising the library's operations end to end.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "gsearch",
		Usage: "MinHash-based genomic similarity search",
		Commands: []*cli.Command{
			indexCommand,
			searchCommand,
			gatherCommand,
			prefetchCommand,
			statsCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gsearch:", err)
		os.Exit(1)
	}
}
