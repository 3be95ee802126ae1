package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/TimothyStiles/gsearch/checks"
	"github.com/TimothyStiles/gsearch/seqio"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var statsCommand = &cli.Command{
	Name:      "stats",
	Usage:     "report per-record GC content and DNA validity for FASTA input, before sketching",
	ArgsUsage: "<fasta-file>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "keep-valid", Usage: "write only records that pass IsDNA back out as FASTA"},
	},
	Action: runStats,
}

func runStats(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: gsearch stats <fasta-file>", 1)
	}
	reader, err := seqio.OpenFasta(c.Args().Get(0))
	if err != nil {
		return err
	}

	var valid []seqio.Record
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"identifier", "length", "gc_content", "valid_dna"})
	for reader.HasNext() {
		rec, err := reader.Next()
		if err != nil {
			return err
		}
		isDNA := checks.IsDNA(rec.Sequence)
		table.Append([]string{
			rec.Name,
			strconv.Itoa(len(rec.Sequence)),
			strconv.FormatFloat(checks.GcContent(rec.Sequence), 'f', 4, 64),
			strconv.FormatBool(isDNA),
		})
		if isDNA {
			valid = append(valid, rec)
		}
	}
	table.Render()
	fmt.Fprintln(os.Stdout)

	if keepValid := c.String("keep-valid"); keepValid != "" {
		if err := seqio.WriteFasta(valid, keepValid); err != nil {
			return err
		}
		fmt.Printf("wrote %d valid records to %s\n", len(valid), keepValid)
	}
	return nil
}
