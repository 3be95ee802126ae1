package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/search"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
	"github.com/mitchellh/go-wordwrap"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var searchCommand = &cli.Command{
	Name:      "search",
	Usage:     "find signatures similar to a query",
	ArgsUsage: "<query.sig> <index-path>",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "threshold", Value: 0.08},
		&cli.BoolFlag{Name: "containment"},
		&cli.BoolFlag{Name: "best-only"},
	},
	Action: runSearch,
}

func runSearch(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: gsearch search <query.sig> <index-path>", 1)
	}
	query, idx, err := loadQueryAndIndex(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	defer idx.Close()

	sf := search.JaccardSearchFunc
	if c.Bool("containment") {
		sf = search.ContainmentSearchFunc
	}
	results, err := search.Search(idx, query, sf, c.Float64("threshold"), c.Bool("best-only"))
	if err != nil {
		return err
	}
	printSearchResults(results)
	return nil
}

func printSearchResults(results []search.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"score", "name", "location"})
	for _, r := range results {
		table.Append([]string{
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			wordwrap.WrapString(r.Signature.Name(), 40),
			r.Location,
		})
	}
	table.Render()
}

var gatherCommand = &cli.Command{
	Name:      "gather",
	Usage:     "iteratively decompose a query into a minimum cover of reference signatures",
	ArgsUsage: "<query.sig> <index-path>",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "threshold-bp", Value: 0},
	},
	Action: runGather,
}

func runGather(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: gsearch gather <query.sig> <index-path>", 1)
	}
	query, idx, err := loadQueryAndIndex(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	defer idx.Close()

	results, err := search.Gather(context.Background(), idx, query, c.Uint64("threshold-bp"))
	if err != nil {
		return err
	}
	printGatherResults(results)
	return nil
}

func printGatherResults(results []search.GatherResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"name", "intersect_bp", "f_unique_to_query", "f_unique_weighted", "avg_abund"})
	for _, r := range results {
		table.Append([]string{
			wordwrap.WrapString(r.Signature.Name(), 40),
			strconv.FormatUint(r.UniqueIntersectBP, 10),
			strconv.FormatFloat(r.FUniqueToQuery, 'f', 4, 64),
			strconv.FormatFloat(r.FUniqueWeighted, 'f', 4, 64),
			strconv.FormatFloat(r.AverageAbund, 'f', 2, 64),
		})
	}
	table.Render()
	if len(results) > 0 {
		fmt.Printf("sum f_unique_weighted: %.4f\n", results[len(results)-1].SumFUniqWeighted)
	}
}

var prefetchCommand = &cli.Command{
	Name:      "prefetch",
	Usage:     "enumerate every reference with sufficient overlap, without subtraction",
	ArgsUsage: "<query.sig> <index-path>",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "threshold-bp", Value: 50000},
	},
	Action: runPrefetch,
}

func runPrefetch(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: gsearch prefetch <query.sig> <index-path>", 1)
	}
	query, idx, err := loadQueryAndIndex(c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	defer idx.Close()

	outcome, err := search.Prefetch(idx, query, c.Uint64("threshold-bp"), false, false)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"score", "intersect_hashes", "name", "location"})
	for _, r := range outcome.Results {
		table.Append([]string{
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			strconv.FormatUint(r.Intersection, 10),
			wordwrap.WrapString(r.Result.Signature.Name(), 40),
			r.Result.Location,
		})
	}
	table.Render()
	return nil
}

func loadQueryAndIndex(queryPath, indexPath string) (*sketch.Sketch, index.Index, error) {
	sigs, err := signature.Load(queryPath, false)
	if err != nil {
		return nil, nil, err
	}
	if len(sigs) == 0 || len(sigs[0].Sketches()) == 0 {
		return nil, nil, cli.Exit("query signature has no sketches", 1)
	}
	query := sigs[0].Sketches()[0]

	var idx index.Index
	if isSQLitePath(indexPath) {
		idx, err = index.OpenSQLite(indexPath)
	} else {
		idx, err = index.OpenDirectory(indexPath)
	}
	if err != nil {
		return nil, nil, err
	}
	return query, idx, nil
}
