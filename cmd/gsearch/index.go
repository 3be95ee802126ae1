package main

import (
	"fmt"

	"github.com/TimothyStiles/gsearch/index"
	"github.com/TimothyStiles/gsearch/kmer"
	"github.com/TimothyStiles/gsearch/seqio"
	"github.com/TimothyStiles/gsearch/signature"
	"github.com/TimothyStiles/gsearch/sketch"
	"github.com/urfave/cli/v2"
)

var indexCommand = &cli.Command{
	Name:  "index",
	Usage: "build sketches from FASTA input and write a signature or SQLite index",
	Subcommands: []*cli.Command{
		indexBuildCommand,
	},
}

var indexBuildCommand = &cli.Command{
	Name:  "build",
	Usage: "sketch one or more FASTA files into a signature file or SQLite index",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "ksize", Value: 31},
		&cli.Uint64Flag{Name: "scaled", Value: 1000},
		&cli.StringFlag{Name: "moltype", Value: "DNA"},
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "output", Required: true, Aliases: []string{"o"}},
		&cli.BoolFlag{Name: "force"},
	},
	ArgsUsage: "<fasta-file> [more fasta files...]",
	Action:    runIndexBuild,
}

func runIndexBuild(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one FASTA file is required", 1)
	}
	ksize := c.Int("ksize")
	scaled := c.Uint64("scaled")
	molType := kmer.MolType(c.String("moltype"))
	force := c.Bool("force")

	sk := sketch.NewScaledFromFactor(ksize, molType, hasherDefaultSeed, scaled, false)
	for _, path := range c.Args().Slice() {
		reader, err := seqio.OpenFasta(path)
		if err != nil {
			return err
		}
		for reader.HasNext() {
			rec, err := reader.Next()
			if err != nil {
				return err
			}
			if err := sk.AddSequence(rec.Sequence, force); err != nil {
				return err
			}
		}
	}

	name := c.String("name")
	if name == "" {
		name = c.Args().First()
	}
	out := c.String("output")
	sig := signature.New(name, "", out, "CC0", sk)

	if isSQLitePath(out) {
		idx, err := index.OpenSQLite(out)
		if err != nil {
			return err
		}
		defer idx.Close()
		if err := idx.Insert(sig, out); err != nil {
			return err
		}
		fmt.Printf("wrote %d hashes to %s\n", sk.Len(), out)
		return nil
	}

	if err := signature.Save(out, []*signature.Signature{sig}); err != nil {
		return err
	}
	fmt.Printf("wrote %d hashes to %s\n", sk.Len(), out)
	return nil
}

const hasherDefaultSeed = 42

func isSQLitePath(path string) bool {
	return hasSuffix(path, ".sqldb") || hasSuffix(path, ".db")
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
