// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package export implements a command to export
// consensus trees as time calibrated trees
// in a tab-delimited file.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: `export [--name <name>] [--age <value>]
	[-o|--output <file>] [<tree-file>...]`,
	Short: "export consensus trees as time calibrated trees",
	Long: `
Command export reads one or more simplified consensus trees in newick format
and writes them as time calibrated trees in a tab-delimited file, the format
used by tools for phylogenetic biogeography such as PhyGeo.

One or more newick tree files can be given as arguments. If no file is given,
the trees will be read from the standard input. As the trees must be
ultrametric, branch lengths are expected to be in million years.

By default, the trees will be named with the prefix "tree"; use the flag
--name to set a different prefix. By default, the age of the root will be
taken from the largest distance between the root and any terminal; use the
flag --age to set an age, in million years.

By default, the resulting file will be named "trees.tab"; use the flag -o, or
--output, to set a different file name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var rootAge float64
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "name", "tree", "")
	c.Flags().Float64Var(&rootAge, "age", 0, "")
	c.Flags().StringVar(&output, "output", "trees.tab", "")
	c.Flags().StringVar(&output, "o", "trees.tab", "")
}

const millionYears = 1_000_000

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		args = append(args, "-")
	}

	tc := timetree.NewCollection()
	for i, a := range args {
		tn := treeName
		if len(args) > 1 {
			tn = fmt.Sprintf("%s.%d", treeName, i)
		}
		nc, err := readNewick(c.Stdin(), a, tn)
		if err != nil {
			return err
		}
		for _, n := range nc.Names() {
			t := nc.Tree(n)
			if err := tc.Add(t); err != nil {
				return fmt.Errorf("when adding trees from %q: %v", a, err)
			}
		}
	}

	if err := writeTrees(tc); err != nil {
		return err
	}
	return nil
}

func readNewick(r io.Reader, name, treeName string) (*timetree.Collection, error) {
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}

	c, err := timetree.Newick(r, treeName, int64(rootAge*millionYears))
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}

func writeTrees(tc *timetree.Collection) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := tc.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
