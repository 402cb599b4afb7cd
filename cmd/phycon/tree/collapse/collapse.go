// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package collapse implements a command to simplify
// consensus trees,
// removing weakly supported nodes
// and rerooting at an outgroup.
package collapse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/phycon/contree"
)

var Command = &command.Command{
	Usage: `collapse [-b|--bootstrap <value>]
	[--annotation <key>] [--reroot-on <taxon>] [--strip]
	[-o|--output <file>]
	<tree-file>...`,
	Short: "collapse weakly supported nodes of consensus trees",
	Long: `
Command collapse reads one or more consensus tree files, removes every
internal node with a support value below a threshold, and writes the
simplified trees. The children of a removed node are attached directly to its
parent, and the length of the removed branch is added to each re-attached
child, so the path length to every terminal is preserved.

One or more tree files, or directories with tree files, can be given as
arguments. On a directory, every file with the extensions ".tre", ".tree",
".nex", ".nexus", or ".trees" will be processed. Files with a NEXUS
extension are read and written as NEXUS files; any other file is expected to
be in newick format.

By default, nodes with a support below 50 will be collapsed. Use the flag -b,
or --bootstrap, to set a different threshold, between 0 and 100. The support
of a node is read from its label, or from the node comment annotation set
with the flag --annotation ("prob(percent)" by default; use "prob" for trees
annotated with posterior probabilities, with a threshold between 0 and 1).

If the flag --reroot-on is set, each tree will be rooted at the branch of the
named terminal, so the terminal becomes the sister of all other terminals. A
tree without the terminal is reported and skipped, without stopping the
processing of other trees.

If the flag --strip is given, the comments attached to the terminals will be
removed from the output.

By default, each simplified tree will be written to a file named as its
source with the suffix "_collapsed" and the threshold value added to its
name. Use the flag -o, or --output, to set an output file (with a single
input file), or an output directory.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var bootstrap float64
var annotation string
var rerootOn string
var strip bool
var output string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&bootstrap, "bootstrap", 50, "")
	c.Flags().Float64Var(&bootstrap, "b", 50, "")
	c.Flags().StringVar(&annotation, "annotation", "prob(percent)", "")
	c.Flags().StringVar(&rerootOn, "reroot-on", "", "")
	c.Flags().BoolVar(&strip, "strip", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

// TreeExt are the file extensions
// searched on a directory argument.
var treeExt = map[string]bool{
	".tre":   true,
	".tree":  true,
	".trees": true,
	".nex":   true,
	".nexus": true,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting tree file")
	}
	if bootstrap < 0 || bootstrap > 100 {
		return c.UsageError(fmt.Sprintf("support threshold %.3f out of range [0,100]", bootstrap))
	}

	var files []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			files = append(files, a)
			continue
		}
		ls, err := os.ReadDir(a)
		if err != nil {
			return err
		}
		for _, e := range ls {
			if e.IsDir() {
				continue
			}
			if treeExt[filepath.Ext(e.Name())] {
				files = append(files, filepath.Join(a, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no tree files found")
	}

	failed := 0
	for _, f := range files {
		if err := processFile(f); err != nil {
			fmt.Fprintf(c.Stderr(), "phycon: error: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tree files failed", failed, len(files))
	}
	return nil
}

func processFile(name string) error {
	trees, err := readTrees(name)
	if err != nil {
		return err
	}

	out := make([]*contree.Tree, 0, len(trees))
	for _, t := range trees {
		nt := t.Collapse(bootstrap, annotation)
		if rerootOn != "" {
			nt, err = nt.Reroot(rerootOn)
			if err != nil {
				return fmt.Errorf("file %q: %v", name, err)
			}
		}
		if strip {
			nt.StripTermComments()
		}
		out = append(out, nt)
	}
	return writeTrees(outputName(name), out)
}

func outputName(name string) string {
	if output != "" {
		fi, err := os.Stat(output)
		if err == nil && fi.IsDir() {
			name = filepath.Join(output, filepath.Base(name))
		} else {
			return output
		}
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_collapsed%.0f%s", stem, bootstrap, ext)
}

func isNexus(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".nex" || ext == ".nexus"
}

func readTrees(name string) ([]*contree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var trees []*contree.Tree
	if isNexus(name) {
		trees, err = contree.Nexus(f)
	} else {
		trees, err = contree.Newick(f)
	}
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return trees, nil
}

func writeTrees(name string, trees []*contree.Tree) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if isNexus(name) {
		if err := contree.WriteNexus(f, trees); err != nil {
			return fmt.Errorf("on file %q: %v", name, err)
		}
		return nil
	}
	for _, t := range trees {
		if err := t.Newick(f); err != nil {
			return fmt.Errorf("on file %q: %v", name, err)
		}
	}
	return nil
}
