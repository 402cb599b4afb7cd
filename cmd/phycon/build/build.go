// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package build implements a command to build
// a consensus tree from the run files
// of a Bayesian phylogenetic analysis.
package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/phycon/exabayes"
	"github.com/js-arias/phycon/runset"
)

var Command = &command.Command{
	Usage: `build [--fraction <value>] [--freq <value>]
	[-o|--output <file>] [--log <file>]
	[--keep] [--dry-run]
	<run-file>`,
	Short: "build a consensus tree from a set of run files",
	Long: `
Command build collects the tree sample files of all the runs of a Bayesian
phylogenetic analysis, removes the burn-in fraction, and builds a majority
rule consensus tree calling the consense program of the ExaBayes suite. The
build can take several hours on large samples, so the command follows the
log of the program and prints an estimation of the remaining time.

The argument of the command is the name of one of the run files of the
analysis. The name must contain the run number (for example
"primates.run-0.trees"); all files that differ only in the run number will be
collected as part of the same analysis.

By default, the first 25% of the samples of each run will be discarded as
burn-in. Use the flag --fraction to set a different value, as a fraction
between 0 and 1. The number of discarded samples is always rounded up.

By default, a split must be present in half of the sampled trees to be
included in the consensus tree. Use the flag --freq to set a different
minimum split frequency.

Before the build, each run file is copied removing the sample multiplicity
marks that the sampler adds on first generation samples, as the consense
program does not accept them. The copies are removed when the build finishes;
use the flag --keep to retain them, for example to inspect a failed build. An
existing copy will not be rewritten, so an interrupted build can be relaunched
without repeating the preprocessing.

By default, the consensus tree will be written to a file with the name of the
analysis and the suffix ".con.tre", and the output of the consense program to
a file with the suffix ".consense.log". Use the flags -o, or --output, and
--log to set different file names.

If the flag --dry-run is given, the command will print the consense
invocation and finish without preprocessing any file or launching the
program.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var fraction float64
var minFreq float64
var output string
var logFile string
var keep bool
var dryRun bool

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&fraction, "fraction", 0.25, "")
	c.Flags().Float64Var(&minFreq, "freq", 0.5, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&logFile, "log", "", "")
	c.Flags().BoolVar(&keep, "keep", false, "")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting run file")
	}
	return buildConsensus(c.Stdout(), args[0])
}

func buildConsensus(out io.Writer, name string) error {
	if _, err := os.Stat(name); err != nil {
		return err
	}
	if !dryRun {
		if err := exabayes.LookTool(); err != nil {
			return err
		}
	}

	files, err := runset.Resolve(name)
	if err != nil {
		return err
	}
	samples, err := runset.CountSamples(files[0])
	if err != nil {
		return err
	}
	if samples == 0 {
		return fmt.Errorf("file %q: no tree samples found", files[0])
	}
	burnIn, err := runset.BurnIn(samples, fraction)
	if err != nil {
		return err
	}

	prefix := analysisPrefix(name)
	p := exabayes.Params{
		BurnIn:  burnIn,
		MinFreq: minFreq,
		Output:  output,
		Log:     logFile,
	}
	if p.Output == "" {
		p.Output = prefix + ".con.tre"
	}
	if p.Log == "" {
		p.Log = prefix + ".consense.log"
	}
	base := filepath.Base(prefix) + ".postburn"
	for _, f := range files {
		d, err := runset.PreprocessName(f, base)
		if err != nil {
			return err
		}
		p.Files = append(p.Files, d)
	}

	if dryRun {
		fmt.Fprintf(out, "%s\n", strings.Join(exabayes.CmdLine(p), " "))
		return nil
	}

	var made []string
	for _, f := range files {
		d, err := runset.Preprocess(f, base)
		if err != nil {
			if !keep {
				runset.Cleanup(made)
			}
			return err
		}
		made = append(made, d)
	}

	total := (samples - burnIn) * len(files)
	fmt.Fprintf(out, "%d runs, %d samples each, burn-in %d: %d trees for the consensus\n", len(files), samples, burnIn, total)

	j, err := exabayes.Launch(p)
	if err != nil {
		if !keep {
			runset.Cleanup(made)
		}
		return err
	}
	m := exabayes.NewMonitor(p.Log, total, out)
	m.Run(j)
	err = j.Wait()
	if !keep {
		runset.Cleanup(made)
	}
	if err != nil {
		return fmt.Errorf("consensus build: %v (see log file %q)", err, p.Log)
	}
	fmt.Fprintf(out, "consensus tree written to %q\n", p.Output)
	return nil
}

// AnalysisPrefix returns the path of a run file
// without the run number
// and the file extension,
// used to name the files of the build.
func analysisPrefix(name string) string {
	ext := filepath.Ext(name)
	prefix := strings.TrimSuffix(name, ext)
	if i := strings.LastIndex(prefix, ".run-"); i > 0 {
		prefix = prefix[:i]
	}
	return prefix
}
