// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package summary implements a command to print
// the state of the sampling runs
// found in one or more directories.
package summary

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/phycon/exabayes/infofile"
	"gonum.org/v1/gonum/stat"
)

var Command = &command.Command{
	Usage: "summary <directory>...",
	Short: "print the state of the sampling runs",
	Long: `
Command summary searches one or more directories for the information files
written by the ExaBayes sampler ("ExaBayes_info.*"), and prints a table with
the state of each run: the last sampled generation, the average and maximum
standard deviation of split frequencies, the time of the last generation, the
average time per generation over the last sampled generations, the time of
the last file modification, and whether the run looks finished (FIN) or still
running (RUN).

A run is considered finished if the sampler reported an explicit stop, or if
the file has not been modified for longer than five times the slowest of its
last ten generations.

The arguments of the command are the names of the directories to search;
sub-directories are included in the search.
	`,
	Run: run,
}

// InfoPrefix is the name prefix of the information files
// written by the sampler.
const infoPrefix = "ExaBayes_info."

type runState struct {
	run      *infofile.Run
	lastMod  time.Time
	finished bool

	// mean and standard deviation
	// of the time per generation
	// over the last sampled generations
	mean, sd float64
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting directory name")
	}

	now := time.Now()
	var states []runState
	for _, dir := range args {
		fi, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return fmt.Errorf("path %q is not a directory", dir)
		}

		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasPrefix(d.Name(), infoPrefix) {
				return nil
			}
			st, err := readInfoFile(path, now)
			if err != nil {
				return err
			}
			states = append(states, st)
			return nil
		})
		if err != nil {
			return err
		}
	}
	if len(states) == 0 {
		fmt.Fprintf(c.Stdout(), "No sampling runs found.\n")
		return nil
	}

	// running first,
	// then by run name
	slices.SortFunc(states, func(a, b runState) int {
		if a.finished != b.finished {
			if a.finished {
				return 1
			}
			return -1
		}
		return strings.Compare(a.run.Name, b.run.Name)
	})
	printTable(c, states)
	return nil
}

func readInfoFile(path string, now time.Time) (runState, error) {
	f, err := os.Open(path)
	if err != nil {
		return runState{}, err
	}
	defer f.Close()

	name := strings.TrimPrefix(filepath.Base(path), infoPrefix)
	run, err := infofile.Read(f, name)
	if err != nil {
		return runState{}, fmt.Errorf("on file %q: %v", path, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return runState{}, err
	}

	st := runState{
		run:      run,
		lastMod:  fi.ModTime(),
		finished: run.Finished(fi.ModTime(), now),
	}
	if times := run.LastTimes(10); len(times) > 1 {
		st.mean = stat.Mean(times, nil)
		st.sd = stat.StdDev(times, nil)
	}
	return st, nil
}

func printTable(c *command.Command, states []runState) {
	nameLen := len("Run")
	for _, st := range states {
		if len(st.run.Name) > nameLen {
			nameLen = len(st.run.Name)
		}
	}

	fmt.Fprintf(c.Stdout(), "%-*s  %7s  %6s  %6s  %9s  %14s  %-19s  %s\n",
		nameLen, "Run", "NumGen", "ASDSF", "MSDSF", "LastIncr", "GenTime", "LastModified", "Status")
	for _, st := range states {
		gen := "N/A"
		incr := "N/A"
		asdsf := "N/A"
		msdsf := "N/A"
		if last, ok := st.run.Last(); ok {
			gen = humanNumber(last.Gen)
			incr = fmt.Sprintf("%.1fs", last.Seconds)
			if last.ASDSF >= 0 {
				asdsf = fmt.Sprintf("%.2f%%", last.ASDSF)
				msdsf = fmt.Sprintf("%.2f%%", last.MSDSF)
			}
		}
		genTime := "N/A"
		if st.mean > 0 {
			genTime = fmt.Sprintf("%.1fs ± %.1fs", st.mean, st.sd)
		}
		status := "RUN"
		if st.finished {
			status = "FIN"
		}
		fmt.Fprintf(c.Stdout(), "%-*s  %7s  %6s  %6s  %9s  %14s  %-19s  %s\n",
			nameLen, st.run.Name, gen, asdsf, msdsf, incr, genTime,
			st.lastMod.Format(time.DateTime), status)
	}
}

// HumanNumber formats a generation number
// with a suffix for thousands and millions.
func humanNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fm", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}
