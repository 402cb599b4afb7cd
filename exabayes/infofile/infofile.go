// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package infofile implements the reading
// of the information files
// written by the ExaBayes sampler,
// used to follow the convergence of a run.
package infofile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// A Record is a sampled generation
// reported in an information file.
type Record struct {
	// Generation number.
	Gen int64

	// Seconds spent since the previous
	// reported generation.
	Seconds float64

	// Average and maximum standard deviation
	// of split frequencies
	// at the generation,
	// as percentages.
	// The sampler only reports them
	// every few generations;
	// the last reported values are carried forward.
	// A negative value means that no deviation
	// has been reported yet.
	ASDSF float64
	MSDSF float64
}

// A Run is the content of an information file
// of a sampling run.
type Run struct {
	// Name of the run.
	Name string

	// Records of the reported generations,
	// in file order.
	Records []Record

	// Converged indicates that the sampler
	// reported an explicit stop.
	Converged bool
}

var genRe = regexp.MustCompile(`\[(\d+),([\d.]+)s\]`)
var sdsfRe = regexp.MustCompile(`standard deviation of split frequencies for trees [\d-]+ \(avg/max\):\s+([\d.]+)%\s+([\d.]+)%`)

const convergedMark = "Converged/stopped after"

// Read reads an information file
// for a run with the given name.
func Read(r io.Reader, name string) (*Run, error) {
	run := &Run{Name: name}

	asdsf := -1.0
	msdsf := -1.0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		ln := sc.Text()
		if m := genRe.FindStringSubmatch(ln); m != nil {
			gen, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			secs, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			run.Records = append(run.Records, Record{
				Gen:     gen,
				Seconds: secs,
				ASDSF:   asdsf,
				MSDSF:   msdsf,
			})
			continue
		}
		if m := sdsfRe.FindStringSubmatch(ln); m != nil {
			a, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			x, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			asdsf = a
			msdsf = x
			if len(run.Records) > 0 {
				r := &run.Records[len(run.Records)-1]
				r.ASDSF = a
				r.MSDSF = x
			}
			continue
		}
		if strings.Contains(ln, convergedMark) {
			run.Converged = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("run %q: %v", name, err)
	}
	return run, nil
}

// Last returns the last reported record of the run.
func (run *Run) Last() (Record, bool) {
	if len(run.Records) == 0 {
		return Record{}, false
	}
	return run.Records[len(run.Records)-1], true
}

// LastTimes returns the seconds per generation
// of the most recent records of the run,
// up to the given number.
func (run *Run) LastTimes(max int) []float64 {
	if max > len(run.Records) {
		max = len(run.Records)
	}
	times := make([]float64, 0, max)
	for _, r := range run.Records[len(run.Records)-max:] {
		times = append(times, r.Seconds)
	}
	return times
}

// IdleFactor is the number of times
// the slowest recent generation
// that a run can stay unmodified
// before it is considered finished.
const idleFactor = 5

// Finished reports whether the run
// seems to have finished:
// either the sampler reported convergence,
// or the file has been idle for longer than
// five times the slowest
// of the last ten generations.
// The lastMod argument is the modification time
// of the information file,
// and now is the current time.
func (run *Run) Finished(lastMod, now time.Time) bool {
	if run.Converged {
		return true
	}
	times := run.LastTimes(10)
	if len(times) < 10 {
		return false
	}
	max := times[0]
	for _, v := range times {
		if v > max {
			max = v
		}
	}
	return now.Sub(lastMod).Seconds() > max*idleFactor
}
