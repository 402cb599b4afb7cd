// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package infofile_test

import (
	"strings"
	"testing"
	"time"

	"github.com/js-arias/phycon/exabayes/infofile"
)

const infoData = `[1000,12.5s] generation sample
[2000,11.2s] generation sample
Printing checkpoint
standard deviation of split frequencies for trees 0-2000 (avg/max):	4.20%	9.10%
[3000,13.0s] generation sample
[4000,12.1s] generation sample
standard deviation of split frequencies for trees 0-4000 (avg/max):	2.10%	5.40%
`

func TestRead(t *testing.T) {
	run, err := infofile.Read(strings.NewReader(infoData), "primates.0")
	if err != nil {
		t.Fatalf("unable to read info data: %v", err)
	}
	if run.Name != "primates.0" {
		t.Errorf("run name: got %q, want %q", run.Name, "primates.0")
	}
	if len(run.Records) != 4 {
		t.Fatalf("records: got %d, want %d", len(run.Records), 4)
	}
	if run.Converged {
		t.Errorf("run must not be reported as converged")
	}

	// no deviation reported yet
	if r := run.Records[0]; r.Gen != 1000 || r.Seconds != 12.5 || r.ASDSF >= 0 {
		t.Errorf("record 0: got %+v", r)
	}
	// a deviation line updates the previous record
	if r := run.Records[1]; r.ASDSF != 4.20 || r.MSDSF != 9.10 {
		t.Errorf("record 1: got %+v", r)
	}
	// and is carried forward
	if r := run.Records[2]; r.ASDSF != 4.20 || r.MSDSF != 9.10 {
		t.Errorf("record 2: got %+v", r)
	}

	last, ok := run.Last()
	if !ok {
		t.Fatalf("expecting a last record")
	}
	if last.Gen != 4000 || last.ASDSF != 2.10 || last.MSDSF != 5.40 {
		t.Errorf("last record: got %+v", last)
	}

	times := run.LastTimes(10)
	if len(times) != 4 {
		t.Errorf("last times: got %d values, want %d", len(times), 4)
	}
	if times[len(times)-1] != 12.1 {
		t.Errorf("last time: got %.2f, want %.2f", times[len(times)-1], 12.1)
	}
}

func TestConverged(t *testing.T) {
	data := infoData + "Converged/stopped after 4000 generations\n"
	run, err := infofile.Read(strings.NewReader(data), "primates.0")
	if err != nil {
		t.Fatalf("unable to read info data: %v", err)
	}
	if !run.Converged {
		t.Errorf("run must be reported as converged")
	}

	now := time.Date(2025, 5, 10, 10, 0, 0, 0, time.UTC)
	if !run.Finished(now, now) {
		t.Errorf("a converged run is always finished")
	}
}

func TestFinished(t *testing.T) {
	data := strings.Repeat("[1000,10.0s] generation sample\n", 12)
	run, err := infofile.Read(strings.NewReader(data), "primates.0")
	if err != nil {
		t.Fatalf("unable to read info data: %v", err)
	}

	lastMod := time.Date(2025, 5, 10, 10, 0, 0, 0, time.UTC)

	// idle for less than five times
	// the slowest recent generation
	if run.Finished(lastMod, lastMod.Add(30*time.Second)) {
		t.Errorf("an active run must not be finished")
	}
	// idle for longer
	if !run.Finished(lastMod, lastMod.Add(100*time.Second)) {
		t.Errorf("an idle run must be finished")
	}

	// too few records for the heuristic
	short, err := infofile.Read(strings.NewReader(infoData), "primates.0")
	if err != nil {
		t.Fatalf("unable to read info data: %v", err)
	}
	if short.Finished(lastMod, lastMod.Add(time.Hour)) {
		t.Errorf("a short run must not be reported as finished")
	}
}
