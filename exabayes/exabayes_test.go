// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package exabayes_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/js-arias/phycon/exabayes"
)

func TestJob(t *testing.T) {
	dir := t.TempDir()
	restore := exabayes.SetTool("true")
	defer restore()

	p := exabayes.Params{
		BurnIn:  10,
		MinFreq: 0.5,
		Output:  filepath.Join(dir, "out.tre"),
		Log:     filepath.Join(dir, "consense.log"),
		Files:   []string{filepath.Join(dir, "postburn.run-0.t")},
	}
	j, err := exabayes.Launch(p)
	if err != nil {
		t.Fatalf("unable to launch job: %v", err)
	}
	if err := j.Wait(); err != nil {
		t.Errorf("job: unexpected error: %v", err)
	}

	select {
	case <-j.Done():
	default:
		t.Errorf("done channel must be closed after Wait")
	}
	if err := j.Err(); err != nil {
		t.Errorf("job error: got %v, want nil", err)
	}

	if _, err := os.Stat(p.Log); err != nil {
		t.Errorf("log file must be created: %v", err)
	}
}

func TestJobError(t *testing.T) {
	dir := t.TempDir()
	restore := exabayes.SetTool("false")
	defer restore()

	p := exabayes.Params{
		MinFreq: 0.5,
		Output:  filepath.Join(dir, "out.tre"),
		Log:     filepath.Join(dir, "consense.log"),
	}
	j, err := exabayes.Launch(p)
	if err != nil {
		t.Fatalf("unable to launch job: %v", err)
	}
	if err := j.Wait(); err == nil {
		t.Errorf("expecting error for a non-zero exit")
	}
	if err := j.Err(); err == nil {
		t.Errorf("expecting error from Err after Wait")
	}
}

func TestMonitorRun(t *testing.T) {
	dir := t.TempDir()
	restore := exabayes.SetTool("true")
	defer restore()

	p := exabayes.Params{
		MinFreq: 0.5,
		Output:  filepath.Join(dir, "out.tre"),
		Log:     filepath.Join(dir, "consense.log"),
	}
	j, err := exabayes.Launch(p)
	if err != nil {
		t.Fatalf("unable to launch job: %v", err)
	}

	// the monitor must return once the job is done,
	// leaving the job untouched
	m := exabayes.NewMonitor(p.Log, 100, io.Discard)
	m.Run(j)

	if err := j.Wait(); err != nil {
		t.Errorf("job: unexpected error: %v", err)
	}
}
