// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package exabayes implements the launching
// and monitoring of the external consensus program
// of the ExaBayes suite,
// used to summarize the tree samples
// of a Bayesian phylogenetic analysis.
package exabayes

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// ConsenseTool is the name of the external program
// that builds the consensus tree.
const ConsenseTool = "consense"

// tool is the program invoked by Launch.
// It is a variable only to be replaced in tests.
var tool = ConsenseTool

// LookTool reports whether the consensus program
// can be found in the system.
func LookTool() error {
	if _, err := exec.LookPath(ConsenseTool); err != nil {
		return fmt.Errorf("program %q not found: %v", ConsenseTool, err)
	}
	return nil
}

// Params are the parameters used to build
// the invocation of the consensus program.
type Params struct {
	// Number of samples to discard
	// from the start of each run file.
	BurnIn int

	// Minimum frequency of a split
	// to be included in the consensus tree.
	MinFreq float64

	// Output defines the file
	// for the consensus tree.
	Output string

	// Log defines the file that captures
	// the standard output and error
	// of the consensus program.
	Log string

	// Files are the preprocessed run files
	// with the tree samples.
	Files []string
}

// CmdLine returns the command line
// used to invoke the consensus program.
func CmdLine(p Params) []string {
	args := []string{
		ConsenseTool,
		"-b", strconv.Itoa(p.BurnIn),
		"-t", strconv.FormatFloat(p.MinFreq, 'g', -1, 64),
		"-o", p.Output,
	}
	return append(args, p.Files...)
}

// A Job is a running instance
// of the consensus program.
type Job struct {
	cmd   *exec.Cmd
	start time.Time
	done  chan struct{}
	err   error
}

// Launch starts the consensus program
// in the background,
// with its output redirected to the log file.
// The returned job owns the process
// for its whole lifetime.
func Launch(p Params) (*Job, error) {
	args := CmdLine(p)

	log, err := os.Create(p.Log)
	if err != nil {
		return nil, fmt.Errorf("unable to create log file: %v", err)
	}

	cmd := exec.Command(tool, args[1:]...)
	cmd.Stdout = log
	cmd.Stderr = log
	if err := cmd.Start(); err != nil {
		log.Close()
		return nil, fmt.Errorf("unable to start %q: %v", tool, err)
	}

	j := &Job{
		cmd:   cmd,
		start: time.Now(),
		done:  make(chan struct{}),
	}
	go func() {
		err := cmd.Wait()
		log.Close()
		if err != nil {
			j.err = fmt.Errorf("program %q: %v", tool, err)
		}
		close(j.done)
	}()
	return j, nil
}

// Done returns a channel that is closed
// when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the exit error of the job.
// It must be called only after the channel
// returned by Done is closed.
func (j *Job) Err() error {
	return j.err
}

// Start returns the time
// at which the job was launched.
func (j *Job) Start() time.Time {
	return j.start
}

// Wait blocks until the job finishes
// and returns its exit error.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}
