// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package runset implements the handling
// of the tree sample files
// written by the independent runs
// of a Bayesian phylogenetic sampling.
//
// Each run writes its samples to its own file,
// with the run (chain) number
// embedded in the file name
// (for example "primates.run-0.trees").
// All the files of an analysis
// are siblings in the same directory.
package runset

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrNoRunFiles is returned when no run file
// matches the expected sibling pattern.
var ErrNoRunFiles = errors.New("no run files found")

// ChainRe matches the chain number
// embedded in a run file name.
var chainRe = regexp.MustCompile(`run-(\d+)`)

// Chain returns the chain number
// embedded in a run file name.
func Chain(name string) (int, error) {
	m := chainRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, fmt.Errorf("file %q: name without a chain number", name)
	}
	c, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("file %q: invalid chain number: %v", name, err)
	}
	return c, nil
}

// Resolve searches for all the run files
// that belong to the same analysis
// as the named file,
// replacing the chain number of the name
// with a wildcard
// and listing the matching siblings.
// The returned paths are sorted,
// so repeated calls always produce
// the same file order.
func Resolve(name string) ([]string, error) {
	if _, err := Chain(name); err != nil {
		return nil, err
	}

	base := chainRe.ReplaceAllString(filepath.Base(name), "run-*")
	pattern := filepath.Join(filepath.Dir(name), base)
	ls, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("file %q: %v", name, err)
	}
	if len(ls) == 0 {
		return nil, fmt.Errorf("file %q: pattern %q: %w", name, pattern, ErrNoRunFiles)
	}
	slices.Sort(ls)
	return ls, nil
}

// BurnIn returns the number of samples to discard
// from each run,
// for a total of n samples
// and a burn-in fraction f.
// The result is always rounded up,
// so at least the requested fraction
// is discarded.
func BurnIn(n int, f float64) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("invalid sample number %d", n)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("burn-in fraction %.6f out of range [0,1]", f)
	}
	// the product is rounded to a fixed precision,
	// as the binary float product of an exact decimal fraction
	// can land just above its true value
	// and overshoot the ceiling
	p := math.Round(float64(n)*f*1e6) / 1e6
	return int(math.Ceil(p)), nil
}

// SamplePrefix starts every tree sample line
// in a run file.
const samplePrefix = "\ttree "

// CountSamples returns the number of tree samples
// stored in a run file.
func CountSamples(name string) (int, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), samplePrefix) {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return n, nil
}

// MarkRe matches the multiplicity mark
// that the sampler adds
// to first generation samples.
var markRe = regexp.MustCompile(`\.?\{0\}`)

// PreprocessName returns the name
// of the destination file
// of the preprocessing of a run file,
// keeping its chain number.
func PreprocessName(name, base string) (string, error) {
	c, err := Chain(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.run-%d.t", base, c)), nil
}

// Preprocess rewrites a run file
// into a normalized sibling file
// named "<base>.run-<chain>.t",
// removing the multiplicity mark ("{0}")
// that the sampler attaches
// to the generation number
// of first generation samples.
// Everything else is copied untouched.
//
// If the destination file already exists
// it is kept as is,
// so an interrupted run
// can be resumed without rewriting.
// It returns the path of the destination file.
func Preprocess(name, base string) (string, error) {
	dest, err := PreprocessName(name, base)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}

	bw := bufio.NewWriter(out)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	for sc.Scan() {
		ln := sc.Text()
		if strings.HasPrefix(ln, samplePrefix) {
			// only the first occurrence is a mark,
			// anything else is part of the tree
			if loc := markRe.FindStringIndex(ln); loc != nil {
				ln = ln[:loc[0]] + ln[loc[1]:]
			}
		}
		fmt.Fprintf(bw, "%s\n", ln)
	}
	if err := sc.Err(); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("while reading file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("while writing file %q: %v", dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("while writing file %q: %v", dest, err)
	}
	return dest, nil
}

// Cleanup removes the given files,
// usually the destination files
// of a preprocessing.
// Files already removed are ignored.
func Cleanup(files []string) {
	for _, f := range files {
		os.Remove(f)
	}
}
