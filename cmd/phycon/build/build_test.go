// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package build

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRunFiles(t testing.TB, dir string, chains, samples int) []string {
	t.Helper()

	var files []string
	for c := 0; c < chains; c++ {
		var sb strings.Builder
		sb.WriteString("#NEXUS\nbegin trees;\n\ttranslate\n\t\t1 A,\n\t\t2 B,\n\t\t3 C;\n")
		for i := 0; i < samples; i++ {
			mark := ""
			if i == 0 {
				mark = ".{0}"
			}
			fmt.Fprintf(&sb, "\ttree gen.%d%s = [&U] ((1:0.1,2:0.2):0.05,3:0.3);\n", i*500, mark)
		}
		sb.WriteString("end;\n")

		name := filepath.Join(dir, fmt.Sprintf("primates.run-%d.trees", c))
		if err := os.WriteFile(name, []byte(sb.String()), 0644); err != nil {
			t.Fatalf("unable to write run file: %v", err)
		}
		files = append(files, name)
	}
	return files
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	files := writeRunFiles(t, dir, 3, 1000)

	fraction = 0.25
	minFreq = 0.5
	output = ""
	logFile = ""
	keep = false
	dryRun = true

	var buf bytes.Buffer
	if err := buildConsensus(&buf, files[0]); err != nil {
		t.Fatalf("dry run: unexpected error: %v", err)
	}

	want := fmt.Sprintf("consense -b 250 -t 0.5 -o %s %s %s %s\n",
		filepath.Join(dir, "primates.con.tre"),
		filepath.Join(dir, "primates.postburn.run-0.t"),
		filepath.Join(dir, "primates.postburn.run-1.t"),
		filepath.Join(dir, "primates.postburn.run-2.t"))
	if got := buf.String(); got != want {
		t.Errorf("dry run output:\ngot  %q\nwant %q", got, want)
	}

	// a dry run must not create any file
	ls, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("unable to list directory: %v", err)
	}
	if len(ls) != len(files) {
		t.Errorf("directory content: got %v, want %v", ls, files)
	}
}

func TestDryRunBadFraction(t *testing.T) {
	dir := t.TempDir()
	files := writeRunFiles(t, dir, 1, 10)

	fraction = 1.5
	dryRun = true
	defer func() { fraction = 0.25 }()

	var buf bytes.Buffer
	if err := buildConsensus(&buf, files[0]); err == nil {
		t.Errorf("expecting error for an out of range fraction")
	}
}

func TestAnalysisPrefix(t *testing.T) {
	tests := map[string]string{
		"primates.run-0.trees":          "primates",
		"dir/primates.run-12.trees":     "dir/primates",
		filepath.Join("a", "b.run-1.t"): filepath.Join("a", "b"),
	}
	for name, want := range tests {
		if got := analysisPrefix(name); got != want {
			t.Errorf("prefix of %q: got %q, want %q", name, got, want)
		}
	}
}
