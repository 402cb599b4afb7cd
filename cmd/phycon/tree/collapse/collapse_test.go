// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package collapse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/js-arias/phycon/contree"
)

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "primates.tre")
	data := "((A[&prob(percent)=\"100\"]:0.3,(B:0.15,C:0.17)[&prob(percent)=\"40\"]:0.05)[&prob(percent)=\"98\"]:0.1,D:0.4);\n"
	if err := os.WriteFile(name, []byte(data), 0644); err != nil {
		t.Fatalf("unable to write tree file: %v", err)
	}

	bootstrap = 50
	annotation = "prob(percent)"
	rerootOn = ""
	strip = false
	output = ""

	if err := processFile(name); err != nil {
		t.Fatalf("unable to process file: %v", err)
	}

	dest := filepath.Join(dir, "primates_collapsed50.tre")
	f, err := os.Open(dest)
	if err != nil {
		t.Fatalf("unable to open output: %v", err)
	}
	defer f.Close()

	trees, err := contree.Newick(f)
	if err != nil {
		t.Fatalf("unable to read output: %v", err)
	}
	tr := trees[0]

	// the node with support 40 must be gone
	b, err := tr.TermID("B")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}
	a, err := tr.TermID("A")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}
	if tr.Parent(b) != tr.Parent(a) {
		t.Errorf("parent of %q: got %d, want %d", "B", tr.Parent(b), tr.Parent(a))
	}
	if v := tr.BrLen(b); v != 0.20 {
		t.Errorf("branch length: got %.6f, want %.6f", v, 0.20)
	}
}

func TestProcessFileReroot(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "primates.tre")
	data := "((A:0.3,B:0.2)98:0.1,(C:0.2,D:0.22)60:0.12,E:0.4);\n"
	if err := os.WriteFile(name, []byte(data), 0644); err != nil {
		t.Fatalf("unable to write tree file: %v", err)
	}

	bootstrap = 50
	annotation = "prob(percent)"
	rerootOn = "E"
	strip = false
	output = filepath.Join(dir, "rooted.tre")
	defer func() { rerootOn = ""; output = "" }()

	if err := processFile(name); err != nil {
		t.Fatalf("unable to process file: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("unable to open output: %v", err)
	}
	defer f.Close()
	trees, err := contree.Newick(f)
	if err != nil {
		t.Fatalf("unable to read output: %v", err)
	}
	tr := trees[0]

	e, err := tr.TermID("E")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}
	if tr.Parent(e) != tr.Root() {
		t.Errorf("outgroup parent: got %d, want the root", tr.Parent(e))
	}

	// a missing outgroup fails without writing
	rerootOn = "X"
	output = filepath.Join(dir, "unrooted.tre")
	if err := processFile(name); err == nil {
		t.Errorf("expecting error for a missing outgroup")
	}
	if _, err := os.Stat(output); err == nil {
		t.Errorf("a failed tree must not be written")
	}
	src, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unable to read source file: %v", err)
	}
	if string(src) != data {
		t.Errorf("source file must be untouched")
	}
}
