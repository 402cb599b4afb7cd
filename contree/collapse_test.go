// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package contree_test

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/phycon/contree"
)

func TestCollapse(t *testing.T) {
	trees, err := contree.Newick(strings.NewReader(newickCon))
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	tr := trees[0]

	ct := tr.Collapse(50, "prob(percent)")

	// the galago-otolemur node has support 40
	// and must be gone
	if ct.Len() != tr.Len()-1 {
		t.Errorf("nodes: got %d, want %d", ct.Len(), tr.Len()-1)
	}

	ga, err := ct.TermID("Galago_senegalensis")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}
	ot, err := ct.TermID("Otolemur_crassicaudatus")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}
	lo, err := ct.TermID("Loris_tardigradus")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}

	// the children of the collapsed node
	// are attached to its former parent
	if ct.Parent(ga) != ct.Parent(lo) {
		t.Errorf("parent of %q: got %d, want %d", "Galago_senegalensis", ct.Parent(ga), ct.Parent(lo))
	}
	if ct.Parent(ot) != ct.Parent(lo) {
		t.Errorf("parent of %q: got %d, want %d", "Otolemur_crassicaudatus", ct.Parent(ot), ct.Parent(lo))
	}

	// branch lengths are added
	if v := ct.BrLen(ga); math.Abs(v-0.20) > 1e-9 {
		t.Errorf("branch length: got %.6f, want %.6f", v, 0.20)
	}
	if v := ct.BrLen(ot); math.Abs(v-0.22) > 1e-9 {
		t.Errorf("branch length: got %.6f, want %.6f", v, 0.22)
	}

	// the homo-pan node has support 60
	// and must be kept intact
	ho, err := ct.TermID("Homo_sapiens")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}
	pa, err := ct.TermID("Pan_troglodytes")
	if err != nil {
		t.Fatalf("unable to find terminal: %v", err)
	}
	if ct.Parent(ho) != ct.Parent(pa) {
		t.Errorf("parent of %q: got %d, want %d", "Pan_troglodytes", ct.Parent(pa), ct.Parent(ho))
	}
	if ct.Parent(ho) == ct.Root() {
		t.Errorf("node with support %.0f must not be collapsed", 60.0)
	}
	if v := ct.BrLen(ho); v != 0.20 {
		t.Errorf("branch length: got %.6f, want %.6f", v, 0.20)
	}

	// path lengths to every terminal are preserved
	for _, term := range tr.Terms() {
		wd := termDepth(t, tr, term)
		gd := termDepth(t, ct, term)
		if math.Abs(wd-gd) > 1e-9 {
			t.Errorf("terminal %s: got depth %.6f, want %.6f", term, gd, wd)
		}
	}

	// the source tree is untouched
	if tr.Len() != 10 {
		t.Errorf("source tree: got %d nodes, want %d", tr.Len(), 10)
	}
	if !reflect.DeepEqual(ct.Terms(), tr.Terms()) {
		t.Errorf("terminals: got %v, want %v", ct.Terms(), tr.Terms())
	}
}

func TestCollapseAll(t *testing.T) {
	trees, err := contree.Newick(strings.NewReader(newickCon))
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	tr := trees[0]

	// with a threshold over any support
	// every supported node collapses
	// while the root and the terminals are kept
	ct := tr.Collapse(101, "prob(percent)")
	if ct.Len() != 7 {
		t.Errorf("nodes: got %d, want %d", ct.Len(), 7)
	}
	for _, term := range ct.Terms() {
		id, err := ct.TermID(term)
		if err != nil {
			t.Fatalf("unable to find terminal: %v", err)
		}
		if ct.Parent(id) != ct.Root() {
			t.Errorf("terminal %s: got parent %d, want the root", term, ct.Parent(id))
		}
	}
	for _, term := range tr.Terms() {
		wd := termDepth(t, tr, term)
		gd := termDepth(t, ct, term)
		if math.Abs(wd-gd) > 1e-9 {
			t.Errorf("terminal %s: got depth %.6f, want %.6f", term, gd, wd)
		}
	}
}

func TestCollapseNoSupport(t *testing.T) {
	trees, err := contree.Newick(strings.NewReader("((A:1,B:2):0.5,C:3);"))
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	tr := trees[0]

	// nodes without a defined support are kept
	ct := tr.Collapse(50, "prob(percent)")
	if ct.Len() != tr.Len() {
		t.Errorf("nodes: got %d, want %d", ct.Len(), tr.Len())
	}
}
