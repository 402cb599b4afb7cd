// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package contree

import "fmt"

// Reroot returns a copy of the tree
// rooted at the branch that leads
// to the terminal with the given label,
// so that the terminal
// and the clade with all other terminals
// become the two children of the new root.
// The length of the split branch is divided
// between the two children of the new root,
// and all other branch lengths are preserved,
// so the path length between any two terminals
// does not change.
//
// It returns an error wrapping ErrNotInTree
// if the terminal is not found,
// leaving the receiver untouched.
func (t *Tree) Reroot(outgroup string) (*Tree, error) {
	og, err := t.TermID(outgroup)
	if err != nil {
		return nil, fmt.Errorf("while rerooting tree %q: %w", t.name, err)
	}
	on := t.nodes[og]
	if on.parent == t.root && len(t.nodes[t.root].children) == 2 {
		// already at the outgroup position
		return t.Copy(), nil
	}

	nt := New(t.name)
	half := on.brLen
	if half >= 0 {
		half /= 2
	}
	nt.graft(t, og, nt.root, half)
	nt.rehang(t, on.parent, og, nt.root, half)
	return nt, nil
}

// Graft copies the subtree of src rooted at id
// as a child of parent,
// with a branch of the given length.
func (nt *Tree) graft(src *Tree, id, parent int, brLen float64) {
	n := src.nodes[id]
	nid, _ := nt.Add(parent, brLen)
	nn := nt.nodes[nid]
	nn.label = n.label
	nn.comment = n.comment
	for _, c := range n.children {
		nt.graft(src, c, nid, src.nodes[c].brLen)
	}
}

// Rehang copies the node id of src as a child of parent,
// reversing the direction of the branch
// between id and the excluded neighbor
// (a former child of id).
// A node left with a single neighbor
// is suppressed,
// merging its two branches into one.
func (nt *Tree) rehang(src *Tree, id, exclude, parent int, brLen float64) {
	n := src.nodes[id]
	rest := make([]int, 0, len(n.children))
	for _, c := range n.children {
		if c == exclude {
			continue
		}
		rest = append(rest, c)
	}

	if n.parent < 0 && len(rest) == 1 {
		// the old root became redundant:
		// attach its only remaining child directly
		c := src.nodes[rest[0]]
		cLen := c.brLen
		if cLen < 0 {
			cLen = 0
		}
		if brLen < 0 {
			brLen = 0
		}
		nt.graft(src, c.id, parent, brLen+cLen)
		return
	}

	nid, _ := nt.Add(parent, brLen)
	nn := nt.nodes[nid]
	nn.label = n.label
	nn.comment = n.comment
	for _, c := range rest {
		nt.graft(src, c, nid, src.nodes[c].brLen)
	}
	if n.parent >= 0 {
		nt.rehang(src, n.parent, id, nid, n.brLen)
	}
}
