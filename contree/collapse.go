// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package contree

import "slices"

// Collapse returns a copy of the tree
// in which every internal node
// with a support value below min
// is removed,
// attaching its children directly to its parent.
// The length of the removed branch
// is added to the branch of each re-attached child,
// so the total path length to every terminal
// is preserved.
//
// The support of a node is read
// as described in the Support method,
// using key for comment annotations.
// Nodes without a defined support,
// the terminals,
// and the root
// are never removed.
func (t *Tree) Collapse(min float64, key string) *Tree {
	nt := t.Copy()
	nt.collapseNode(nt.root, min, key)
	return nt
}

func (t *Tree) collapseNode(id int, min float64, key string) {
	n := t.nodes[id]
	for _, c := range slices.Clone(n.children) {
		t.collapseNode(c, min, key)
	}
	if n.parent < 0 || len(n.children) == 0 {
		return
	}
	v := t.Support(id, key)
	if v < 0 || v >= min {
		return
	}

	p := t.nodes[n.parent]
	for _, c := range n.children {
		cn := t.nodes[c]
		cn.parent = p.id
		if n.brLen >= 0 {
			if cn.brLen < 0 {
				cn.brLen = 0
			}
			cn.brLen += n.brLen
		}
	}
	i := slices.Index(p.children, id)
	p.children = slices.Concat(p.children[:i:i], n.children, p.children[i+1:])
	delete(t.nodes, id)
}
