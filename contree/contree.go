// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package contree implements a phylogenetic tree
// with branch lengths and support values,
// as the consensus trees produced
// by Bayesian phylogenetic programs.
package contree

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrNotInTree is returned when a terminal
// searched by its label
// is not found in a tree.
var ErrNotInTree = errors.New("terminal not in tree")

// A Tree is a rooted phylogenetic tree
// with branch lengths,
// and support values on its internal nodes.
type Tree struct {
	name  string
	root  int
	nodes map[int]*node
}

type node struct {
	id       int
	parent   int
	children []int

	// brLen is the length of the branch
	// that connects the node with its parent.
	// A negative value means that the length is undefined.
	brLen float64

	// label is the taxon name on a terminal,
	// or any label
	// (most often a support value)
	// on an internal node.
	label string

	// comment stores the content of any bracketed comment
	// attached to the node,
	// without the enclosing brackets.
	comment string
}

// New creates a new tree with the indicated name.
// The new tree contains only its root node,
// with the ID 0.
func New(name string) *Tree {
	t := &Tree{
		name:  name,
		nodes: make(map[int]*node),
	}
	root := &node{
		id:     0,
		parent: -1,
		brLen:  -1,
	}
	t.nodes[root.id] = root
	return t
}

// Add adds a new node as a child of the indicated node,
// with a branch of the given length
// (use a negative value for an undefined length),
// and returns the ID of the added node.
func (t *Tree) Add(parent int, brLen float64) (int, error) {
	p, ok := t.nodes[parent]
	if !ok {
		return -1, fmt.Errorf("parent node %d not in tree", parent)
	}
	if brLen < 0 {
		brLen = -1
	}

	n := &node{
		id:     len(t.nodes),
		parent: parent,
		brLen:  brLen,
	}
	for t.nodes[n.id] != nil {
		n.id++
	}
	t.nodes[n.id] = n
	p.children = append(p.children, n.id)
	return n.id, nil
}

// BrLen returns the length of the branch
// that connects a node with its parent.
// It returns a negative value
// if the length is undefined,
// or the node is the root.
func (t *Tree) BrLen(id int) float64 {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	return n.brLen
}

// Children returns the IDs of the children of a node.
func (t *Tree) Children(id int) []int {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// Comment returns the comment attached to a node,
// without the enclosing brackets.
func (t *Tree) Comment(id int) string {
	n, ok := t.nodes[id]
	if !ok {
		return ""
	}
	return n.comment
}

// Copy returns a deep copy of a tree.
func (t *Tree) Copy() *Tree {
	nt := &Tree{
		name:  t.name,
		root:  t.root,
		nodes: make(map[int]*node, len(t.nodes)),
	}
	for id, n := range t.nodes {
		nn := *n
		nn.children = slices.Clone(n.children)
		nt.nodes[id] = &nn
	}
	return nt
}

// IsRoot returns true if the indicated node
// is the root of the tree.
func (t *Tree) IsRoot(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return n.parent < 0
}

// IsTerm returns true if the indicated node
// is a terminal of the tree.
func (t *Tree) IsTerm(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return len(n.children) == 0
}

// Label returns the label of a node:
// the taxon name on a terminal,
// or the stored label
// (usually a support value)
// on an internal node.
func (t *Tree) Label(id int) string {
	n, ok := t.nodes[id]
	if !ok {
		return ""
	}
	return n.label
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// Nodes returns the IDs of all nodes in the tree.
func (t *Tree) Nodes() []int {
	ids := make([]int, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Parent returns the ID of the parent of a node.
// It returns a negative value for the root.
func (t *Tree) Parent(id int) int {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	return n.parent
}

// Root returns the ID of the root node,
// which is always 0.
func (t *Tree) Root() int {
	return t.root
}

// SetComment sets the comment of a node,
// without the enclosing brackets.
func (t *Tree) SetComment(id int, c string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("node %d not in tree", id)
	}
	n.comment = c
	return nil
}

// SetLabel sets the label of a node.
func (t *Tree) SetLabel(id int, label string) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("node %d not in tree", id)
	}
	n.label = strings.TrimSpace(label)
	return nil
}

// SetName sets the name of the tree.
func (t *Tree) SetName(name string) {
	t.name = strings.TrimSpace(name)
}

// StripTermComments removes the comments
// attached to the terminals of the tree.
// Internal node comments
// (which carry the support annotations)
// are kept.
func (t *Tree) StripTermComments() {
	for _, n := range t.nodes {
		if len(n.children) > 0 {
			continue
		}
		n.comment = ""
	}
}

// Support returns the support value of a node.
// The value is taken from the node label
// if the label is a number,
// or from the indicated key
// of the node comment.
// It returns a negative value
// if the node has no defined support.
func (t *Tree) Support(id int, key string) float64 {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	if len(n.children) == 0 {
		return -1
	}
	if v, err := strconv.ParseFloat(n.label, 64); err == nil && v >= 0 {
		return v
	}
	if v, ok := commentValue(n.comment, key); ok {
		return v
	}
	return -1
}

// TermID returns the ID of the terminal
// with the indicated label.
func (t *Tree) TermID(label string) (int, error) {
	label = strings.TrimSpace(label)
	for _, id := range t.Nodes() {
		n := t.nodes[id]
		if len(n.children) > 0 {
			continue
		}
		if n.label == label {
			return id, nil
		}
	}
	return -1, fmt.Errorf("terminal %q: %w", label, ErrNotInTree)
}

// Terms returns the labels of all terminals of the tree,
// in alphabetical order.
func (t *Tree) Terms() []string {
	var terms []string
	for _, n := range t.nodes {
		if len(n.children) > 0 {
			continue
		}
		terms = append(terms, n.label)
	}
	slices.Sort(terms)
	return terms
}

// CommentValue extracts a numeric value
// from a bracketed comment
// in the form "&key1=value1,key2=value2".
// Values enclosed in quotation marks
// or followed by a percent sign
// are accepted.
func commentValue(comment, key string) (float64, bool) {
	if comment == "" || key == "" {
		return 0, false
	}

	depth := 0
	start := 0
	var fields []string
	for i, r := range comment {
		switch r {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		case ',':
			if depth == 0 {
				fields = append(fields, comment[start:i])
				start = i + 1
			}
		}
	}
	fields = append(fields, comment[start:])

	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimSpace(f), "&")
		val, ok := strings.CutPrefix(f, key)
		if !ok {
			continue
		}
		val, ok = strings.CutPrefix(strings.TrimSpace(val), "=")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		val = strings.Trim(val, `"'`)
		val = strings.TrimSuffix(val, "%")
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
