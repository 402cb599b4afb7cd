// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package contree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Newick reads one or more trees
// in parenthetical (newick) format.
// Node comments in brackets
// (for example "[&prob=0.98]")
// are attached to their nodes.
func Newick(r io.Reader) ([]*Tree, error) {
	br := bufio.NewReader(r)

	var trees []*Tree
	for i := 0; ; i++ {
		if err := skipSpaces(br); err != nil {
			break
		}
		t, err := readTree(br, "")
		if err != nil {
			return nil, fmt.Errorf("tree %d: %v", i, err)
		}
		trees = append(trees, t)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("while reading newick data: %v", io.ErrUnexpectedEOF)
	}
	return trees, nil
}

// Newick writes a tree in parenthetical (newick) format,
// including node comments,
// followed by a semicolon and a line break.
func (t *Tree) Newick(w io.Writer) error {
	bw := bufio.NewWriter(w)
	t.writeNode(bw, t.root, nil)
	bw.WriteString(";\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing tree %q: %v", t.name, err)
	}
	return nil
}

func (t *Tree) writeNode(w *bufio.Writer, id int, names map[string]string) {
	n := t.nodes[id]
	if len(n.children) > 0 {
		w.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				w.WriteByte(',')
			}
			t.writeNode(w, c, names)
		}
		w.WriteByte(')')
	}
	if n.label != "" {
		label := n.label
		if len(n.children) == 0 && names != nil {
			if v, ok := names[label]; ok {
				label = v
			}
		}
		w.WriteString(quoteLabel(label))
	}
	if n.comment != "" {
		w.WriteByte('[')
		w.WriteString(n.comment)
		w.WriteByte(']')
	}
	if n.brLen >= 0 {
		w.WriteByte(':')
		w.WriteString(strconv.FormatFloat(n.brLen, 'g', -1, 64))
	}
}

func quoteLabel(label string) string {
	if strings.ContainsAny(label, "()[]{}:;, \t'") {
		return "'" + strings.ReplaceAll(label, "'", "''") + "'"
	}
	return label
}

// ReadTree reads a single parenthetical tree
// up to its terminating semicolon.
func readTree(r *bufio.Reader, name string) (*Tree, error) {
	t := New(name)
	if err := readNode(r, t, t.root); err != nil {
		return nil, err
	}
	if err := skipSpaces(r); err != nil {
		return nil, fmt.Errorf("while reading tree: %v", err)
	}
	b, _ := r.ReadByte()
	if b != ';' {
		return nil, fmt.Errorf("got %q, expecting %q", b, ';')
	}
	return t, nil
}

func readNode(r *bufio.Reader, t *Tree, id int) error {
	if err := skipSpaces(r); err != nil {
		return err
	}
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b == '(' {
		for {
			c, err := t.Add(id, -1)
			if err != nil {
				return err
			}
			if err := readNode(r, t, c); err != nil {
				return err
			}
			if err := skipSpaces(r); err != nil {
				return err
			}
			b, err := r.ReadByte()
			if err != nil {
				return err
			}
			if b == ',' {
				continue
			}
			if b == ')' {
				break
			}
			return fmt.Errorf("got %q, expecting %q or %q", b, ',', ')')
		}
	} else {
		r.UnreadByte()
	}

	// label
	if err := skipSpaces(r); err != nil {
		return err
	}
	label, err := readLabel(r)
	if err != nil {
		return err
	}
	if label != "" {
		if err := t.SetLabel(id, label); err != nil {
			return err
		}
	}

	// comments and branch length
	for {
		if err := skipSpaces(r); err != nil {
			return err
		}
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch b {
		case '[':
			c, err := readComment(r)
			if err != nil {
				return err
			}
			if prev := t.Comment(id); prev != "" {
				c = prev + "," + c
			}
			if err := t.SetComment(id, c); err != nil {
				return err
			}
		case ':':
			if err := skipSpaces(r); err != nil {
				return err
			}
			// a comment might be placed
			// between the colon and the length value
			nb, err := r.ReadByte()
			if err != nil {
				return err
			}
			if nb == '[' {
				c, err := readComment(r)
				if err != nil {
					return err
				}
				if prev := t.Comment(id); prev != "" {
					c = prev + "," + c
				}
				if err := t.SetComment(id, c); err != nil {
					return err
				}
				if err := skipSpaces(r); err != nil {
					return err
				}
			} else {
				r.UnreadByte()
			}
			v, err := readBrLen(r)
			if err != nil {
				return err
			}
			t.nodes[id].brLen = v
		default:
			r.UnreadByte()
			return nil
		}
	}
}

func readLabel(r *bufio.Reader) (string, error) {
	b, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	if b == '\'' {
		var sb strings.Builder
		for {
			b, err := r.ReadByte()
			if err != nil {
				return "", fmt.Errorf("unterminated quoted label: %v", err)
			}
			if b == '\'' {
				nb, err := r.ReadByte()
				if err == nil && nb == '\'' {
					sb.WriteByte('\'')
					continue
				}
				if err == nil {
					r.UnreadByte()
				}
				return sb.String(), nil
			}
			sb.WriteByte(b)
		}
	}
	r.UnreadByte()

	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if strings.ContainsRune("()[]{}:;,", rune(b)) || unicode.IsSpace(rune(b)) {
			r.UnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	return sb.String(), nil
}

func readComment(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	depth := 1
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("unterminated comment: %v", err)
		}
		if b == '[' {
			depth++
		}
		if b == ']' {
			depth--
			if depth == 0 {
				return sb.String(), nil
			}
		}
		sb.WriteByte(b)
	}
}

func readBrLen(r *bufio.Reader) (float64, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if strings.ContainsRune("-+.eE0123456789", rune(b)) {
			sb.WriteByte(b)
			continue
		}
		r.UnreadByte()
		break
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return -1, fmt.Errorf("invalid branch length %q: %v", sb.String(), err)
	}
	return v, nil
}

func skipSpaces(r *bufio.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if !unicode.IsSpace(rune(b)) {
			return r.UnreadByte()
		}
	}
}
