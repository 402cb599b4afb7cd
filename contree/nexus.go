// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package contree

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Nexus reads the trees block of a NEXUS file.
// Numeric terminal labels are replaced
// using the translation table of the block,
// if one is defined.
func Nexus(r io.Reader) ([]*Tree, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("while reading nexus data: %v", err)
	}
	content := string(all)

	low := strings.ToLower(content)
	start := strings.Index(low, "begin trees")
	if start < 0 {
		return nil, fmt.Errorf("nexus data without a trees block")
	}
	block := content[start:]
	if _, rest, ok := statement(block); ok {
		block = rest
	}

	names := make(map[string]string)
	var trees []*Tree
	for {
		st, rest, ok := statement(block)
		if !ok {
			break
		}
		st = strings.TrimSpace(st)
		block = rest
		if st == "" {
			continue
		}

		kw := strings.ToLower(firstWord(st))
		switch kw {
		case "translate":
			if err := readTranslate(st[len(kw):], names); err != nil {
				return nil, err
			}
		case "tree":
			t, err := readTreeStatement(st[len(kw):])
			if err != nil {
				return nil, err
			}
			trees = append(trees, t)
		case "end", "endblock":
			if len(trees) == 0 {
				return nil, fmt.Errorf("trees block without trees")
			}
			translate(trees, names)
			return trees, nil
		}
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("trees block without trees")
	}
	translate(trees, names)
	return trees, nil
}

// WriteNexus writes one or more trees
// as the trees block of a NEXUS file,
// with terminal labels stored
// in a translation table.
func WriteNexus(w io.Writer, trees []*Tree) error {
	if len(trees) == 0 {
		return fmt.Errorf("while writing nexus data: no trees to write")
	}

	terms := make(map[string]bool)
	for _, t := range trees {
		for _, term := range t.Terms() {
			terms[term] = true
		}
	}
	ls := make([]string, 0, len(terms))
	for term := range terms {
		ls = append(ls, term)
	}
	slices.Sort(ls)

	names := make(map[string]string, len(ls))
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#NEXUS\n\nbegin trees;\n\ttranslate\n")
	for i, term := range ls {
		names[term] = fmt.Sprintf("%d", i+1)
		sep := ","
		if i == len(ls)-1 {
			sep = ";"
		}
		fmt.Fprintf(bw, "\t\t%d %s%s\n", i+1, quoteLabel(term), sep)
	}
	for i, t := range trees {
		name := t.Name()
		if name == "" {
			name = fmt.Sprintf("tree_%d", i+1)
		}
		fmt.Fprintf(bw, "\ttree %s = ", quoteLabel(name))
		t.writeNode(bw, t.root, names)
		fmt.Fprintf(bw, ";\n")
	}
	fmt.Fprintf(bw, "end;\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing nexus data: %v", err)
	}
	return nil
}

// Statement returns the next statement of a block,
// up to its terminating semicolon.
// Semicolons inside quoted labels
// or bracketed comments
// do not end a statement.
func statement(block string) (st, rest string, ok bool) {
	quoted := false
	depth := 0
	for i := 0; i < len(block); i++ {
		switch block[i] {
		case '\'':
			// a doubled quote is an escaped quote character
			if quoted && i+1 < len(block) && block[i+1] == '\'' {
				i++
				continue
			}
			quoted = !quoted
		case '[':
			if !quoted {
				depth++
			}
		case ']':
			if !quoted && depth > 0 {
				depth--
			}
		case ';':
			if !quoted && depth == 0 {
				return block[:i], block[i+1:], true
			}
		}
	}
	return "", "", false
}

func firstWord(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func readTranslate(s string, names map[string]string) error {
	for _, pair := range strings.Split(s, ",") {
		f := strings.Fields(pair)
		if len(f) == 0 {
			continue
		}
		if len(f) < 2 {
			return fmt.Errorf("translate: invalid pair %q", pair)
		}
		label := strings.Join(f[1:], " ")
		label = strings.Trim(label, "'")
		names[f[0]] = label
	}
	return nil
}

func readTreeStatement(s string) (*Tree, error) {
	eq := strings.Index(s, "=")
	if eq < 0 {
		return nil, fmt.Errorf("tree statement without %q", '=')
	}
	name := strings.TrimSpace(s[:eq])
	name = strings.Trim(name, "'")
	s = strings.TrimSpace(s[eq+1:])

	// rooting comment
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return nil, fmt.Errorf("tree %q: unterminated comment", name)
		}
		s = strings.TrimSpace(s[end+1:])
	}

	r := bufio.NewReader(strings.NewReader(s + ";"))
	t, err := readTree(r, name)
	if err != nil {
		return nil, fmt.Errorf("tree %q: %v", name, err)
	}
	return t, nil
}

func translate(trees []*Tree, names map[string]string) {
	if len(names) == 0 {
		return
	}
	for _, t := range trees {
		for _, n := range t.nodes {
			if len(n.children) > 0 {
				continue
			}
			if label, ok := names[n.label]; ok {
				n.label = label
			}
		}
	}
}
