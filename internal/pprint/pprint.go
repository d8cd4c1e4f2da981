// Package pprint renders a cell tree to stdout, one line per cell,
// indented by nesting depth. Grounded on utils/pprint.rs: the same
// depth/breadth cutoffs (0 means unlimited), the same box-drawing
// separators per indent level, and the same "•" marker for an otherwise
// empty line.
package pprint

import (
	"fmt"
	"strings"

	"treenav/internal/cell"
	"treenav/internal/herr"
)

const indentWidth = 4

var separators = []string{"│ ", "╞ ", "╝ ", "├ "}

// Print writes c and, recursively, its attr and sub children to stdout,
// stopping at depth levels deep (0 = unlimited) and showing at most
// breadth siblings per group (0 = unlimited).
func Print(c cell.Cell, depth, breadth int) {
	var b strings.Builder
	renderNode(c, "", depth, breadth, 0, &b)
}

func renderNode(c cell.Cell, prefix string, depth, breadth, indent int, b *strings.Builder) {
	if depth > 0 && indent > depth {
		return
	}
	printCell(c, prefix, indent, b)
	printGroup("@", c.Attr, depth, breadth, indent, b)
	printGroup("", c.Sub, depth, breadth, indent, b)
}

func printGroup(prefix string, open func() (cell.Group, error), depth, breadth, indent int, b *strings.Builder) {
	if depth > 0 && indent+1 == depth {
		return
	}
	group, err := open()
	if err != nil {
		return
	}
	n, err := group.Len()
	if err != nil {
		return
	}
	for i := 0; i < n; i++ {
		if breadth > 0 && i >= breadth {
			break
		}
		child, err := group.At(i)
		if err != nil {
			if !herr.IsNone(err) {
				fmt.Printf("error: %v\n", err)
			}
			continue
		}
		renderNode(child, prefix, depth, breadth, indent+1, b)
	}
}

func makeIndent(indent int, b *strings.Builder) {
	for b.Len() < 32 {
		b.WriteByte(' ')
	}
	if indent > 0 {
		sep := separators[0]
		if indent < len(separators) {
			sep = separators[indent]
		}
		b.WriteString(sep)
	}
	width := b.Len() + indentWidth*indent
	for b.Len() < width {
		b.WriteByte(' ')
	}
}

func printCell(c cell.Cell, prefix string, indent int, b *strings.Builder) {
	b.Reset()
	fmt.Fprintf(b, "%s ", c.Interpretation())
	empty := true

	reader, err := c.Read()
	if err != nil {
		if !herr.IsNone(err) {
			empty = false
			fmt.Fprintf(b, "<cannot read: %v>", err)
		}
		fmt.Println(b.String())
		return
	}

	typ, err := reader.Type()
	if err != nil {
		typ = fmt.Sprintf("<%v>", err)
	}
	b.WriteString(typ)
	makeIndent(indent, b)
	b.WriteString(prefix)

	label, labelErr := reader.Label()
	val, valErr := reader.Value()
	switch {
	case labelErr == nil:
		if valAsStr, ok := val.AsStr(); !ok || valAsStr != label {
			empty = false
			fmt.Fprintf(b, "%s: ", label)
		}
	case !herr.IsNone(labelErr):
		empty = false
		fmt.Fprintf(b, "<%v> ", labelErr)
	}

	switch {
	case valErr == nil:
		if empty {
			empty = val.IsNone()
		}
		if bs, ok := val.AsBytes(); ok {
			fmt.Fprintf(b, "⟨% x⟩", bs)
		} else {
			b.WriteString(val.String())
		}
	case !herr.IsNone(valErr):
		empty = false
		fmt.Fprintf(b, "<%v>", valErr)
	}

	if empty {
		b.WriteString("•")
	}
	fmt.Println(b.String())
}
