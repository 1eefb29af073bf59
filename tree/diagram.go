package tree

import (
	"context"
	"fmt"
	"io"
)

// WriteDiagram writes the focused subtree to w as a tree diagram, pulling
// each level through Children so it shows exactly what a tree widget would.
// depth limits how many levels are expanded; depth <= 0 expands everything.
func (p *Provider) WriteDiagram(ctx context.Context, w io.Writer, depth int) error {
	root, ok := p.Root()
	if !ok {
		return ErrNoFocus
	}
	if _, err := fmt.Fprintln(w, root); err != nil {
		return err
	}

	var writeLevel func(parent *Node, prefix string, level int) error
	writeLevel = func(parent *Node, prefix string, level int) error {
		children, err := p.Children(ctx, parent)
		if err != nil {
			return err
		}
		for i, child := range children {
			isLast := i == len(children)-1
			connector := "├── "
			if isLast {
				connector = "└── "
			}

			item, err := p.Describe(ctx, child)
			if err != nil {
				return err
			}
			// Add a trailing slash for directories
			displayName := item.Label
			if item.Collapsible {
				displayName += "/"
			}
			if _, err := fmt.Fprintln(w, prefix+connector+displayName); err != nil {
				return err
			}

			if !item.Collapsible || (depth > 0 && level >= depth) {
				continue
			}
			newPrefix := prefix + "│   "
			if isLast {
				newPrefix = prefix + "    "
			}
			if err := writeLevel(&child, newPrefix, level+1); err != nil {
				return err
			}
		}
		return nil
	}

	return writeLevel(nil, "", 1)
}
