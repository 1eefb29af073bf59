package tree

import (
	"context"
	"fmt"
)

// Context values let a host decide which actions apply to an item.
const (
	ContextFolder = "folder"
	ContextFile   = "file"
)

// CommandOpen is the host action bound to file items.
const CommandOpen = "open"

// Command is a host action attached to an item.
type Command struct {
	Name  string
	Title string
	Args  []string
}

// Item describes how a node is displayed.
type Item struct {
	Label        string
	Path         string
	Collapsible  bool
	Command      *Command
	ContextValue string
}

// Describe stats node and builds its display item. Nothing is cached, so the
// item always reflects the filesystem at call time.
func (p *Provider) Describe(ctx context.Context, node Node) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	fi, err := p.fs.Stat(node.Path)
	if err != nil {
		return Item{}, fmt.Errorf("failed to stat %s: %w", node.Path, err)
	}

	item := Item{
		Label: node.Name(),
		Path:  node.Path,
	}
	if fi.IsDir() {
		item.Collapsible = true
		item.ContextValue = ContextFolder
		return item, nil
	}

	item.ContextValue = ContextFile
	item.Command = &Command{
		Name:  CommandOpen,
		Title: "Open File",
		Args:  []string{node.Path},
	}
	return item, nil
}
