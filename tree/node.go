package tree

import "path/filepath"

// Kind tags a Node as the synthetic root marker or a plain filesystem entry.
type Kind int

const (
	KindEntry Kind = iota
	KindRoot
)

// Node is one filesystem entry as seen by the tree. Nodes are recreated on
// every listing; they carry no identity beyond their path.
type Node struct {
	Kind Kind
	Path string
}

// RootNode returns the synthetic root node for the focused location.
func RootNode(path string) Node {
	return Node{Kind: KindRoot, Path: filepath.Clean(path)}
}

// EntryNode returns a plain node for path.
func EntryNode(path string) Node {
	return Node{Kind: KindEntry, Path: filepath.Clean(path)}
}

// Name is the final path segment.
func (n Node) Name() string {
	return filepath.Base(n.Path)
}

// IsRoot reports whether n is the synthetic root marker.
func (n Node) IsRoot() bool {
	return n.Kind == KindRoot
}

// Equal reports whether n and o reference the same location.
func (n Node) Equal(o Node) bool {
	return n.Path == o.Path
}

// EntryKind selects what Create makes.
type EntryKind int

const (
	File EntryKind = iota
	Directory
)

func (k EntryKind) String() string {
	if k == Directory {
		return "folder"
	}
	return "file"
}
