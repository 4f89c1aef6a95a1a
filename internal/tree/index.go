package tree

import (
	"github.com/temirov/srcview/internal/treepath"
	"github.com/temirov/srcview/internal/types"
)

// Index resolves tree paths to nodes. It never touches the filesystem.
type Index struct {
	root        *types.TreeNode
	nodes       map[treepath.Path]*types.TreeNode
	directories []treepath.Path
	files       []treepath.Path
}

// NewIndex indexes every node under root in pre-order.
func NewIndex(root *types.TreeNode) *Index {
	index := &Index{
		root:  root,
		nodes: make(map[treepath.Path]*types.TreeNode),
	}
	Walk(root, func(node *types.TreeNode) {
		index.nodes[node.Path] = node
		if node.IsDirectory() {
			index.directories = append(index.directories, node.Path)
		} else {
			index.files = append(index.files, node.Path)
		}
	})
	return index
}

// Root returns the indexed root node.
func (index *Index) Root() *types.TreeNode {
	return index.root
}

// Lookup returns the node stored under path.
func (index *Index) Lookup(path treepath.Path) (*types.TreeNode, bool) {
	node, found := index.nodes[path]
	return node, found
}

// LookupString parses encoded and returns the node stored under it.
func (index *Index) LookupString(encoded string) (*types.TreeNode, bool) {
	parsed, parseError := treepath.Parse(encoded)
	if parseError != nil {
		return nil, false
	}
	return index.Lookup(parsed)
}

// Directories lists every directory path, root included, in tree order.
func (index *Index) Directories() []treepath.Path {
	return append([]treepath.Path(nil), index.directories...)
}

// Files lists every file path in tree order.
func (index *Index) Files() []treepath.Path {
	return append([]treepath.Path(nil), index.files...)
}

// Len is the number of indexed nodes.
func (index *Index) Len() int {
	return len(index.nodes)
}
