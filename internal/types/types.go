// Package types defines every cross‑package data structure used by the srcview CLI.
package types

import (
	"encoding/xml"

	"github.com/temirov/srcview/internal/treepath"
)

// NodeKind distinguishes directories from files.
type NodeKind string

const (
	NodeKindFile      NodeKind = "file"
	NodeKindDirectory NodeKind = "directory"

	CommandBuild = "build"
	CommandTree  = "tree"
	CommandServe = "serve"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// TreeNode is one entry of the source tree. Children are sorted by name and
// present only for directories; Language is present only for files.
type TreeNode struct {
	XMLName  xml.Name      `json:"-" xml:"node"`
	Kind     NodeKind      `json:"kind" xml:"kind,attr"`
	Name     string        `json:"name" xml:"name,attr"`
	Path     treepath.Path `json:"path" xml:"path,attr"`
	Language string        `json:"language,omitempty" xml:"language,attr,omitempty"`
	Children []*TreeNode   `json:"children,omitempty" xml:"node,omitempty"`
}

// IsDirectory reports whether the node is a directory.
func (node *TreeNode) IsDirectory() bool {
	return node != nil && node.Kind == NodeKindDirectory
}

// IsFile reports whether the node is a file.
func (node *TreeNode) IsFile() bool {
	return node != nil && node.Kind == NodeKindFile
}

// TreeSummary captures aggregate information about a built tree.
type TreeSummary struct {
	TotalDirectories int `json:"totalDirectories" xml:"totalDirectories"`
	TotalFiles       int `json:"totalFiles" xml:"totalFiles"`
}
