// Package output renders a source tree as JSON, XML, raw text or the nested
// markup embedded in the generated document.
package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	fileLineFormat      = "%s%s [%s]\n"
	directoryLineFormat = "%s%s/\n"
	summaryLineFormat   = "Summary: %d %s, %d %s"

	errorDecodeTreeFormat = "decoding tree: %w"
	errorMissingRoot      = "decoding tree: root node must be the %s directory"
	errorInconsistentPath = "decoding tree: node %q under %q has path %q"
	errorUnknownKind      = "decoding tree: node %q has unknown kind %q"
)

// RenderTreeJSON returns the tree as indented JSON.
func RenderTreeJSON(root *types.TreeNode) (string, error) {
	encoded, jsonEncodeError := json.MarshalIndent(root, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded), nil
}

// RenderTreeXML returns the tree as indented XML with the standard header.
func RenderTreeXML(root *types.TreeNode) (string, error) {
	encoded, xmlMarshalError := xml.MarshalIndent(root, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// DecodeTreeJSON restores a tree produced by RenderTreeJSON. Every path is
// revalidated while decoding.
func DecodeTreeJSON(encoded []byte) (*types.TreeNode, error) {
	var root types.TreeNode
	if decodeError := json.Unmarshal(encoded, &root); decodeError != nil {
		return nil, fmt.Errorf(errorDecodeTreeFormat, decodeError)
	}
	if !root.Path.IsRoot() || !root.IsDirectory() {
		return nil, fmt.Errorf(errorMissingRoot, ".")
	}
	if validationError := validateChildren(&root); validationError != nil {
		return nil, validationError
	}
	return &root, nil
}

// validateChildren checks that every decoded path is the one the builder would
// have assigned, so lookups against the decoded tree behave like the original.
func validateChildren(parent *types.TreeNode) error {
	for _, child := range parent.Children {
		if child.Kind != types.NodeKindFile && child.Kind != types.NodeKindDirectory {
			return fmt.Errorf(errorUnknownKind, child.Name, child.Kind)
		}
		expectedPath, childPathError := parent.Path.Child(child.Name)
		if childPathError != nil || expectedPath != child.Path {
			return fmt.Errorf(errorInconsistentPath, child.Name, parent.Path.String(), child.Path.String())
		}
		if validationError := validateChildren(child); validationError != nil {
			return validationError
		}
	}
	return nil
}

// RenderTreeRaw returns the tree drawn with box connectors followed by a summary line.
func RenderTreeRaw(root *types.TreeNode) string {
	var buffer bytes.Buffer
	WriteTreeRaw(&buffer, root)
	buffer.WriteString(FormatSummaryLine(tree.Summarize(root)))
	buffer.WriteString("\n")
	return buffer.String()
}

// WriteTreeRaw renders a directory tree to the provided writer.
func WriteTreeRaw(writer io.Writer, root *types.TreeNode) {
	if root == nil {
		return
	}
	renderTreeNode(writer, root, "", true, true)
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderTreeNode(writer io.Writer, node *types.TreeNode, prefix string, isRoot bool, isLast bool) {
	if node == nil {
		return
	}
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	if node.IsFile() {
		fmt.Fprintf(writer, fileLineFormat, linePrefix, node.Name, node.Language)
		return
	}
	fmt.Fprintf(writer, directoryLineFormat, linePrefix, node.Name)
	for index, child := range node.Children {
		renderTreeNode(writer, child, childPrefix, false, index == len(node.Children)-1)
	}
}

// FormatSummaryLine formats a TreeSummary into the raw summary line.
func FormatSummaryLine(summary types.TreeSummary) string {
	directoryLabel := "directories"
	if summary.TotalDirectories == 1 {
		directoryLabel = "directory"
	}
	fileLabel := "files"
	if summary.TotalFiles == 1 {
		fileLabel = "file"
	}
	return fmt.Sprintf(summaryLineFormat, summary.TotalDirectories, directoryLabel, summary.TotalFiles, fileLabel)
}
