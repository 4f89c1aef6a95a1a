package output

import (
	"html"
	"strings"

	"github.com/temirov/srcview/internal/types"
)

const (
	// PathAttribute carries a node's tree path; the client looks nodes up by it.
	PathAttribute     = "data-path"
	// LanguageAttribute carries a file's language tag.
	LanguageAttribute = "data-lang"

	directoryItemOpenFormat = `<li class="node dir-node" ` + PathAttribute + `="`
	fileItemOpenFormat      = `<li class="node file-node" ` + PathAttribute + `="`
	folderLabelOpen         = `"><div class="label folder"><span class="icon"></span>`
	fileLabelOpen           = `"><div class="label file-label" ` + LanguageAttribute + `="`
	fileLabelIcon           = `"><span class="icon"></span>`
	labelClose              = `</div>`
	childListOpen           = `<ul>`
	childListClose          = `</ul>`
	itemClose               = `</li>`
)

// RenderTreeMarkup returns the nested list items for root, including root
// itself. Names and attribute values are HTML escaped; path values are written
// exactly as stored so they stay usable as fetch and lookup keys once unescaped.
func RenderTreeMarkup(root *types.TreeNode) string {
	var builder strings.Builder
	writeMarkupNode(&builder, root)
	return builder.String()
}

func writeMarkupNode(builder *strings.Builder, node *types.TreeNode) {
	if node == nil {
		return
	}
	escapedPath := html.EscapeString(node.Path.String())
	escapedName := html.EscapeString(node.Name)
	if node.IsFile() {
		builder.WriteString(fileItemOpenFormat)
		builder.WriteString(escapedPath)
		builder.WriteString(fileLabelOpen)
		builder.WriteString(html.EscapeString(node.Language))
		builder.WriteString(fileLabelIcon)
		builder.WriteString(escapedName)
		builder.WriteString(labelClose)
		builder.WriteString(itemClose)
		return
	}
	builder.WriteString(directoryItemOpenFormat)
	builder.WriteString(escapedPath)
	builder.WriteString(folderLabelOpen)
	builder.WriteString(escapedName)
	builder.WriteString(labelClose)
	builder.WriteString(childListOpen)
	for _, child := range node.Children {
		writeMarkupNode(builder, child)
	}
	builder.WriteString(childListClose)
	builder.WriteString(itemClose)
}
