package output_test

import (
	"encoding/xml"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/temirov/srcview/internal/output"
	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/treepath"
	"github.com/temirov/srcview/internal/types"
)

func sampleTree() *types.TreeNode {
	return &types.TreeNode{
		Kind: types.NodeKindDirectory,
		Name: "project",
		Path: treepath.Root(),
		Children: []*types.TreeNode{
			{Kind: types.NodeKindFile, Name: "README.md", Path: treepath.MustParse("README.md"), Language: "markdown"},
			{
				Kind: types.NodeKindDirectory,
				Name: "src",
				Path: treepath.MustParse("src"),
				Children: []*types.TreeNode{
					{Kind: types.NodeKindFile, Name: "a&b.py", Path: treepath.MustParse("src/a&b.py"), Language: "python"},
				},
			},
		},
	}
}

func TestRenderTreeMarkupCarriesPaths(testingHandle *testing.T) {
	markup := output.RenderTreeMarkup(sampleTree())
	pathPattern := regexp.MustCompile(`data-path="([^"]*)"`)
	var encodedPaths []string
	for _, match := range pathPattern.FindAllStringSubmatch(markup, -1) {
		encodedPaths = append(encodedPaths, match[1])
	}
	expected := []string{".", "README.md", "src", "src/a&amp;b.py"}
	if !reflect.DeepEqual(encodedPaths, expected) {
		testingHandle.Fatalf("expected %v, got %v", expected, encodedPaths)
	}
	if !strings.Contains(markup, `data-lang="python"`) || !strings.Contains(markup, `data-lang="markdown"`) {
		testingHandle.Fatalf("language tags missing: %s", markup)
	}
	if strings.Count(markup, `class="node dir-node"`) != 2 || strings.Count(markup, `class="node file-node"`) != 2 {
		testingHandle.Fatalf("unexpected node classes: %s", markup)
	}
	if strings.Count(markup, "<ul>") != strings.Count(markup, "</ul>") || strings.Count(markup, "<li ") != strings.Count(markup, "</li>") {
		testingHandle.Fatalf("unbalanced markup: %s", markup)
	}
}

func TestRenderTreeMarkupIsDeterministic(testingHandle *testing.T) {
	if output.RenderTreeMarkup(sampleTree()) != output.RenderTreeMarkup(sampleTree()) {
		testingHandle.Fatalf("markup differs between renders")
	}
}

func TestJSONRoundTripPreservesTree(testingHandle *testing.T) {
	original := sampleTree()
	encoded, renderError := output.RenderTreeJSON(original)
	if renderError != nil {
		testingHandle.Fatalf("render: %v", renderError)
	}
	decoded, decodeError := output.DecodeTreeJSON([]byte(encoded))
	if decodeError != nil {
		testingHandle.Fatalf("decode: %v", decodeError)
	}
	var originalPaths, decodedPaths []string
	tree.Walk(original, func(node *types.TreeNode) { originalPaths = append(originalPaths, node.Path.String()+"|"+node.Language) })
	tree.Walk(decoded, func(node *types.TreeNode) { decodedPaths = append(decodedPaths, node.Path.String()+"|"+node.Language) })
	if !reflect.DeepEqual(originalPaths, decodedPaths) {
		testingHandle.Fatalf("expected %v, got %v", originalPaths, decodedPaths)
	}
}

func TestDecodeTreeJSONRejectsInconsistentPaths(testingHandle *testing.T) {
	testCases := map[string]string{
		"non root":        `{"kind":"directory","name":"x","path":"x"}`,
		"wrong separator": `{"kind":"directory","name":"r","path":".","children":[{"kind":"directory","name":"src","path":"src","children":[{"kind":"file","name":"a.py","path":"src\\a.py"}]}]}`,
		"invalid path":    `{"kind":"directory","name":"r","path":".","children":[{"kind":"file","name":"a","path":"/a"}]}`,
		"unknown kind":    `{"kind":"directory","name":"r","path":".","children":[{"kind":"link","name":"a","path":"a"}]}`,
	}
	for name, encoded := range testCases {
		if _, decodeError := output.DecodeTreeJSON([]byte(encoded)); decodeError == nil {
			testingHandle.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestRenderTreeXML(testingHandle *testing.T) {
	encoded, renderError := output.RenderTreeXML(sampleTree())
	if renderError != nil {
		testingHandle.Fatalf("render: %v", renderError)
	}
	if !strings.HasPrefix(encoded, xml.Header) {
		testingHandle.Fatalf("missing xml header")
	}
	if !strings.Contains(encoded, `path="src/a&amp;b.py"`) || !strings.Contains(encoded, `language="python"`) {
		testingHandle.Fatalf("unexpected xml: %s", encoded)
	}
}

func TestRenderTreeRaw(testingHandle *testing.T) {
	expected := strings.Join([]string{
		"project/",
		"├── README.md [markdown]",
		"└── src/",
		"    └── a&b.py [python]",
		"Summary: 1 directory, 2 files",
		"",
	}, "\n")
	if rendered := output.RenderTreeRaw(sampleTree()); rendered != expected {
		testingHandle.Fatalf("expected:\n%s\ngot:\n%s", expected, rendered)
	}
}
