// Package document renders the self-contained HTML viewer for a source tree.
package document

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/temirov/srcview/internal/language"
	"github.com/temirov/srcview/internal/navigator"
	"github.com/temirov/srcview/internal/output"
	"github.com/temirov/srcview/internal/types"
)

const (
	// PrismBaseURL hosts the highlighting collaborator the page loads.
	PrismBaseURL  = "https://cdnjs.cloudflare.com/ajax/libs/prism/1.29.0"
	// LightThemeURL is the highlighting theme used by the light page theme.
	LightThemeURL = PrismBaseURL + "/themes/prism-tomorrow.min.css"
	// DarkThemeURL is the highlighting theme used by the dark page theme.
	DarkThemeURL  = PrismBaseURL + "/themes/prism-okaidia.min.css"
	// Placeholder is shown until a file is selected.
	Placeholder   = "Select a file to start..."

	pageTemplateName          = "page"
	errorMissingTreeMessage   = "document requires a tree"
	errorRenderTemplateFormat = "render document: %w"
)

var (
	//go:embed assets/page.html.tmpl
	pageTemplateSource string
	//go:embed assets/style.css
	pageStyle string
	//go:embed assets/navigator.js
	navigatorScript string

	pageTemplate = template.Must(template.New(pageTemplateName).Parse(pageTemplateSource))

	// ErrMissingTree is returned when a Page has no tree to render.
	ErrMissingTree = errors.New(errorMissingTreeMessage)
)

// Page describes one generated document.
type Page struct {
	Title string
	Root  *types.TreeNode
	// PaddingLines is the number of blank lines the viewer appends after file
	// content. It must match the navigator the document is paired with.
	PaddingLines int
	// FetchBase prefixes every tree path the viewer fetches. It is empty when
	// the document sits in the root directory or is served by srcview, and
	// otherwise a relative, slash separated path ending in "/".
	FetchBase string
}

type pageView struct {
	Title                          string
	TreeMarkup                     template.HTML
	Style                          template.CSS
	Script                         template.JS
	PaddingLines                   int
	FetchBase                      string
	FontSize                       int
	FontSizeStep                   int
	MinimumFontSize                int
	JumpHighlightMilliseconds      int64
	FirstLineHighlightMilliseconds int64
	FetchFailureNotice             string
	DefaultLanguage                string
	Placeholder                    string
	PrismBaseURL                   string
	LightThemeURL                  string
	DarkThemeURL                   string
}

// Render writes the document for page to writer. The output is produced in
// memory first so a failed render never leaves a partial document behind.
func Render(writer io.Writer, page Page) error {
	if page.Root == nil {
		return ErrMissingTree
	}
	view := pageView{
		Title: page.Title,
		// RenderTreeMarkup escapes every name and attribute value.
		TreeMarkup:                     template.HTML(output.RenderTreeMarkup(page.Root)),
		Style:                          template.CSS(pageStyle),
		Script:                         template.JS(navigatorScript),
		PaddingLines:                   max(page.PaddingLines, 0),
		FetchBase:                      page.FetchBase,
		FontSize:                       navigator.DefaultFontSize,
		FontSizeStep:                   navigator.FontSizeStep,
		MinimumFontSize:                navigator.MinimumFontSize,
		JumpHighlightMilliseconds:      navigator.JumpHighlightDuration.Milliseconds(),
		FirstLineHighlightMilliseconds: navigator.FirstLineHighlightDuration.Milliseconds(),
		FetchFailureNotice:             navigator.FetchFailureNotice,
		DefaultLanguage:                language.DefaultTag,
		Placeholder:                    Placeholder,
		PrismBaseURL:                   PrismBaseURL,
		LightThemeURL:                  LightThemeURL,
		DarkThemeURL:                   DarkThemeURL,
	}

	var buffer bytes.Buffer
	if executeErr := pageTemplate.Execute(&buffer, view); executeErr != nil {
		return fmt.Errorf(errorRenderTemplateFormat, executeErr)
	}
	_, writeErr := buffer.WriteTo(writer)
	return writeErr
}

// RenderBytes renders page into memory.
func RenderBytes(page Page) ([]byte, error) {
	var buffer bytes.Buffer
	if renderErr := Render(&buffer, page); renderErr != nil {
		return nil, renderErr
	}
	return buffer.Bytes(), nil
}
