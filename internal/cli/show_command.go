package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/srcview/internal/navigator"
	"github.com/temirov/srcview/internal/output"
	"github.com/temirov/srcview/internal/services/server"
	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/treepath"
)

const (
	showUse              = "show [root] <path>"
	showAlias            = "v"
	showShortDescription = "print a window of a file by its tree path (" + showAlias + ")"
	showLongDescription  = `Resolve a tree path the way the document does and print its breadcrumb
followed by the lines around the target line. Without --line the window ends on
the last real line of the file. Directories print their subtree.`
	showUsageExample = `  # Show the end of a file
  srcview show src/main.go

  # Center line 120 with ten lines of context in another root
  srcview show ./project internal/server.go --line 120 -C 10`

	showHeaderFormat      = "%s  [%s, %d lines]\n"
	showRowFormat         = "%s%*d │ %s\n"
	showTargetMarker      = "> "
	showPlainMarker       = "  "
	breadcrumbSeparator   = " / "
	errorInvalidTreePath  = "invalid tree path %q: %w"
	errorPathNotInTree    = "path %q is not in the tree"
	showMaximumArguments  = 2
	showMinimumArguments  = 1
	showDefaultLineNumber = 0
)

func (app *application) createShowCommand() *cobra.Command {
	var options treeOptions
	var requestedLine int
	var contextLines int

	showCommand := &cobra.Command{
		Use:     showUse,
		Aliases: []string{showAlias},
		Short:   showShortDescription,
		Long:    showLongDescription,
		Example: showUsageExample,
		Args:    cobra.RangeArgs(showMinimumArguments, showMaximumArguments),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootArgument, pathArgument := defaultPath, arguments[0]
			if len(arguments) == showMaximumArguments {
				rootArgument, pathArgument = arguments[0], arguments[1]
			}
			targetPath, parseErr := treepath.Parse(pathArgument)
			if parseErr != nil {
				return fmt.Errorf(errorInvalidTreePath, pathArgument, parseErr)
			}
			settings, settingsErr := app.loadSettings(command, options)
			if settingsErr != nil {
				return settingsErr
			}
			rootDirectory, rootErr := app.resolveRootDirectory(rootArgument)
			if rootErr != nil {
				return rootErr
			}
			root, buildErr := app.buildSourceTree(rootDirectory, settings)
			if buildErr != nil {
				return buildErr
			}
			index := tree.NewIndex(root)
			node, found := index.Lookup(targetPath)
			if !found {
				return fmt.Errorf(errorPathNotInTree, pathArgument)
			}
			if node.IsDirectory() {
				return writeDirectoryView(app.dependencies.Output, targetPath, output.RenderTreeRaw(node))
			}

			fetcher, fetcherErr := server.NewFileFetcher(rootDirectory, index, 1, app.logger())
			if fetcherErr != nil {
				return fetcherErr
			}
			notifier := navigator.NotifierFunc(func(message string) {
				_, _ = fmt.Fprintln(app.dependencies.ErrorOutput, message)
			})
			session := navigator.NewSession(navigator.New(index, settings.NavigatorOptions()), fetcher, notifier)
			if locateErr := session.Locate(command.Context(), targetPath); locateErr != nil {
				return locateErr
			}

			var target navigator.ScrollTarget
			var jumped bool
			if requestedLine == showDefaultLineNumber {
				target, jumped = navigator.JumpToLastLine(session.State())
			} else {
				target, jumped = session.JumpToLine(requestedLine)
			}
			if !jumped {
				target = navigator.JumpToFirst(session.State())
			}
			return writeFileWindow(app.dependencies.Output, session.State(), target.Row, max(contextLines, 0))
		},
	}
	addTreeFlags(showCommand.Flags(), &options)
	showCommand.Flags().IntVarP(&requestedLine, lineFlagName, lineFlagShorthand, showDefaultLineNumber, lineFlagDescription)
	showCommand.Flags().IntVarP(&contextLines, contextFlagName, contextFlagShorthand, defaultContextLines, contextFlagDescription)
	return showCommand
}

func formatBreadcrumb(crumbs []navigator.Crumb) string {
	segments := make([]string, 0, len(crumbs))
	for _, crumb := range crumbs {
		segments = append(segments, crumb.Segment)
	}
	return strings.Join(segments, breadcrumbSeparator)
}

func writeDirectoryView(writer io.Writer, path treepath.Path, renderedTree string) error {
	if _, err := fmt.Fprintln(writer, formatBreadcrumb(navigator.BuildBreadcrumb(path))); err != nil {
		return err
	}
	_, err := io.WriteString(writer, withTrailingNewline(renderedTree))
	return err
}

// writeFileWindow prints the rows around targetRow. Rows past the real content
// are the padding rows and print empty.
func writeFileWindow(writer io.Writer, state navigator.State, targetRow int, contextLines int) error {
	if _, err := fmt.Fprintf(writer, showHeaderFormat, formatBreadcrumb(state.Breadcrumb), state.Language, state.ViewedLineCount); err != nil {
		return err
	}
	rows := strings.Split(state.DisplayText, "\n")
	if targetRow < 1 {
		targetRow = 1
	}
	firstRow := max(targetRow-contextLines, 1)
	lastRow := min(targetRow+contextLines, len(rows))
	numberWidth := len(fmt.Sprint(lastRow))
	for row := firstRow; row <= lastRow; row++ {
		marker := showPlainMarker
		if row == targetRow {
			marker = showTargetMarker
		}
		if _, err := fmt.Fprintf(writer, showRowFormat, marker, numberWidth, row, rows[row-1]); err != nil {
			return err
		}
	}
	return nil
}
