package cli

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/srcview/internal/config"
	"github.com/temirov/srcview/internal/output"
	"github.com/temirov/srcview/internal/services/metrics"
	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/types"
)

const (
	treeUse              = "tree [root]"
	treeAlias            = "t"
	treeShortDescription = "print the source tree (" + treeAlias + ")"
	treeLongDescription  = `Build the tree the document would embed and print it.
Use --format to select raw, json or xml output.`
	treeUsageExample = `  # Print the tree of the current directory as text
  srcview tree --format raw

  # Emit JSON, honoring .gitignore and skipping dist directories
  srcview tree --gitignore -e dist ./project`
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

func (app *application) createTreeCommand() *cobra.Command {
	var options treeOptions
	var outputFormat string
	var copyEnabled bool

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			format, formatErr := normalizeFormat(outputFormat)
			if formatErr != nil {
				return formatErr
			}
			settings, settingsErr := app.loadSettings(command, options)
			if settingsErr != nil {
				return settingsErr
			}
			rootDirectory, rootErr := app.resolveRootDirectory(firstArgument(arguments))
			if rootErr != nil {
				return rootErr
			}
			root, buildErr := app.buildSourceTree(rootDirectory, settings)
			if buildErr != nil {
				return buildErr
			}
			rendered, renderErr := renderTree(root, format)
			if renderErr != nil {
				return renderErr
			}
			if _, writeErr := io.WriteString(app.dependencies.Output, rendered); writeErr != nil {
				return writeErr
			}
			if copyEnabled {
				return app.copyResult(rendered)
			}
			return nil
		},
	}
	addTreeFlags(treeCommand.Flags(), &options)
	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatJSON, formatFlagDescription)
	registerBooleanFlag(treeCommand.Flags(), &copyEnabled, copyFlagName, false, copyFlagDescription)
	return treeCommand
}

// buildSourceTree walks rootDirectory with the resolved ignore rules.
func (app *application) buildSourceTree(rootDirectory string, settings config.Settings) (*types.TreeNode, error) {
	builder := tree.Builder{
		IgnoreNames: settings.IgnoreNames,
		Languages:   settings.Languages,
		Logger:      app.logger(),
	}
	if settings.UseGitignore {
		matcher, loadErr := config.LoadGitIgnore(rootDirectory)
		if loadErr != nil {
			return nil, loadErr
		}
		builder.GitIgnore = matcher
	}
	startedAt := time.Now()
	root, buildErr := builder.Build(rootDirectory)
	if buildErr != nil {
		return nil, buildErr
	}
	metrics.RecordTreeBuild(time.Since(startedAt))
	summary := tree.Summarize(root)
	app.logger().Debug("source tree ready",
		zap.String("root", rootDirectory),
		zap.Int("directories", summary.TotalDirectories),
		zap.Int("files", summary.TotalFiles),
	)
	return root, nil
}

func renderTree(root *types.TreeNode, format string) (string, error) {
	switch format {
	case types.FormatJSON:
		rendered, err := output.RenderTreeJSON(root)
		return withTrailingNewline(rendered), err
	case types.FormatXML:
		rendered, err := output.RenderTreeXML(root)
		return withTrailingNewline(rendered), err
	default:
		return withTrailingNewline(output.RenderTreeRaw(root)), nil
	}
}

func withTrailingNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
