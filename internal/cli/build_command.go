package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/srcview/internal/config"
	"github.com/temirov/srcview/internal/document"
	"github.com/temirov/srcview/internal/output"
	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/utils"
)

const (
	buildUse              = "build [root]"
	buildAlias            = "b"
	buildShortDescription = "write the viewer document (" + buildAlias + ")"
	buildLongDescription  = `Build the source tree of root and write a single HTML document that
browses it. Without --output the document is written to index.html inside the
root. Documents written elsewhere carry the relative path from their directory to
the root and prefix every file fetch with it. Nothing is written
when any entry cannot be read.`
	buildUsageExample = `  # Write index.html into the current directory
  srcview build

  # Write project/index.html
  srcview build ./project

  # Custom title and output, without padding lines
  srcview build --title "My Project" --padding 0 -o site/index.html ./project`

	buildResultFormat            = "Wrote %s (%s)\n"
	temporaryDocumentPattern     = ".srcview-*.html"
	documentFileMode             = 0o644
	errorCreateOutputDirFormat   = "create output directory %s: %w"
	errorWriteDocumentFormat     = "write document %s: %w"
	errorResolveOutputFormat     = "resolve output path %s: %w"
	errorReplaceDocumentFormat   = "replace document %s: %w"
	errorTemporaryDocumentFormat = "create temporary document in %s: %w"
	errorFetchBaseFormat         = "locate %s from %s: %w"
	fetchBaseSeparator           = "/"
)

// documentOptions stores flags shared by build and serve.
type documentOptions struct {
	treeOptions
	padding int
	title   string
}

func addDocumentFlags(command *cobra.Command, options *documentOptions) {
	addTreeFlags(command.Flags(), &options.treeOptions)
	command.Flags().IntVar(&options.padding, paddingFlagName, 0, paddingFlagDescription)
	command.Flags().StringVar(&options.title, titleFlagName, "", titleFlagDescription)
}

// applyDocumentFlags overrides settings with the document flags the user set.
func applyDocumentFlags(command *cobra.Command, options documentOptions, settings config.Settings) config.Settings {
	if command.Flags().Changed(paddingFlagName) {
		settings.PaddingLines = max(options.padding, 0)
	}
	if command.Flags().Changed(titleFlagName) {
		settings.Title = options.title
	}
	return settings
}

func (app *application) createBuildCommand() *cobra.Command {
	var options documentOptions
	var outputPath string
	var copyEnabled bool

	buildCommand := &cobra.Command{
		Use:     buildUse,
		Aliases: []string{buildAlias},
		Short:   buildShortDescription,
		Long:    buildLongDescription,
		Example: buildUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			settings, settingsErr := app.loadSettings(command, options.treeOptions)
			if settingsErr != nil {
				return settingsErr
			}
			settings = applyDocumentFlags(command, options, settings)
			if command.Flags().Changed(outputFlagName) {
				settings.OutputPath = outputPath
			}
			rootDirectory, rootErr := app.resolveRootDirectory(firstArgument(arguments))
			if rootErr != nil {
				return rootErr
			}
			absoluteOutput, outputErr := app.resolveOutputPath(settings.OutputPath, rootDirectory)
			if outputErr != nil {
				return outputErr
			}
			fetchBase, fetchBaseErr := documentFetchBase(absoluteOutput, rootDirectory)
			if fetchBaseErr != nil {
				return fetchBaseErr
			}
			if isWithin(rootDirectory, absoluteOutput) {
				settings.IgnoreNames = utils.DeduplicateNames(append(settings.IgnoreNames, filepath.Base(absoluteOutput)))
			}

			root, buildErr := app.buildSourceTree(rootDirectory, settings)
			if buildErr != nil {
				return buildErr
			}
			rendered, renderErr := document.RenderBytes(document.Page{
				Title:        settings.Title,
				Root:         root,
				PaddingLines: settings.PaddingLines,
				FetchBase:    fetchBase,
			})
			if renderErr != nil {
				return renderErr
			}
			if writeErr := writeDocument(absoluteOutput, rendered); writeErr != nil {
				return writeErr
			}
			summaryLine := output.FormatSummaryLine(tree.Summarize(root))
			app.logger().Info("document written", zap.String("path", absoluteOutput), zap.Int("bytes", len(rendered)))
			if _, printErr := fmt.Fprintf(app.dependencies.Output, buildResultFormat, absoluteOutput, summaryLine); printErr != nil {
				return printErr
			}
			if copyEnabled {
				return app.copyResult(absoluteOutput)
			}
			return nil
		},
	}
	addDocumentFlags(buildCommand, &options)
	buildCommand.Flags().StringVarP(&outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	registerBooleanFlag(buildCommand.Flags(), &copyEnabled, copyFlagName, false, copyFlagDescription)
	return buildCommand
}

// resolveOutputPath places an unset output inside rootDirectory and resolves a
// relative one against the working directory.
func (app *application) resolveOutputPath(outputPath string, rootDirectory string) (string, error) {
	if outputPath == "" {
		return filepath.Join(rootDirectory, config.DefaultOutputFileName), nil
	}
	if filepath.IsAbs(outputPath) {
		return filepath.Clean(outputPath), nil
	}
	workingDirectory, workingDirectoryErr := app.workingDirectory()
	if workingDirectoryErr != nil {
		return "", workingDirectoryErr
	}
	absolutePath, absErr := filepath.Abs(filepath.Join(workingDirectory, outputPath))
	if absErr != nil {
		return "", fmt.Errorf(errorResolveOutputFormat, outputPath, absErr)
	}
	return absolutePath, nil
}

// documentFetchBase returns the URL prefix that leads from the directory of the
// document at outputPath to rootDirectory: empty when they coincide, otherwise a
// slash separated relative path ending in a slash with every segment escaped.
func documentFetchBase(outputPath string, rootDirectory string) (string, error) {
	outputDirectory := filepath.Dir(outputPath)
	relativeRoot, relErr := filepath.Rel(outputDirectory, rootDirectory)
	if relErr != nil {
		return "", fmt.Errorf(errorFetchBaseFormat, rootDirectory, outputDirectory, relErr)
	}
	if relativeRoot == "." {
		return "", nil
	}
	segments := strings.Split(filepath.ToSlash(relativeRoot), fetchBaseSeparator)
	for index, segment := range segments {
		segments[index] = url.PathEscape(segment)
	}
	return strings.Join(segments, fetchBaseSeparator) + fetchBaseSeparator, nil
}

// isWithin reports whether candidate is rootDirectory or lies below it.
func isWithin(rootDirectory, candidate string) bool {
	relativePath, relErr := filepath.Rel(rootDirectory, candidate)
	if relErr != nil {
		return false
	}
	return relativePath != ".." && !strings.HasPrefix(relativePath, ".."+string(filepath.Separator))
}

// writeDocument replaces path with content through a temporary file in the
// same directory, so readers never observe a partial document.
func writeDocument(path string, content []byte) error {
	directory := filepath.Dir(path)
	if mkdirErr := os.MkdirAll(directory, 0o755); mkdirErr != nil {
		return fmt.Errorf(errorCreateOutputDirFormat, directory, mkdirErr)
	}
	temporaryFile, createErr := os.CreateTemp(directory, temporaryDocumentPattern)
	if createErr != nil {
		return fmt.Errorf(errorTemporaryDocumentFormat, directory, createErr)
	}
	temporaryPath := temporaryFile.Name()
	_, writeErr := temporaryFile.Write(content)
	closeErr := temporaryFile.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Chmod(temporaryPath, documentFileMode)
	}
	if writeErr != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(errorWriteDocumentFormat, path, writeErr)
	}
	if renameErr := os.Rename(temporaryPath, path); renameErr != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(errorReplaceDocumentFormat, path, renameErr)
	}
	return nil
}
