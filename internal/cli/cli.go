// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/srcview/internal/config"
	"github.com/temirov/srcview/internal/services/clipboard"
	"github.com/temirov/srcview/internal/utils"
)

const (
	versionFlagName      = "version"
	verboseFlagName      = "verbose"
	configFlagName       = "config"
	exclusionFlagName    = "e"
	gitignoreFlagName    = "gitignore"
	paddingFlagName      = "padding"
	titleFlagName        = "title"
	outputFlagName       = "output"
	outputFlagShorthand  = "o"
	copyFlagName         = "copy"
	formatFlagName       = "format"
	addressFlagName      = "address"
	cacheEntriesFlagName = "cache-entries"
	noMetricsFlagName    = "no-metrics"
	lineFlagName         = "line"
	lineFlagShorthand    = "n"
	contextFlagName      = "context"
	contextFlagShorthand = "C"
	globalFlagName       = "global"
	forceFlagName        = "force"
	defaultPath          = "."
	defaultContextLines  = 5
	versionTemplate      = "srcview version: %s\n"
	rootUse              = "srcview"
	rootShortDescription = "srcview command line interface"
	rootLongDescription  = `srcview turns a source directory into a single-page viewer.
The page shows the directory tree next to a highlighted, line-numbered file view
and fetches file text by its tree path when it sits next to the source tree.
Use build to write the page, serve to host it together with the files, tree to
print the tree and show to read a file from the terminal.`
	versionFlagDescription      = "display application version"
	verboseFlagDescription      = "enable debug logging"
	configFlagDescription       = "path to a configuration file"
	exclusionFlagDescription    = "exclude entries with this name at any depth"
	gitignoreFlagDescription    = "also exclude paths matched by the root .gitignore"
	paddingFlagDescription      = "blank lines shown after file content (0 disables)"
	titleFlagDescription        = "document title"
	outputFlagDescription       = "output document path"
	copyFlagDescription         = "copy the result to the system clipboard"
	formatFlagDescription       = "output format: raw, json or xml"
	addressFlagDescription      = "listen address"
	cacheEntriesFlagDescription = "number of file texts kept in memory"
	noMetricsFlagDescription    = "do not expose /metrics"
	lineFlagDescription         = "line to center on (defaults to the last line)"
	contextFlagDescription      = "lines shown around the target line"
	globalFlagDescription       = "write the global configuration instead of the local one"
	forceFlagDescription        = "overwrite an existing configuration file"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPathMissingFormat      = "path '%s' does not exist"
	errorStatFormat             = "stat failed for '%s': %w"
	errorLoadConfigFormat       = "load configuration: %w"
	errorInvalidFormatMessage   = "invalid format value '%s'"
	errorCopyFormat             = "copy result: %w"
	errorRebuildLoggerFormat    = "enable verbose logging: %w"
)

// Dependencies are the collaborators commands use. Zero values are replaced
// with process defaults.
type Dependencies struct {
	Logger      *zap.Logger
	Copier      clipboard.Copier
	Output      io.Writer
	ErrorOutput io.Writer
	// WorkingDirectory and HomeDirectory override process lookups.
	WorkingDirectory string
	HomeDirectory    string
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.Output == nil {
		dependencies.Output = os.Stdout
	}
	if dependencies.ErrorOutput == nil {
		dependencies.ErrorOutput = os.Stderr
	}
	return dependencies
}

// application carries state shared by every command of one invocation.
type application struct {
	dependencies Dependencies
	configPath   string
	verbose      bool
}

// Execute runs the srcview application with the process arguments.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{Logger: logger})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	app := &application{dependencies: dependencies.withDefaults()}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(app.dependencies.Output, versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if !app.verbose {
				return nil
			}
			verboseLogger, loggerErr := utils.NewApplicationLogger(true)
			if loggerErr != nil {
				return fmt.Errorf(errorRebuildLoggerFormat, loggerErr)
			}
			app.dependencies.Logger = verboseLogger
			return nil
		},
	}
	rootCommand.SetOut(app.dependencies.Output)
	rootCommand.SetErr(app.dependencies.ErrorOutput)
	registerBooleanFlag(rootCommand.Flags(), &showVersion, versionFlagName, false, versionFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)

	rootCommand.AddCommand(
		app.createBuildCommand(),
		app.createTreeCommand(),
		app.createServeCommand(),
		app.createShowCommand(),
		app.createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func (app *application) logger() *zap.Logger {
	return app.dependencies.Logger
}

func (app *application) workingDirectory() (string, error) {
	if app.dependencies.WorkingDirectory != "" {
		return app.dependencies.WorkingDirectory, nil
	}
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, err)
	}
	return workingDirectory, nil
}

// treeOptions stores flags shared by every command that builds a tree.
type treeOptions struct {
	exclusions []string
	gitignore  bool
}

func addTreeFlags(flagSet *pflag.FlagSet, options *treeOptions) {
	flagSet.StringArrayVarP(&options.exclusions, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flagSet, &options.gitignore, gitignoreFlagName, false, gitignoreFlagDescription)
}

// loadSettings resolves configuration and applies the tree flags the user set
// explicitly on command.
func (app *application) loadSettings(command *cobra.Command, options treeOptions) (config.Settings, error) {
	workingDirectory, workingDirectoryErr := app.workingDirectory()
	if workingDirectoryErr != nil {
		return config.Settings{}, workingDirectoryErr
	}
	loaded, loadErr := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: app.configPath,
		HomeDirectory:    app.dependencies.HomeDirectory,
	})
	if loadErr != nil {
		return config.Settings{}, fmt.Errorf(errorLoadConfigFormat, loadErr)
	}
	settings := loaded.Resolve()
	settings.IgnoreNames = utils.DeduplicateNames(append(settings.IgnoreNames, options.exclusions...))
	if command.Flags().Changed(gitignoreFlagName) {
		settings.UseGitignore = options.gitignore
	}
	return settings, nil
}

// resolveRootDirectory converts the root argument to a clean absolute path
// and checks that it exists.
func (app *application) resolveRootDirectory(argument string) (string, error) {
	if argument == "" {
		argument = defaultPath
	}
	candidate := argument
	if !filepath.IsAbs(candidate) {
		workingDirectory, workingDirectoryErr := app.workingDirectory()
		if workingDirectoryErr != nil {
			return "", workingDirectoryErr
		}
		candidate = filepath.Join(workingDirectory, candidate)
	}
	absolutePath, absErr := filepath.Abs(candidate)
	if absErr != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, argument, absErr)
	}
	if _, statErr := os.Stat(absolutePath); statErr != nil {
		if os.IsNotExist(statErr) {
			return "", fmt.Errorf(errorPathMissingFormat, argument)
		}
		return "", fmt.Errorf(errorStatFormat, argument, statErr)
	}
	return filepath.Clean(absolutePath), nil
}

func (app *application) copyResult(text string) error {
	if copyErr := app.dependencies.Copier.Copy(text); copyErr != nil {
		return fmt.Errorf(errorCopyFormat, copyErr)
	}
	app.logger().Debug("copied to clipboard", zap.Int("bytes", len(text)))
	return nil
}

func firstArgument(arguments []string) string {
	if len(arguments) == 0 {
		return defaultPath
	}
	return arguments[0]
}

func normalizeFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if !isSupportedFormat(normalized) {
		return "", fmt.Errorf(errorInvalidFormatMessage, format)
	}
	return normalized, nil
}
