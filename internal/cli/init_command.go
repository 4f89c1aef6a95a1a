package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/srcview/internal/config"
)

const (
	initUse              = "init"
	initShortDescription = "write an annotated configuration file"
	initLongDescription  = `Write the default configuration to ./config.yaml, or to
~/.srcview/config.yaml with --global. Existing files are kept unless --force is set.`
	initResultFormat = "Configuration written to %s\n"
)

func (app *application) createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			options := config.InitOptions{
				Target:        config.InitTargetLocal,
				Force:         force,
				HomeDirectory: app.dependencies.HomeDirectory,
			}
			if global {
				options.Target = config.InitTargetGlobal
			} else {
				workingDirectory, workingDirectoryErr := app.workingDirectory()
				if workingDirectoryErr != nil {
					return workingDirectoryErr
				}
				options.WorkingDirectory = workingDirectory
			}
			writtenPath, initErr := config.InitializeConfiguration(options)
			if initErr != nil {
				return initErr
			}
			_, printErr := fmt.Fprintf(app.dependencies.Output, initResultFormat, writtenPath)
			return printErr
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
