package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/srcview/internal/document"
	"github.com/temirov/srcview/internal/services/metrics"
	"github.com/temirov/srcview/internal/services/server"
	"github.com/temirov/srcview/internal/tree"
)

const (
	serveUse              = "serve [root]"
	serveAlias            = "s"
	serveShortDescription = "serve the viewer and its files over HTTP (" + serveAlias + ")"
	serveLongDescription  = `Build the document in memory and serve it at / together with the text of
every file in the tree at /<tree path>. Paths outside the tree, ignored entries
and directories answer 404. Prometheus metrics are exposed at /metrics unless
the tree holds a root file of that name or --no-metrics is set.`
	serveUsageExample = `  # Serve the current directory on the configured address
  srcview serve

  # Listen on all interfaces with a larger content cache
  srcview serve --address 0.0.0.0:8080 --cache-entries 1024 ./project`

	serveListeningFormat = "Serving %s on http://%s\n"
)

func (app *application) createServeCommand() *cobra.Command {
	var options documentOptions
	var address string
	var cacheEntries int
	var disableMetrics bool

	serveCommand := &cobra.Command{
		Use:     serveUse,
		Aliases: []string{serveAlias},
		Short:   serveShortDescription,
		Long:    serveLongDescription,
		Example: serveUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			settings, settingsErr := app.loadSettings(command, options.treeOptions)
			if settingsErr != nil {
				return settingsErr
			}
			settings = applyDocumentFlags(command, options, settings)
			if command.Flags().Changed(addressFlagName) {
				settings.ServeAddress = address
			}
			if command.Flags().Changed(cacheEntriesFlagName) && cacheEntries > 0 {
				settings.CacheEntries = cacheEntries
			}
			rootDirectory, rootErr := app.resolveRootDirectory(firstArgument(arguments))
			if rootErr != nil {
				return rootErr
			}

			root, buildErr := app.buildSourceTree(rootDirectory, settings)
			if buildErr != nil {
				return buildErr
			}
			summary := tree.Summarize(root)
			metrics.SetTreeSize(summary.TotalDirectories+1, summary.TotalFiles)
			rendered, renderErr := document.RenderBytes(document.Page{
				Title:        settings.Title,
				Root:         root,
				PaddingLines: settings.PaddingLines,
			})
			if renderErr != nil {
				return renderErr
			}
			fetcher, fetcherErr := server.NewFileFetcher(rootDirectory, tree.NewIndex(root), settings.CacheEntries, app.logger())
			if fetcherErr != nil {
				return fetcherErr
			}

			documentServer := server.NewServer(server.Config{
				Address:        settings.ServeAddress,
				Document:       rendered,
				Content:        fetcher,
				DisableMetrics: disableMetrics,
				Logger:         app.logger(),
			})
			return documentServer.Run(command.Context(), func(boundAddress string) {
				_, _ = fmt.Fprintf(app.dependencies.Output, serveListeningFormat, rootDirectory, boundAddress)
			})
		},
	}
	addDocumentFlags(serveCommand, &options)
	serveCommand.Flags().StringVar(&address, addressFlagName, "", addressFlagDescription)
	serveCommand.Flags().IntVar(&cacheEntries, cacheEntriesFlagName, 0, cacheEntriesFlagDescription)
	registerBooleanFlag(serveCommand.Flags(), &disableMetrics, noMetricsFlagName, false, noMetricsFlagDescription)
	return serveCommand
}
