package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/Krimson/eeg-explorer/viewer/docs"
)

// @title EEG Viewer API
// @version 1.0
// @description Browse EEG recordings of the sleep-deprivation study: pick a subject,
// @description condition and task, plot channels and highlight electrode positions.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /
// @schemes http

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "viewer",
		Short: "EEG session viewer",
		Long: `Interactive viewer for EEG recordings.

Available subcommands:
  serve    - Run the HTTP, websocket and gRPC health servers
  subjects - Print the subject catalog
  fetch    - Download one recording into the local cache
  seed     - Upload local recordings into a redis or postgres store`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newSubjectsCmd(),
		newFetchCmd(),
		newSeedCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
