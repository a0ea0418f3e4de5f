package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/ingest"
)

func newBuildCmd() *cobra.Command {
	cfg := ingest.NewConfig()

	buildCmd := &cobra.Command{
		Use:   "build [assertions-file]",
		Short: "Build a store from an assertions dump",
		Long:  "Ingests a ConceptNet assertions file (plain, .gz, .xz or .zst) into the store.  Running it again on the same store resumes an interrupted build",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cfg.Languages = Languages

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				info, err := ingest.NewBuilder(dbClient, cfg).Build(ctx, args[0])
				if err != nil {
					if err == context.Canceled {
						log.WithField("edges", info.EdgesWritten).Warn("Build interrupted, run again to resume")
						return nil
					}
					return err
				}
				return emitJSON(info)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	buildCmd.Flags().StringSliceVarP(&Languages, "languages", "l", Languages, "Only keep assertions whose both ends are in these languages")
	buildCmd.Flags().IntVarP(&cfg.BatchSize, "batch-size", "B", cfg.BatchSize, "Assertions written per DB transaction")
	buildCmd.Flags().IntVarP(&cfg.MaxEdges, "max-edges", "m", cfg.MaxEdges, "Stop after writing this many edges (<0 signifies unlimited)")
	buildCmd.Flags().IntVarP(&cfg.ProgressEvery, "progress-every", "p", cfg.ProgressEvery, "Log progress every N lines (0 disables)")

	return buildCmd
}
