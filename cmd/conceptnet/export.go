package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rominf/conceptnet-lite/export"
	"github.com/rominf/conceptnet-lite/graph"
)

func newExportCmd() *cobra.Command {
	opts := export.NewOptions()

	exportCmd := &cobra.Command{
		Use:   "export [file.parquet]",
		Short: "Export edges to parquet",
		Long:  "Writes every edge, or those touching one language, to a parquet file",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := withGraph(func(g *graph.Graph) error {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				n, err := export.WriteParquet(ctx, g, f, opts)
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}
				log.WithField("file", args[0]).WithField("edges", n).Info("Export finished")
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	exportCmd.Flags().StringVarP(&opts.Language, "language", "l", opts.Language, "Only export edges touching this language")
	exportCmd.Flags().IntVarP(&opts.RowGroupSize, "row-group-size", "r", opts.RowGroupSize, "Rows per parquet row group")

	return exportCmd
}
