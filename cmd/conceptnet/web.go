package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rominf/conceptnet-lite/graph"
	"github.com/rominf/conceptnet-lite/web"
)

func newWebCmd() *cobra.Command {
	webCmd := &cobra.Command{
		Use:   "web",
		Short: "ConceptNet query web server",
		Long:  "Serves the read-only JSON query API and prometheus metrics",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := withGraph(func(g *graph.Graph) error {
				ws := web.New(g, &web.Config{Addr: WebAddr})
				if err := ws.Start(); err != nil {
					return err
				}
				log.Infof("Web service started on %s", ws.Addr())

				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				s := <-sigCh
				log.WithField("sig", s).Info("Received signal, shutting down web service..")
				return ws.Stop()
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	webCmd.Flags().StringVarP(&WebAddr, "addr", "a", WebAddr, "Interface bind address:port")

	return webCmd
}
