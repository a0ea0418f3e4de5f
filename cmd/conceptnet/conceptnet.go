package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/onrik/logrus/filename"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/graph"
)

var (
	DBDriver = "bolt"
	DBFile   = "conceptnet.bolt"
	Quiet    bool
	Verbose  bool

	WebAddr = "127.0.0.1:8080"

	// Language filter shared by build and query commands.
	Languages []string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "conceptnet",
		Short: "Offline ConceptNet knowledge graph",
		Long:  "Builds an indexed ConceptNet store from an assertions dump and answers label, concept and edge queries against it",
	}

	rootCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "q", Quiet, "Activate quiet log output")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", Verbose, "Activate verbose log output")
	rootCmd.PersistentFlags().StringVarP(&DBDriver, "driver", "D", DBDriver, "Storage backend, one of bolt, badger, sqlite or postgres")
	rootCmd.PersistentFlags().StringVarP(&DBFile, "db", "b", DBFile, "Path to the store file, directory or postgres connection string")

	rootCmd.AddCommand(
		newBuildCmd(),
		newLanguagesCmd(),
		newLabelsCmd(),
		newConceptsCmd(),
		newEdgesCmd(),
		newStatsCmd(),
		newInfoCmd(),
		newGetCmd(),
		newPurgeTableCmd(),
		newRebuildDBCmd(),
		newExportCmd(),
		newWebCmd(),
	)

	return rootCmd
}

func main() {
	if err := NewConfig().Do(); err != nil {
		log.Fatalf("main: %s", err)
	}

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initLogging() {
	level := log.InfoLevel
	if Verbose {
		log.AddHook(filename.NewHook())
		level = log.DebugLevel
	}
	if Quiet {
		level = log.ErrorLevel
	}
	log.SetLevel(level)
}

// dbConfig builds the storage configuration selected on the command line.
func dbConfig() db.Config {
	cfg, err := db.NewConfig(DBDriver, DBFile)
	if err != nil {
		log.Fatalf("main: %s", err)
	}
	return cfg
}

// withGraph connects to the store read-only for the duration of fn.
func withGraph(fn func(g *graph.Graph) error) error {
	g, err := graph.Connect(graph.NewConfig(DBDriver, DBFile))
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			log.Errorf("Closing graph: %s", err)
		}
	}()
	return fn(g)
}

func emitJSON(x interface{}) error {
	bs, err := json.MarshalIndent(x, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%v\n", string(bs))
	return nil
}
