package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/domain"
)

var (
	RebuildDBDriver = "bolt"
	RebuildDBFile   string
	RebuildDrop     []string
)

// readOnlyConfig is dbConfig opened without write access.
func readOnlyConfig() db.Config {
	cfg := dbConfig()
	cfg.Common().ReadOnly = true
	return cfg
}

func newStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:     "statistics",
		Aliases: []string{"stats", "stat", "st"},
		Short:   "DB table-entry counts",
		Long:    "Displays the number of rows in every store table",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(readOnlyConfig(), func(dbClient *db.Client) error {
				counts, err := dbClient.Stats()
				if err != nil {
					return err
				}
				tables := make([]string, 0, len(counts))
				for table := range counts {
					tables = append(tables, table)
				}
				sort.Strings(tables)
				rows := make([][]string, 0, len(tables))
				for _, table := range tables {
					rows = append(rows, []string{table, strconv.Itoa(counts[table])})
				}
				renderTable(os.Stdout, []string{"Table", "Rows"}, rows)
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return statsCmd
}

func newInfoCmd() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Build information",
		Long:  "Prints the record left by the build which produced the store",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(readOnlyConfig(), func(dbClient *db.Client) error {
				info, err := dbClient.BuildInfo()
				if err != nil {
					return fmt.Errorf("getting build info: %s", err)
				}
				return emitJSON(info)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return infoCmd
}

func newGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get [table] [key]",
		Short: "Get a record",
		Long:  "Prints one record as JSON.  Concepts and edges are keyed by id or URI, labels by text",
		Args:  cobra.ExactArgs(2),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(readOnlyConfig(), func(dbClient *db.Client) error {
				record, err := getRecord(dbClient, args[0], args[1])
				if err != nil {
					return err
				}
				return emitJSON(record)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	addLanguageFlag(getCmd)

	return getCmd
}

func getRecord(dbClient *db.Client, table string, key string) (interface{}, error) {
	switch table {
	case db.TableLanguages, "language", "lang":
		return dbClient.Language(key)

	case db.TableRelations, "relation", "rel":
		return dbClient.Relation(key)

	case db.TableLabels, "label":
		return dbClient.Labels(domain.NormalizeText(key), QueryLanguage)

	case db.TableConcepts, "concept":
		if strings.HasPrefix(key, domain.ConceptPrefix) {
			return dbClient.ConceptByURI(key)
		}
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("concept key must be an id or URI: %s", err)
		}
		return dbClient.Concept(id)

	case db.TableEdges, "edge":
		if strings.HasPrefix(key, domain.AssertionPrefix) {
			return dbClient.EdgeByURI(key)
		}
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("edge key must be an id or URI: %s", err)
		}
		return dbClient.Edge(id)

	case db.TableMetadata, "meta":
		if key == db.MetaBuildInfo {
			return dbClient.BuildInfo()
		}
		var v string
		if err := dbClient.Meta(key, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("unrecognized table %q", table)
}

func newPurgeTableCmd() *cobra.Command {
	purgeTableCmd := &cobra.Command{
		Use:   "purge [table...]",
		Short: "Empty tables",
		Long:  "Deletes every row of the named tables, or of the whole store when called with 'all'",
		Args:  cobra.MinimumNArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				if len(args) == 1 && args[0] == "all" {
					return dbClient.Purge()
				}
				return dbClient.Purge(args...)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return purgeTableCmd
}

func newRebuildDBCmd() *cobra.Command {
	rebuildDBCmd := &cobra.Command{
		Use:   "rebuild-db",
		Short: "Rebuilds the database",
		Long:  "Copies the entire store into a fresh one, possibly of another backend type, optionally dropping languages",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if RebuildDBFile == "" {
				log.Fatal("main: a target must be supplied with -t/--target")
			}
			if err := db.WithClient(readOnlyConfig(), func(dbClient *db.Client) error {
				newCfg, err := db.NewConfig(RebuildDBDriver, RebuildDBFile)
				if err != nil {
					return err
				}
				newBe, err := db.NewBackend(newCfg)
				if err != nil {
					return err
				}
				if err := newBe.Open(); err != nil {
					return err
				}
				defer newBe.Close()

				var filters []db.KeyValueFilterFunc
				if len(RebuildDrop) > 0 {
					filters = append(filters, db.DropLanguagesFilter(RebuildDrop...))
				}
				return dbClient.RebuildTo(newBe, filters...)
			}); err != nil {
				log.Fatal(err)
			}
		},
	}

	rebuildDBCmd.Flags().StringVarP(&RebuildDBFile, "target", "t", RebuildDBFile, "Target destination filename")
	rebuildDBCmd.Flags().StringVarP(&RebuildDBDriver, "target-driver", "T", RebuildDBDriver, "Target storage backend")
	rebuildDBCmd.Flags().StringSliceVarP(&RebuildDrop, "drop-language", "x", RebuildDrop, "Drop the labels of these languages")

	return rebuildDBCmd
}
