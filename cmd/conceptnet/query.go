package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rominf/conceptnet-lite/domain"
	"github.com/rominf/conceptnet-lite/graph"
)

var (
	QueryLanguage string
	SameLanguage  bool
	TwoWay        bool
	LabelsLimit   = -1
)

func newLanguagesCmd() *cobra.Command {
	languagesCmd := &cobra.Command{
		Use:     "languages",
		Aliases: []string{"langs"},
		Short:   "List languages",
		Long:    "Lists every language present in the store",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := withGraph(func(g *graph.Graph) error {
				langs, err := g.Languages()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(langs))
				for _, lang := range langs {
					rows = append(rows, []string{lang.Code, lang.Name})
				}
				renderTable(os.Stdout, []string{"Code", "Name"}, rows)
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return languagesCmd
}

func newLabelsCmd() *cobra.Command {
	labelsCmd := &cobra.Command{
		Use:   "labels [lang]",
		Short: "List the labels of a language",
		Long:  "Prints every label of a language in text order",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := withGraph(func(g *graph.Graph) error {
				return printLabels(os.Stdout, g, args[0], LabelsLimit)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	labelsCmd.Flags().IntVarP(&LabelsLimit, "limit", "n", LabelsLimit, "Maximum number of labels to print (<0 signifies unlimited)")

	return labelsCmd
}

// printLabels writes the labels of lang one per line, at most limit of them
// unless limit is negative.
func printLabels(w io.Writer, g *graph.Graph, lang string, limit int) error {
	if limit == 0 {
		return nil
	}
	n := 0
	return g.EachLabel(lang, func(label *domain.Label) bool {
		fmt.Fprintln(w, label.PlainText())
		n++
		return limit < 0 || n < limit
	})
}

func newConceptsCmd() *cobra.Command {
	conceptsCmd := &cobra.Command{
		Use:   "concepts [text]",
		Short: "Look up the concepts of a label",
		Long:  "Resolves label text, optionally within one language, into concepts",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := withGraph(func(g *graph.Graph) error {
				concepts, err := g.Concepts(args[0], QueryLanguage)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(concepts))
				for _, c := range concepts {
					rows = append(rows, []string{fmt.Sprint(c.ID), c.URI(), c.PlainText(), c.Language, c.SenseLabel})
				}
				renderTable(os.Stdout, []string{"ID", "URI", "Text", "Language", "Sense"}, rows)
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	addLanguageFlag(conceptsCmd)

	return conceptsCmd
}

func newEdgesCmd() *cobra.Command {
	edgesCmd := &cobra.Command{
		Use:   "edges",
		Short: "Edge queries",
		Long:  "Queries edges by label text or concept URI",
	}

	edgesCmd.AddCommand(
		newEdgesForCmd(),
		newEdgesBetweenCmd(),
		newEdgesDirectedCmd("out", "Edges starting at a concept", (*graph.Graph).EdgesOut),
		newEdgesDirectedCmd("in", "Edges ending at a concept", (*graph.Graph).EdgesIn),
	)

	return edgesCmd
}

func newEdgesForCmd() *cobra.Command {
	edgesForCmd := &cobra.Command{
		Use:   "for [text]",
		Short: "Edges touching a label",
		Long:  "Lists every edge starting or ending at one of the concepts of a label",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := withGraph(func(g *graph.Graph) error {
				concepts, err := g.Concepts(args[0], QueryLanguage)
				if err != nil {
					return err
				}
				edges, err := g.EdgesFor(concepts, SameLanguage)
				if err != nil {
					return err
				}
				renderEdges(os.Stdout, edges)
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	addLanguageFlag(edgesForCmd)
	edgesForCmd.Flags().BoolVarP(&SameLanguage, "same-language", "s", SameLanguage, "Only edges whose ends share a language")

	return edgesForCmd
}

func newEdgesBetweenCmd() *cobra.Command {
	edgesBetweenCmd := &cobra.Command{
		Use:   "between [text-a] [text-b]",
		Short: "Edges between two labels",
		Long:  "Lists the edges from the concepts of the first label to the concepts of the second one",
		Args:  cobra.ExactArgs(2),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := withGraph(func(g *graph.Graph) error {
				starts, err := g.Concepts(args[0], QueryLanguage)
				if err != nil {
					return err
				}
				ends, err := g.Concepts(args[1], QueryLanguage)
				if err != nil {
					return err
				}
				edges, err := g.EdgesBetween(starts, ends, TwoWay)
				if err != nil {
					return err
				}
				renderEdges(os.Stdout, edges)
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	addLanguageFlag(edgesBetweenCmd)
	edgesBetweenCmd.Flags().BoolVarP(&TwoWay, "two-way", "2", TwoWay, "Include edges in the opposite direction")

	return edgesBetweenCmd
}

func newEdgesDirectedCmd(use string, short string, fn func(*graph.Graph, *domain.Concept) ([]*graph.Edge, error)) *cobra.Command {
	edgesDirectedCmd := &cobra.Command{
		Use:   use + " [concept-uri]",
		Short: short,
		Long:  short + ", given its full URI (e.g. /c/en/cat/n)",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := withGraph(func(g *graph.Graph) error {
				concept, err := g.ConceptByURI(args[0])
				if err != nil {
					return err
				}
				edges, err := fn(g, concept)
				if err != nil {
					return err
				}
				renderEdges(os.Stdout, edges)
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return edgesDirectedCmd
}

func addLanguageFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&QueryLanguage, "language", "l", QueryLanguage, "Restrict labels to one language code (default any)")
}
