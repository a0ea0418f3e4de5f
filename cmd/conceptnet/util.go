package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/rominf/conceptnet-lite/graph"
)

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func renderEdges(w io.Writer, edges []*graph.Edge) {
	rows := make([][]string, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, []string{
			edge.Relation.Name,
			edge.Start.URI(),
			edge.End.URI(),
			fmt.Sprintf("%.3f", edge.Weight()),
		})
	}
	renderTable(w, []string{"Relation", "Start", "End", "Weight"}, rows)
}
