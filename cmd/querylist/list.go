package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sd2595101/querylist"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := querylist.ExtractionFilter{Limit: c.Limit}
	if c.Source != "" {
		filter.SourceURL = &c.Source
	}

	extractions, err := deps.Extractions.FindExtractions(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", querylist.ErrorMessage(err))
		return err
	}

	if len(extractions) == 0 {
		fmt.Fprintln(deps.Stdout, "No extractions found. Use 'querylist extract --save' to store one.")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(deps.Stdout)
	t.AppendHeader(table.Row{"ID", "Extracted", "Records", "Source"})
	for _, e := range extractions {
		t.AppendRow(table.Row{e.ID, formatTime(e.ExtractedAt), len(e.Records), e.SourceURL})
	}
	t.Render()

	return nil
}
