package main

import (
	"context"
	"io"
	"time"

	"github.com/sd2595101/querylist"
	"github.com/sd2595101/querylist/batch"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Extractions querylist.ExtractionService
	Runner      *batch.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log fetches, extractions and storage to stderr"`

	Extract ExtractCmd `cmd:"" help:"Extract records from pages using a rules file"`
	List    ListCmd    `cmd:"" help:"List stored extractions"`
	Show    ShowCmd    `cmd:"" help:"Print the records of a stored extraction"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored extraction"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Sources []string `arg:"" help:"URLs or local HTML files"`

	Rules      string `short:"r" required:"" help:"Rules file (YAML or JSON)"`
	Range      string `help:"Range selector, overrides the rules file"`
	Charset    string `help:"Input charset label, or 'auto' to detect it"`
	RemoveHead bool   `help:"Drop the document head before parsing"`
	Markdown   bool   `short:"m" help:"Convert string fields from HTML to Markdown"`

	Render  bool   `help:"Render pages with headless Chrome"`
	WaitFor string `help:"With --render, wait for this selector before extracting"`

	UserAgent   string        `default:"querylist/1.0" help:"User-Agent for HTTP fetches"`
	Timeout     time.Duration `default:"10s" help:"Per-fetch timeout"`
	Rate        float64       `default:"1" help:"Requests per second per host"`
	Retries     int           `default:"3" help:"Retries for failed fetches"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent source limit"`

	Save   bool   `short:"s" help:"Store results in the database"`
	Output string `short:"o" help:"Write results to this JSON file instead of stdout"`
	OutDir string `help:"Also write one JSON file per source under this directory"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Source string `help:"Only list extractions of this source"`
	Limit  int    `default:"50" help:"Maximum number of extractions"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Extraction ID"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Extraction ID"`
	Force bool   `help:"Confirm deletion"`
}
