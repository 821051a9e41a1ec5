package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sd2595101/querylist"
	"github.com/sd2595101/querylist/batch"
	"github.com/sd2595101/querylist/fs"
	"github.com/sd2595101/querylist/goquery"
	"github.com/sd2595101/querylist/htmltomarkdown"
	qlhttp "github.com/sd2595101/querylist/http"
	"github.com/sd2595101/querylist/rod"
	qlslog "github.com/sd2595101/querylist/slog"
	"github.com/sd2595101/querylist/sqlite"
	"github.com/sd2595101/querylist/yaml"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("querylist"),
		kong.Description("Extract structured records from HTML pages with CSS selector rules."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'querylist --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	extract := strings.HasPrefix(kongCtx.Command(), "extract")

	logger := slog.New(slog.DiscardHandler)
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	// Only commands that touch stored extractions open the database.
	if !extract || cli.Extract.Save {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set QUERYLIST_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		deps.Extractions = qlslog.NewLoggingExtractionService(sqlite.NewExtractionService(m.DB), logger)
	}

	if extract {
		runner, closeFn, err := newRunner(&cli.Extract, deps, logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", querylist.ErrorMessage(err))
			return err
		}
		defer closeFn()
		deps.Runner = runner
	}

	return kongCtx.Run(deps)
}

// newRunner wires fetchers, the rule engine and outputs for the extract
// command. The returned function releases the fetchers.
func newRunner(c *ExtractCmd, deps *Dependencies, logger *slog.Logger) (*batch.Runner, func() error, error) {
	rf, err := yaml.LoadRuleFile(c.Rules)
	if err != nil {
		return nil, nil, err
	}

	rangeSelector := rf.Range
	if c.Range != "" {
		rangeSelector = c.Range
	}

	opts := []goquery.Option{goquery.WithRange(rangeSelector)}
	if c.Charset != "" {
		opts = append(opts, goquery.WithCharset(c.Charset))
	}
	if c.RemoveHead {
		opts = append(opts, goquery.WithRemoveHead())
	}
	query, err := goquery.NewQuery(rf.Rules, opts...)
	if err != nil {
		return nil, nil, err
	}

	var fetcher querylist.Fetcher
	if c.Render {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout), rod.WithWaitSelector(c.WaitFor))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = qlhttp.NewFetcher(qlhttp.WithTimeout(c.Timeout), qlhttp.WithUserAgent(c.UserAgent))
	}
	fetcher = qlslog.NewLoggingFetcher(fetcher, logger)

	delays := batch.DefaultRetryDelays()
	if c.Retries < len(delays) {
		delays = delays[:max(c.Retries, 0)]
	}

	runner := &batch.Runner{
		Fetcher:     fetcher,
		Files:       qlslog.NewLoggingFetcher(fs.NewFetcher(), logger),
		Extractor:   qlslog.NewLoggingExtractor(query, logger),
		RulesPath:   c.Rules,
		Range:       rangeSelector,
		Concurrency: c.Concurrency,
		RetryDelays: delays,
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	}
	if c.Rate > 0 {
		runner.Limiter = qlhttp.NewDomainLimiter(c.Rate)
	}
	if c.Markdown {
		conv := htmltomarkdown.NewConverter()
		runner.Transform = func(source string) querylist.RecordFunc {
			return querylist.MapFields(querylist.ConvertFields(conv.ForDomain(sourceDomain(source))))
		}
	}
	if c.Save {
		runner.Extractions = deps.Extractions
	}
	if c.OutDir != "" {
		runner.Writer = fs.NewWriter(c.OutDir)
	}

	return runner, fetcher.Close, nil
}

// sourceDomain returns scheme://host for URLs and an empty string for local
// files.
func sourceDomain(source string) string {
	if !batch.IsURL(source) {
		return ""
	}
	u, err := url.Parse(source)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func defaultDBPath() string {
	if path := os.Getenv("QUERYLIST_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "querylist.db"
	}
	dir := filepath.Join(home, ".querylist")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "querylist.db")
}

// formatTime renders stored timestamps in local time for listings.
func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
