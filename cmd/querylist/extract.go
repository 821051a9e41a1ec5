package main

import (
	"fmt"

	"github.com/sd2595101/querylist"
	"github.com/sd2595101/querylist/batch"
	"github.com/sd2595101/querylist/fs"
)

// sourceResult is one entry of the output when several sources are given.
type sourceResult struct {
	Source  string               `json:"source"`
	ID      string               `json:"id,omitempty"`
	Records querylist.Collection `json:"records"`
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	if deps.Runner == nil {
		return querylist.Errorf(querylist.EINTERNAL, "extract runner not configured")
	}

	multi := len(c.Sources) > 1
	progress := func(event batch.ProgressEvent) {
		if multi && event.Type == batch.ProgressCompleted {
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s: %d records\n", event.Completed, event.Total, event.Source, event.Records)
		}
	}

	outcomes := deps.Runner.Run(deps.Ctx, c.Sources, progress)

	results := make([]sourceResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", o.Source, errorText(o.Err))
			continue
		}
		records := o.Extraction.Records
		if records == nil {
			records = querylist.Collection{}
		}
		results = append(results, sourceResult{
			Source:  o.Source,
			ID:      o.Extraction.ID,
			Records: records,
		})
		if o.Extraction.ID != "" {
			fmt.Fprintf(deps.Stderr, "  saved %s as %s\n", o.Source, o.Extraction.ID)
		}
	}

	var out any = results
	if !multi {
		if len(results) == 0 {
			return fmt.Errorf("extraction failed for %s", c.Sources[0])
		}
		out = results[0].Records
	}

	if c.Output != "" {
		if err := fs.WriteFile(c.Output, out); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
	} else {
		data, err := fs.Encode(out)
		if err != nil {
			return err
		}
		if _, err := deps.Stdout.Write(data); err != nil {
			return err
		}
	}

	if n := batch.Failed(outcomes); n > 0 {
		return fmt.Errorf("%d of %d sources failed", n, len(outcomes))
	}
	return nil
}

// errorText returns the message of application errors and the full text of
// anything else.
func errorText(err error) string {
	if querylist.ErrorCode(err) == querylist.EINTERNAL {
		return err.Error()
	}
	return querylist.ErrorMessage(err)
}
