package main

import (
	"fmt"

	"github.com/sd2595101/querylist"
	"github.com/sd2595101/querylist/fs"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	e, err := deps.Extractions.FindExtractionByID(deps.Ctx, c.ID)
	if querylist.ErrorCode(err) == querylist.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: extraction %q not found. Use 'querylist list' to see stored extractions.\n", c.ID)
		return err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", querylist.ErrorMessage(err))
		return err
	}

	records := e.Records
	if records == nil {
		records = querylist.Collection{}
	}
	data, err := fs.Encode(records)
	if err != nil {
		return err
	}
	_, err = deps.Stdout.Write(data)
	return err
}
