package main

import (
	"fmt"

	"github.com/sd2595101/querylist"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return querylist.Errorf(querylist.EINVALID, "use --force to confirm deletion")
	}

	err := deps.Extractions.DeleteExtraction(deps.Ctx, c.ID)
	if querylist.ErrorCode(err) == querylist.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: extraction %q not found. Use 'querylist list' to see stored extractions.\n", c.ID)
		return err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", querylist.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted extraction %s\n", c.ID)
	return nil
}
