package main

import (
	"fmt"

	"github.com/fwojciec/sitecrawl"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return sitecrawl.Errorf(sitecrawl.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Results.DeleteResult(deps.Ctx, c.ID); err != nil {
		if sitecrawl.ErrorCode(err) == sitecrawl.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: result %q not found. Use 'sitecrawl list' to see stored results.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitecrawl.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted result %s\n", c.ID)
	return nil
}
