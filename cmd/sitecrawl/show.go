package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/sitecrawl"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	result, err := deps.Results.FindResultByID(deps.Ctx, c.ID)
	if err != nil {
		if sitecrawl.ErrorCode(err) == sitecrawl.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: result %q not found. Use 'sitecrawl list' to see stored results.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitecrawl.ErrorMessage(err))
		}
		return err
	}

	if c.Out != "" {
		if err := exportPages(deps, result, c.Out); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
