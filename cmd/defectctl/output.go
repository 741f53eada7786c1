package main

import (
	"encoding/json"
	"fmt"
	"io"
)

type renderable interface {
	Render(w io.Writer) error
}

// show prints state as JSON or the rendered page as a table.
func (c *cli) show(w io.Writer, page renderable, state interface{}) error {
	if !c.jsonOutput {
		return page.Render(w)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
