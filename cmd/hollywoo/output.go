package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// render writes v to w in the selected output format
func (a *app) render(w io.Writer, v any) error {
	switch a.output {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	}
}
