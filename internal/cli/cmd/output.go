package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats shared by listing commands.
const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatYAML, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use: text, yaml, json)", format)
	}
}

// writeStructured encodes v as YAML or JSON.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("format %q is not structured", format)
	}
}
