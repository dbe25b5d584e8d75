package main

import (
	"encoding/json"
	"io"
)

// writeJSON encodes v onto w. Callers treat a failure (e.g. a broken pipe)
// as a command failure rather than exiting zero with partial output.
func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
