package dashboard

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Export writes a full snapshot, series included, as "json" or "yaml".
// It does not change any state.
func (d *Dashboard) Export(w io.Writer, format string) error {
	snap := d.Snapshot(true)

	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("export json: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("export yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("export yaml: %w", err)
		}
	default:
		return fmt.Errorf("export: %w: format %q", ErrInvalidArgument, format)
	}
	return nil
}
