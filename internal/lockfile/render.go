package lockfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/specialistvlad/buildplan/internal/plan"
	"gopkg.in/yaml.v3"
)

// Output formats understood by RenderPlan.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Formats lists the valid RenderPlan formats.
var Formats = []string{FormatYAML, FormatJSON}

// RenderPlan writes p in the requested format.
func RenderPlan(w io.Writer, p *plan.Plan, format string) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			_ = enc.Close()
			return fmt.Errorf("failed to render plan: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to render plan: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: %v)", format, Formats)
	}
}
