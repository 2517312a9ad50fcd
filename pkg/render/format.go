package render

import (
	"strings"

	errs "github.com/matzehuels/weekflow/pkg/errors"
)

// Output formats understood by the renderers.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Views select which diagram is drawn.
const (
	ViewIcicle   = "icicle"
	ViewNodelink = "nodelink"
)

// Formats lists every output format in the order the CLI documents them.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ParseFormats splits a comma-separated format list, lower-cases and
// validates each entry and drops duplicates. An empty list means SVG.
func ParseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSVG}, nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if err := errs.ValidateFormat(f, Formats...); err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// ValidateView checks a view name.
func ValidateView(v string) error {
	if v != ViewIcicle && v != ViewNodelink {
		return errs.New(errs.ErrCodeInvalidStyle, "unknown view %q (want %s or %s)", v, ViewIcicle, ViewNodelink)
	}
	return nil
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}
