package output

import (
	"fmt"

	"github.com/fincast/retirement-forecast/internal/domain"
)

// Formatter serializes a forecast result for export. Implementations are
// stateless and safe for reuse.
type Formatter interface {
	Name() string
	Format(result *domain.ForecastResult) ([]byte, error)
}

// NewFormatter returns the formatter for a format name.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected csv or json)", format)
	}
}
