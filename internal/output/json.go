package output

import (
	"github.com/goccy/go-json"

	"github.com/fincast/retirement-forecast/internal/domain"
)

// JSONFormatter serializes the full forecast result, including the summary
// and any Monte Carlo aggregation, as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.ForecastResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
