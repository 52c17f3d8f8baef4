package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/retirement-forecast/internal/domain"
)

func monteCarloConfig() *domain.ForecastConfig {
	cfg := baseConfig()
	cfg.ForecastYears = 20
	cfg.MonteCarlo = domain.MonteCarloConfig{
		Iterations:   200,
		ReturnStdDev: decimal.NewFromFloat(0.15),
		Seed:         42,
	}
	return cfg
}

func TestNewMonteCarloSimulatorDefaults(t *testing.T) {
	cfg := baseConfig()
	cfg.MonteCarlo = domain.MonteCarloConfig{}

	restore := seedFunc
	seedFunc = func() int64 { return 12345 }
	defer func() { seedFunc = restore }()

	sim := NewMonteCarloSimulator(cfg)
	assert.Equal(t, 1000, sim.Iterations)
	assert.True(t, sim.ReturnStdDev.Equal(decimal.NewFromFloat(0.15)))
	assert.Equal(t, int64(12345), sim.Seed, "zero seed draws from the seed source")

	cfg.MonteCarlo.Seed = 7
	assert.Equal(t, int64(7), NewMonteCarloSimulator(cfg).Seed)
}

func TestMonteCarloRunShape(t *testing.T) {
	cfg := monteCarloConfig()
	sim := NewMonteCarloSimulator(cfg)

	result, err := sim.Run()
	require.NoError(t, err)

	assert.Equal(t, 200, result.Iterations)
	assert.Len(t, result.FinalAssets, 200)
	assert.Equal(t, int64(42), result.Seed)
	require.Len(t, result.Percentiles, cfg.ForecastYears)

	for i, yp := range result.Percentiles {
		assert.Equal(t, cfg.StartYear+i, yp.Year)
	}

	assert.True(t, result.SuccessRate.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, result.SuccessRate.LessThanOrEqual(decimal.NewFromInt(100)))
}

// TestMonteCarloPercentileOrdering checks the band ordering for every year.
func TestMonteCarloPercentileOrdering(t *testing.T) {
	sim := NewMonteCarloSimulator(monteCarloConfig())

	result, err := sim.Run()
	require.NoError(t, err)

	for _, yp := range result.Percentiles {
		require.True(t, yp.P10.LessThanOrEqual(yp.P25), "p10 > p25 in %d", yp.Year)
		require.True(t, yp.P25.LessThanOrEqual(yp.P50), "p25 > p50 in %d", yp.Year)
		require.True(t, yp.P50.LessThanOrEqual(yp.P75), "p50 > p75 in %d", yp.Year)
		require.True(t, yp.P75.LessThanOrEqual(yp.P90), "p75 > p90 in %d", yp.Year)
	}
}

// TestMonteCarloReproducible runs the same seed twice and expects identical
// aggregates regardless of goroutine scheduling.
func TestMonteCarloReproducible(t *testing.T) {
	first, err := NewMonteCarloSimulator(monteCarloConfig()).Run()
	require.NoError(t, err)
	second, err := NewMonteCarloSimulator(monteCarloConfig()).Run()
	require.NoError(t, err)

	assert.True(t, first.SuccessRate.Equal(second.SuccessRate))
	require.Equal(t, len(first.Percentiles), len(second.Percentiles))
	for i := range first.Percentiles {
		assert.True(t, first.Percentiles[i].P50.Equal(second.Percentiles[i].P50),
			"median diverged in year index %d", i)
	}
	for i := range first.FinalAssets {
		assert.True(t, first.FinalAssets[i].Equal(second.FinalAssets[i]))
	}
}

// TestMonteCarloNearDeterministic pins the return volatility close to zero so
// every trial collapses onto the fixed-rate trajectory.
func TestMonteCarloNearDeterministic(t *testing.T) {
	cfg := monteCarloConfig()
	sim := NewMonteCarloSimulator(cfg)
	sim.ReturnStdDev = decimal.NewFromFloat(1e-9)

	result, err := sim.Run()
	require.NoError(t, err)

	for _, yp := range result.Percentiles {
		assert.InDelta(t, yp.P10.InexactFloat64(), yp.P90.InexactFloat64(), 1.0,
			"bands should collapse in %d with no volatility", yp.Year)
	}
}

func TestMonteCarloDepletedTrialsPadZero(t *testing.T) {
	cfg := monteCarloConfig()
	// Spending swamps income, so every trial depletes quickly.
	cfg.People[0].CurrentSalary = decimal.NewFromInt(10000)
	cfg.AnnualExpenses = decimal.NewFromInt(200000)
	cfg.AdditionalContributions = decimal.Zero
	cfg.InitialAssets = decimal.NewFromInt(50000)

	sim := NewMonteCarloSimulator(cfg)
	result, err := sim.Run()
	require.NoError(t, err)

	assert.True(t, result.SuccessRate.IsZero())
	for _, fa := range result.FinalAssets {
		assert.True(t, fa.IsZero())
	}

	// Later years report flat zero bands, not missing data.
	last := result.Percentiles[len(result.Percentiles)-1]
	assert.True(t, last.P90.IsZero())
}

func TestMonteCarloRejectsEmptyHorizon(t *testing.T) {
	cfg := monteCarloConfig()
	cfg.ForecastYears = 0

	_, err := NewMonteCarloSimulator(cfg).Run()
	assert.Error(t, err)
}
