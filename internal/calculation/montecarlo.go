package calculation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fincast/retirement-forecast/internal/domain"
)

const (
	defaultIterations   = 1000
	defaultReturnStdDev = 0.15

	// maxConcurrentTrials bounds the goroutine fan-out.
	maxConcurrentTrials = 10
)

// MonteCarloSimulator repeats a reduced forecast with randomized annual
// returns. Each trial draws independent normal return variates (mean = the
// configured base return, the configured standard deviation) and applies them
// to a single pooled balance. The per-account withdrawal strategy is skipped
// for speed: shortfalls draw directly from the pool.
type MonteCarloSimulator struct {
	Config       *domain.ForecastConfig
	TaxCalc      *TaxCalculator
	Iterations   int
	ReturnStdDev decimal.Decimal
	Seed         int64
	Logger       Logger
}

// seedFunc supplies a seed when none is configured; overridable in tests.
var seedFunc = func() int64 { return time.Now().UnixNano() }

// NewMonteCarloSimulator creates a simulator from the forecast configuration,
// filling in defaults for iterations, standard deviation, and seed.
func NewMonteCarloSimulator(cfg *domain.ForecastConfig) *MonteCarloSimulator {
	iterations := cfg.MonteCarlo.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}

	stdDev := cfg.MonteCarlo.ReturnStdDev
	if stdDev.LessThanOrEqual(decimal.Zero) {
		stdDev = decimal.NewFromFloat(defaultReturnStdDev)
	}

	seed := cfg.MonteCarlo.Seed
	if seed == 0 {
		seed = seedFunc()
	}

	return &MonteCarloSimulator{
		Config:       cfg,
		TaxCalc:      NewTaxCalculator2024(),
		Iterations:   iterations,
		ReturnStdDev: stdDev,
		Seed:         seed,
		Logger:       NopLogger{},
	}
}

// SetLogger sets the logger for the simulator. A nil logger installs the no-op.
func (mcs *MonteCarloSimulator) SetLogger(l Logger) {
	if l == nil {
		mcs.Logger = NopLogger{}
		return
	}
	mcs.Logger = l
}

// trialOutcome is one trial's asset trajectory. Assets has one entry per year
// up to the horizon; years after depletion hold zero.
type trialOutcome struct {
	Assets      []decimal.Decimal
	FinalAssets decimal.Decimal
	Success     bool
}

// Run executes all trials and aggregates per-year percentile bands and the
// success rate. Trials are mutually independent: each owns its pooled balance
// and an RNG stream derived from the base seed, so results are reproducible
// for a fixed seed regardless of scheduling.
func (mcs *MonteCarloSimulator) Run() (*domain.MonteCarloResult, error) {
	if mcs.Config.ForecastYears <= 0 {
		return nil, fmt.Errorf("forecast years must be positive")
	}

	outcomes := make([]trialOutcome, mcs.Iterations)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrentTrials)

	for i := 0; i < mcs.Iterations; i++ {
		wg.Add(1)
		go func(trial int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			outcomes[trial] = mcs.runTrial(trial)
		}(i)
	}

	wg.Wait()

	return mcs.aggregate(outcomes), nil
}

// runTrial simulates one randomized trajectory over the full horizon.
func (mcs *MonteCarloSimulator) runTrial(trial int) trialOutcome {
	cfg := mcs.Config
	filingJointly := cfg.FilingJointly()

	normal := distuv.Normal{
		Mu:    cfg.InvestmentReturnRate.InexactFloat64(),
		Sigma: mcs.ReturnStdDev.InexactFloat64(),
		Src:   rand.NewSource(uint64(mcs.Seed) + uint64(trial)),
	}

	assets := cfg.InitialAssets
	trajectory := make([]decimal.Decimal, cfg.ForecastYears)
	depleted := false

	for yr := 0; yr < cfg.ForecastYears; yr++ {
		if depleted {
			trajectory[yr] = decimal.Zero
			continue
		}

		cashIncome, equityVesting, anyoneWorking, oldestAge := householdIncome(cfg.People, yr)
		ordinaryIncome := cashIncome.Add(equityVesting)
		if oldestAge >= cfg.SocialSecurity.StartAge {
			ordinaryIncome = ordinaryIncome.Add(cfg.SocialSecurity.AnnualBenefit)
		}

		expenses := yearExpenses(cfg, yr)

		// Randomized growth on the pooled balance.
		draw := decimal.NewFromFloat(normal.Rand())
		assets = assets.Add(assets.Mul(draw))

		totalTax, _ := mcs.TaxCalc.TotalTax(ordinaryIncome, decimal.Zero, cfg.State, filingJointly, oldestAge, anyoneWorking)
		cashFlow := ordinaryIncome.Sub(totalTax).Add(cfg.AdditionalContributions).Sub(expenses)

		assets = assets.Add(cashFlow)
		if assets.LessThanOrEqual(decimal.Zero) {
			assets = decimal.Zero
			depleted = true
		}
		trajectory[yr] = assets
	}

	return trialOutcome{
		Assets:      trajectory,
		FinalAssets: assets,
		Success:     !depleted && assets.GreaterThan(decimal.Zero),
	}
}

// aggregate joins all trials into the percentile-band table and success rate.
func (mcs *MonteCarloSimulator) aggregate(outcomes []trialOutcome) *domain.MonteCarloResult {
	cfg := mcs.Config

	percentiles := make([]domain.YearPercentiles, cfg.ForecastYears)
	yearAssets := make([]float64, len(outcomes))

	for yr := 0; yr < cfg.ForecastYears; yr++ {
		for i, outcome := range outcomes {
			yearAssets[i] = outcome.Assets[yr].InexactFloat64()
		}
		sort.Float64s(yearAssets)

		percentiles[yr] = domain.YearPercentiles{
			Year: cfg.StartYear + yr,
			P10:  quantile(0.10, yearAssets),
			P25:  quantile(0.25, yearAssets),
			P50:  quantile(0.50, yearAssets),
			P75:  quantile(0.75, yearAssets),
			P90:  quantile(0.90, yearAssets),
		}
	}

	successes := 0
	finalAssets := make([]decimal.Decimal, len(outcomes))
	for i, outcome := range outcomes {
		finalAssets[i] = outcome.FinalAssets
		if outcome.Success {
			successes++
		}
	}

	successRate := decimal.NewFromInt(int64(successes)).
		Div(decimal.NewFromInt(int64(len(outcomes)))).
		Mul(decimal.NewFromInt(100))

	mcs.Logger.Infof("monte carlo: %d trials, success rate %s%%", len(outcomes), successRate.StringFixed(1))

	return &domain.MonteCarloResult{
		Percentiles: percentiles,
		SuccessRate: successRate,
		FinalAssets: finalAssets,
		Iterations:  len(outcomes),
		Seed:        mcs.Seed,
	}
}

// quantile evaluates the empirical quantile of sorted data.
func quantile(p float64, sorted []float64) decimal.Decimal {
	return decimal.NewFromFloat(stat.Quantile(p, stat.Empirical, sorted, nil))
}
