package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fincast/retirement-forecast/internal/domain"
)

// InputParser handles loading and validation of forecast configuration files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a configuration from a YAML or TOML file, chosen by
// extension, and validates it.
func (ip *InputParser) LoadFromFile(filename string) (*domain.ForecastConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var cfg domain.ForecastConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := ip.ValidateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ValidateConfiguration checks the loaded configuration and fails fast on the
// first violated constraint. Degenerate-but-valid inputs (zero income, zero
// expenses, unknown state names) pass; structural errors do not.
func (ip *InputParser) ValidateConfiguration(cfg *domain.ForecastConfig) error {
	if len(cfg.People) == 0 {
		return fmt.Errorf("at least one person is required")
	}
	for i, person := range cfg.People {
		if err := ip.validatePerson(&person); err != nil {
			return fmt.Errorf("person %d (%s) validation failed: %w", i, person.Name, err)
		}
	}

	if cfg.StartYear <= 0 {
		return fmt.Errorf("start year must be positive")
	}
	if cfg.ForecastYears <= 0 || cfg.ForecastYears > 100 {
		return fmt.Errorf("forecast years must be between 1 and 100")
	}
	if cfg.InitialAssets.LessThan(decimal.Zero) {
		return fmt.Errorf("initial assets cannot be negative")
	}
	if cfg.AnnualExpenses.LessThan(decimal.Zero) {
		return fmt.Errorf("annual expenses cannot be negative")
	}
	if cfg.ExpenseGrowthRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("expense growth rate cannot be -100%% or lower")
	}
	if cfg.InvestmentReturnRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("investment return rate cannot be -100%% or lower")
	}
	if cfg.InflationRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("inflation rate cannot be -100%% or lower")
	}
	if cfg.SocialSecurity.StartAge < 0 {
		return fmt.Errorf("social security start age cannot be negative")
	}
	if cfg.SocialSecurity.AnnualBenefit.LessThan(decimal.Zero) {
		return fmt.Errorf("social security benefit cannot be negative")
	}

	if err := ip.validateAccountMap("account_balances", cfg.AccountBalances); err != nil {
		return err
	}
	if err := ip.validateAllocation(cfg.ContributionAllocation); err != nil {
		return err
	}

	for i, ote := range cfg.OneTimeExpenses {
		if ote.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("one-time expense %d (%s): amount cannot be negative", i, ote.Description)
		}
	}

	if cfg.MonteCarlo.Iterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	if cfg.MonteCarlo.ReturnStdDev.LessThan(decimal.Zero) {
		return fmt.Errorf("monte carlo return standard deviation cannot be negative")
	}

	return nil
}

func (ip *InputParser) validatePerson(person *domain.Person) error {
	if person.Age <= 0 {
		return fmt.Errorf("age must be positive")
	}
	if person.RetirementAge <= 0 {
		return fmt.Errorf("retirement age must be positive")
	}
	if person.CurrentSalary.LessThan(decimal.Zero) {
		return fmt.Errorf("current salary cannot be negative")
	}
	if person.IncomeGrowthRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("income growth rate cannot be -100%% or lower")
	}
	if person.PensionIncome.LessThan(decimal.Zero) {
		return fmt.Errorf("pension income cannot be negative")
	}
	if person.AnnualEquityVesting.LessThan(decimal.Zero) {
		return fmt.Errorf("annual equity vesting cannot be negative")
	}
	return nil
}

// validateAccountMap rejects keys outside the closed account-type set rather
// than silently defaulting them, so caller typos surface at load time.
func (ip *InputParser) validateAccountMap(field string, m map[string]decimal.Decimal) error {
	for name, balance := range m {
		if _, err := domain.ParseAccountType(name); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if balance.LessThan(decimal.Zero) {
			return fmt.Errorf("%s: %s cannot be negative", field, name)
		}
	}
	return nil
}

func (ip *InputParser) validateAllocation(allocation map[string]decimal.Decimal) error {
	if len(allocation) == 0 {
		return nil
	}
	sum := decimal.Zero
	for name, pct := range allocation {
		if _, err := domain.ParseAccountType(name); err != nil {
			return fmt.Errorf("contribution_allocation: %w", err)
		}
		if pct.LessThan(decimal.Zero) || pct.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("contribution_allocation: %s must be between 0 and 1", name)
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(decimal.NewFromFloat(1e-9)) {
		return fmt.Errorf("contribution_allocation percentages must sum to 1.0, got %s", sum)
	}
	return nil
}

// ExampleConfiguration creates a complete example configuration: one person,
// age 30, retiring at 65, all initial assets taxable, a 50-year horizon.
func (ip *InputParser) ExampleConfiguration() *domain.ForecastConfig {
	return &domain.ForecastConfig{
		People: []domain.Person{
			{
				Name:                "Alex",
				Age:                 30,
				RetirementAge:       65,
				CurrentSalary:       decimal.NewFromInt(75000),
				IncomeGrowthRate:    decimal.NewFromFloat(0.03),
				PensionIncome:       decimal.Zero,
				AnnualEquityVesting: decimal.Zero,
			},
		},
		StartYear:               2024,
		ForecastYears:           50,
		State:                   "New York",
		InitialAssets:           decimal.NewFromInt(50000),
		AnnualExpenses:          decimal.NewFromInt(55000),
		ExpenseGrowthRate:       decimal.NewFromFloat(0.03),
		InvestmentReturnRate:    decimal.NewFromFloat(0.08),
		InflationRate:           decimal.NewFromFloat(0.025),
		AdditionalContributions: decimal.NewFromInt(20000),
		SocialSecurity: domain.SocialSecurityConfig{
			StartAge:      67,
			AnnualBenefit: decimal.NewFromInt(28000),
		},
		ContributionAllocation: map[string]decimal.Decimal{
			"traditional_401k": decimal.NewFromFloat(0.6),
			"roth_ira":         decimal.NewFromFloat(0.3),
			"taxable":          decimal.NewFromFloat(0.1),
		},
		MonteCarlo: domain.MonteCarloConfig{
			Iterations:   1000,
			ReturnStdDev: decimal.NewFromFloat(0.15),
			Seed:         42,
		},
	}
}
