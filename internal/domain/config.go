package domain

import (
	"github.com/shopspring/decimal"
)

// OneTimeExpense is a non-recurring expense pinned to a calendar year. It is
// added on top of the grown base expenses for that year, without compounding.
type OneTimeExpense struct {
	Year        int             `json:"year" yaml:"year" toml:"year"`
	Description string          `json:"description" yaml:"description" toml:"description"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount" toml:"amount"`
}

// SocialSecurityConfig sets the household's Social Security benefit: a fixed
// annual amount that starts once the oldest person reaches StartAge.
type SocialSecurityConfig struct {
	StartAge      int             `json:"start_age" yaml:"start_age" toml:"start_age"`
	AnnualBenefit decimal.Decimal `json:"annual_benefit" yaml:"annual_benefit" toml:"annual_benefit"`
}

// MonteCarloConfig controls the randomized-returns simulation.
type MonteCarloConfig struct {
	Iterations   int             `json:"iterations" yaml:"iterations" toml:"iterations"`
	ReturnStdDev decimal.Decimal `json:"return_std_dev" yaml:"return_std_dev" toml:"return_std_dev"`
	Seed         int64           `json:"seed" yaml:"seed" toml:"seed"`
}

// ForecastConfig is the complete input for one forecast run. The start year is
// explicit so runs are deterministic; nothing in the engine reads the wall
// clock.
type ForecastConfig struct {
	People []Person `json:"people" yaml:"people" toml:"people"`

	StartYear     int    `json:"start_year" yaml:"start_year" toml:"start_year"`
	ForecastYears int    `json:"forecast_years" yaml:"forecast_years" toml:"forecast_years"`
	State         string `json:"state" yaml:"state" toml:"state"`

	InitialAssets decimal.Decimal `json:"initial_assets" yaml:"initial_assets" toml:"initial_assets"`

	// AccountBalances optionally splits the initial assets across account
	// types. Keys must match the closed AccountType set. When empty, all
	// initial assets land in a taxable account with cost basis at 80% of
	// balance, modeling unrealized gains.
	AccountBalances map[string]decimal.Decimal `json:"account_balances,omitempty" yaml:"account_balances,omitempty" toml:"account_balances"`

	// ContributionAllocation routes surplus cash flow into accounts; the
	// percentages must sum to 1.0. Defaults to 100% taxable.
	ContributionAllocation map[string]decimal.Decimal `json:"contribution_allocation,omitempty" yaml:"contribution_allocation,omitempty" toml:"contribution_allocation"`

	AnnualExpenses          decimal.Decimal `json:"annual_expenses" yaml:"annual_expenses" toml:"annual_expenses"`
	ExpenseGrowthRate       decimal.Decimal `json:"expense_growth_rate" yaml:"expense_growth_rate" toml:"expense_growth_rate"`
	InvestmentReturnRate    decimal.Decimal `json:"investment_return_rate" yaml:"investment_return_rate" toml:"investment_return_rate"`
	InflationRate           decimal.Decimal `json:"inflation_rate" yaml:"inflation_rate" toml:"inflation_rate"`
	AdditionalContributions decimal.Decimal `json:"additional_contributions" yaml:"additional_contributions" toml:"additional_contributions"`

	SocialSecurity  SocialSecurityConfig `json:"social_security" yaml:"social_security" toml:"social_security"`
	OneTimeExpenses []OneTimeExpense     `json:"one_time_expenses,omitempty" yaml:"one_time_expenses,omitempty" toml:"one_time_expenses"`

	MonteCarlo MonteCarloConfig `json:"monte_carlo,omitempty" yaml:"monte_carlo,omitempty" toml:"monte_carlo"`
}

// FilingJointly reports the household's filing status: two or more people file
// jointly, one files single.
func (c *ForecastConfig) FilingJointly() bool {
	return len(c.People) > 1
}
