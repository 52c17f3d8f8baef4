package domain

import (
	"github.com/shopspring/decimal"
)

// TaxBreakdown itemizes one year's tax liability.
type TaxBreakdown struct {
	FederalIncome decimal.Decimal `json:"federal_income"`
	CapitalGains  decimal.Decimal `json:"capital_gains"`
	State         decimal.Decimal `json:"state"`
	FICA          decimal.Decimal `json:"fica"`
	Total         decimal.Decimal `json:"total"`
}

// YearRecord is one row of the forecast: the complete, denormalized cash flow
// and balance picture for a single simulated year. Records form an append-only
// sequence that ends early when assets are depleted.
type YearRecord struct {
	Year    int  `json:"year"`
	Age     int  `json:"age"`
	Working bool `json:"working"`

	// Gross income components. TotalIncome is the full ordinary income for
	// the year: cash plus equity vesting plus Social Security.
	CashIncome     decimal.Decimal `json:"cash_income"`
	EquityVesting  decimal.Decimal `json:"equity_vesting"`
	SocialSecurity decimal.Decimal `json:"social_security"`
	TotalIncome    decimal.Decimal `json:"total_income"`

	Expenses decimal.Decimal `json:"expenses"`

	// Taxes holds the breakdown on ordinary income; TotalTax additionally
	// includes WithdrawalTax when a shortfall forced withdrawals.
	Taxes         TaxBreakdown    `json:"taxes"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	WithdrawalTax decimal.Decimal `json:"withdrawal_tax"`

	NetIncome       decimal.Decimal `json:"net_income"`
	CashFlow        decimal.Decimal `json:"cash_flow"`
	InvestmentGains decimal.Decimal `json:"investment_gains"`
	CapitalGains    decimal.Decimal `json:"capital_gains"`
	Withdrawal      decimal.Decimal `json:"withdrawal"`

	AssetsNominal decimal.Decimal `json:"assets_nominal"`
	AssetsReal    decimal.Decimal `json:"assets_real"`
	RealExpenses  decimal.Decimal `json:"real_expenses"`
	RealIncome    decimal.Decimal `json:"real_income"`

	// Per-account ending balances.
	AccountBalances map[AccountType]decimal.Decimal `json:"account_balances"`
}

// SummaryMetrics are derived from a completed forecast, never stored.
type SummaryMetrics struct {
	RetirementYear       *int             `json:"retirement_year,omitempty"`
	RetirementAssets     *decimal.Decimal `json:"retirement_assets,omitempty"`
	PeakAssets           decimal.Decimal  `json:"peak_assets"`
	PeakYear             int              `json:"peak_year"`
	FinalAssets          decimal.Decimal  `json:"final_assets"`
	FinalYear            int              `json:"final_year"`
	FinalAge             int              `json:"final_age"`
	TotalTaxesPaid       decimal.Decimal  `json:"total_taxes_paid"`
	TotalInvestmentGains decimal.Decimal  `json:"total_investment_gains"`
	AssetsDepleted       bool             `json:"assets_depleted"`
	DepletionYear        *int             `json:"depletion_year,omitempty"`
}

// ForecastResult bundles the record sequence with its summary. This is the
// sole data surface consumed by reporting and exporting collaborators.
type ForecastResult struct {
	Records    []YearRecord      `json:"records"`
	Summary    SummaryMetrics    `json:"summary"`
	MonteCarlo *MonteCarloResult `json:"monte_carlo,omitempty"`
}

// YearPercentiles holds the asset percentile band for one year index across
// all Monte Carlo trials.
type YearPercentiles struct {
	Year int             `json:"year"`
	P10  decimal.Decimal `json:"p10"`
	P25  decimal.Decimal `json:"p25"`
	P50  decimal.Decimal `json:"p50"`
	P75  decimal.Decimal `json:"p75"`
	P90  decimal.Decimal `json:"p90"`
}

// MonteCarloResult aggregates all randomized trials.
type MonteCarloResult struct {
	Percentiles []YearPercentiles `json:"percentiles"`
	SuccessRate decimal.Decimal   `json:"success_rate"`
	FinalAssets []decimal.Decimal `json:"final_assets"`
	Iterations  int               `json:"iterations"`
	Seed        int64             `json:"seed"`
}
