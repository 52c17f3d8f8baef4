package domain

import (
	"github.com/shopspring/decimal"
)

// Person represents one member of the household. Fields are set at
// construction and never mutated by the engine; income for a future year is
// derived, not stored.
type Person struct {
	Name                string          `json:"name" yaml:"name" toml:"name"`
	Age                 int             `json:"age" yaml:"age" toml:"age"`
	RetirementAge       int             `json:"retirement_age" yaml:"retirement_age" toml:"retirement_age"`
	CurrentSalary       decimal.Decimal `json:"current_salary" yaml:"current_salary" toml:"current_salary"`
	IncomeGrowthRate    decimal.Decimal `json:"income_growth_rate" yaml:"income_growth_rate" toml:"income_growth_rate"`
	PensionIncome       decimal.Decimal `json:"pension_income" yaml:"pension_income" toml:"pension_income"`
	AnnualEquityVesting decimal.Decimal `json:"annual_equity_vesting" yaml:"annual_equity_vesting" toml:"annual_equity_vesting"`
}

// IncomeAt derives the person's income for the given year offset from the
// simulation start. While the person's age stays below their retirement age,
// salary and equity vesting both compound at the income growth rate. From
// retirement on they receive only their pension and no equity vests.
func (p Person) IncomeAt(yearOffset int) (cash, equity decimal.Decimal, working bool) {
	if p.Age+yearOffset < p.RetirementAge {
		factor := decimal.NewFromInt(1).Add(p.IncomeGrowthRate).Pow(decimal.NewFromInt(int64(yearOffset)))
		return p.CurrentSalary.Mul(factor), p.AnnualEquityVesting.Mul(factor), true
	}
	return p.PensionIncome, decimal.Zero, false
}

// AgeAt returns the person's age at the given year offset.
func (p Person) AgeAt(yearOffset int) int {
	return p.Age + yearOffset
}
