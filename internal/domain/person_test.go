package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPersonIncomeWhileWorking(t *testing.T) {
	person := Person{
		Name:                "Alex",
		Age:                 30,
		RetirementAge:       65,
		CurrentSalary:       decimal.NewFromInt(100000),
		IncomeGrowthRate:    decimal.NewFromFloat(0.03),
		AnnualEquityVesting: decimal.NewFromInt(10000),
	}

	cash, equity, working := person.IncomeAt(0)
	assert.True(t, working)
	assert.True(t, cash.Equal(decimal.NewFromInt(100000)))
	assert.True(t, equity.Equal(decimal.NewFromInt(10000)))

	// Ten years out both salary and equity compound at the growth rate.
	cash, equity, working = person.IncomeAt(10)
	assert.True(t, working)
	factor := decimal.NewFromFloat(1.03).Pow(decimal.NewFromInt(10))
	assert.InDelta(t, decimal.NewFromInt(100000).Mul(factor).InexactFloat64(), cash.InexactFloat64(), 0.01)
	assert.InDelta(t, decimal.NewFromInt(10000).Mul(factor).InexactFloat64(), equity.InexactFloat64(), 0.01)
}

func TestPersonIncomeInRetirement(t *testing.T) {
	person := Person{
		Name:                "Sam",
		Age:                 60,
		RetirementAge:       62,
		CurrentSalary:       decimal.NewFromInt(90000),
		IncomeGrowthRate:    decimal.NewFromFloat(0.03),
		PensionIncome:       decimal.NewFromInt(24000),
		AnnualEquityVesting: decimal.NewFromInt(5000),
	}

	// Last working year.
	_, _, working := person.IncomeAt(1)
	assert.True(t, working)

	// Retirement: pension only, no equity vesting, no salary growth.
	cash, equity, working := person.IncomeAt(2)
	assert.False(t, working)
	assert.True(t, cash.Equal(decimal.NewFromInt(24000)))
	assert.True(t, equity.IsZero())

	cash, _, _ = person.IncomeAt(20)
	assert.True(t, cash.Equal(decimal.NewFromInt(24000)), "pension does not grow")
}

func TestPersonAgeAt(t *testing.T) {
	person := Person{Age: 41}
	assert.Equal(t, 41, person.AgeAt(0))
	assert.Equal(t, 66, person.AgeAt(25))
}
