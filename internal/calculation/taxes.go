package calculation

import (
	"github.com/fincast/retirement-forecast/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Federal Tax Brackets: 2024 brackets for all projection years
//    - No inflation indexing applied to future years
//    - Standard deduction: $14,600 single / $29,200 married filing jointly
//
// 2. Long-term capital gains: 2024 three-tier schedule (0% / 15% / 20%),
//    stacked on top of ordinary income for bracket placement
//
// 3. State tax: flat rate per state, applied to ordinary income plus capital
//    gains combined; states without an income tax carry a 0% rate. An unknown
//    state name also yields 0% rather than an error.
//
// 4. FICA: Social Security 6.2% up to the $168,600 wage base, Medicare 1.45%
//    on all earned income plus 0.9% above $200,000. Applied only while the
//    caller reports the household as working.
//
// All tables are versioned data for a specific tax year; they are looked up,
// never computed, and must be replaced wholesale when tax law changes.

// TaxBracket is one rung of a progressive schedule. Max on the top bracket is
// an effectively-unbounded sentinel.
type TaxBracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// TaxCalculator prices federal, capital-gains, state, and FICA taxes from the
// 2024 tables. It holds only immutable tables, so a single instance is safe
// for concurrent use.
type TaxCalculator struct {
	Year int

	StandardDeductionSingle decimal.Decimal
	StandardDeductionJoint  decimal.Decimal

	BracketsSingle []TaxBracket
	BracketsJoint  []TaxBracket

	CapitalGainsSingle []TaxBracket
	CapitalGainsJoint  []TaxBracket

	StateRates map[string]decimal.Decimal

	SSWageBase             decimal.Decimal
	SSRate                 decimal.Decimal
	MedicareRate           decimal.Decimal
	AdditionalMedicareRate decimal.Decimal
	AdditionalMedicareMin  decimal.Decimal
}

// bracketCeiling caps the top bracket of each table.
var bracketCeiling = decimal.NewFromInt(999999999999)

// NewTaxCalculator2024 creates a tax calculator loaded with the 2024 federal
// and state tables.
func NewTaxCalculator2024() *TaxCalculator {
	return &TaxCalculator{
		Year:                    2024,
		StandardDeductionSingle: decimal.NewFromInt(14600),
		StandardDeductionJoint:  decimal.NewFromInt(29200),
		BracketsSingle: []TaxBracket{
			{decimal.Zero, decimal.NewFromInt(11600), decimal.NewFromFloat(0.10)},
			{decimal.NewFromInt(11600), decimal.NewFromInt(47150), decimal.NewFromFloat(0.12)},
			{decimal.NewFromInt(47150), decimal.NewFromInt(100525), decimal.NewFromFloat(0.22)},
			{decimal.NewFromInt(100525), decimal.NewFromInt(191950), decimal.NewFromFloat(0.24)},
			{decimal.NewFromInt(191950), decimal.NewFromInt(243725), decimal.NewFromFloat(0.32)},
			{decimal.NewFromInt(243725), decimal.NewFromInt(609350), decimal.NewFromFloat(0.35)},
			{decimal.NewFromInt(609350), bracketCeiling, decimal.NewFromFloat(0.37)},
		},
		BracketsJoint: []TaxBracket{
			{decimal.Zero, decimal.NewFromInt(23200), decimal.NewFromFloat(0.10)},
			{decimal.NewFromInt(23200), decimal.NewFromInt(94300), decimal.NewFromFloat(0.12)},
			{decimal.NewFromInt(94300), decimal.NewFromInt(201050), decimal.NewFromFloat(0.22)},
			{decimal.NewFromInt(201050), decimal.NewFromInt(383900), decimal.NewFromFloat(0.24)},
			{decimal.NewFromInt(383900), decimal.NewFromInt(487450), decimal.NewFromFloat(0.32)},
			{decimal.NewFromInt(487450), decimal.NewFromInt(731200), decimal.NewFromFloat(0.35)},
			{decimal.NewFromInt(731200), bracketCeiling, decimal.NewFromFloat(0.37)},
		},
		CapitalGainsSingle: []TaxBracket{
			{decimal.Zero, decimal.NewFromInt(47025), decimal.Zero},
			{decimal.NewFromInt(47025), decimal.NewFromInt(518900), decimal.NewFromFloat(0.15)},
			{decimal.NewFromInt(518900), bracketCeiling, decimal.NewFromFloat(0.20)},
		},
		CapitalGainsJoint: []TaxBracket{
			{decimal.Zero, decimal.NewFromInt(94050), decimal.Zero},
			{decimal.NewFromInt(94050), decimal.NewFromInt(583750), decimal.NewFromFloat(0.15)},
			{decimal.NewFromInt(583750), bracketCeiling, decimal.NewFromFloat(0.20)},
		},
		StateRates: map[string]decimal.Decimal{
			"California":    decimal.NewFromFloat(0.093),
			"New York":      decimal.NewFromFloat(0.0685),
			"Texas":         decimal.Zero,
			"Florida":       decimal.Zero,
			"Illinois":      decimal.NewFromFloat(0.0495),
			"Massachusetts": decimal.NewFromFloat(0.05),
			"Washington":    decimal.Zero,
			"Colorado":      decimal.NewFromFloat(0.044),
			"Oregon":        decimal.NewFromFloat(0.099),
			"New Jersey":    decimal.NewFromFloat(0.0637),
			"None":          decimal.Zero,
		},
		SSWageBase:             decimal.NewFromInt(168600),
		SSRate:                 decimal.NewFromFloat(0.062),
		MedicareRate:           decimal.NewFromFloat(0.0145),
		AdditionalMedicareRate: decimal.NewFromFloat(0.009),
		AdditionalMedicareMin:  decimal.NewFromInt(200000),
	}
}

// StandardDeduction returns the deduction for the filing status.
func (tc *TaxCalculator) StandardDeduction(filingJointly bool) decimal.Decimal {
	if filingJointly {
		return tc.StandardDeductionJoint
	}
	return tc.StandardDeductionSingle
}

// FederalIncomeTax calculates federal income tax on ordinary income using the
// progressive schedule for the filing status, after the standard deduction.
func (tc *TaxCalculator) FederalIncomeTax(income decimal.Decimal, filingJointly bool) decimal.Decimal {
	brackets := tc.BracketsSingle
	if filingJointly {
		brackets = tc.BracketsJoint
	}

	taxableIncome := income.Sub(tc.StandardDeduction(filingJointly))
	if taxableIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var totalTax decimal.Decimal
	for _, bracket := range brackets {
		if taxableIncome.LessThanOrEqual(bracket.Min) {
			break
		}
		incomeInBracket := decimal.Min(taxableIncome, bracket.Max).Sub(bracket.Min)
		if incomeInBracket.GreaterThan(decimal.Zero) {
			totalTax = totalTax.Add(incomeInBracket.Mul(bracket.Rate))
		}
	}

	return totalTax
}

// CapitalGainsTax calculates long-term capital gains tax. Gains stack on top
// of ordinary income for bracket placement: each gains tier is filled only
// above the floor left by deduction-reduced ordinary income and by gains
// already allocated to lower tiers.
func (tc *TaxCalculator) CapitalGainsTax(gains, ordinaryIncome decimal.Decimal, filingJointly bool) decimal.Decimal {
	if gains.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	brackets := tc.CapitalGainsSingle
	if filingJointly {
		brackets = tc.CapitalGainsJoint
	}

	floor := ordinaryIncome.Sub(tc.StandardDeduction(filingJointly))
	if floor.LessThan(decimal.Zero) {
		floor = decimal.Zero
	}

	var tax decimal.Decimal
	remainingGains := gains
	for _, bracket := range brackets {
		bracketBottom := decimal.Max(bracket.Min, floor)
		if bracketBottom.GreaterThanOrEqual(bracket.Max) {
			continue
		}

		gainsInBracket := decimal.Min(remainingGains, bracket.Max.Sub(bracketBottom))
		if gainsInBracket.GreaterThan(decimal.Zero) {
			tax = tax.Add(gainsInBracket.Mul(bracket.Rate))
			remainingGains = remainingGains.Sub(gainsInBracket)
			floor = floor.Add(gainsInBracket)
		}

		if remainingGains.LessThanOrEqual(decimal.Zero) {
			break
		}
	}

	return tax
}

// StateTax calculates flat-rate state income tax. Unknown state names are
// treated as a 0% rate, not an error; many states levy no income tax and the
// table is not exhaustive.
func (tc *TaxCalculator) StateTax(income decimal.Decimal, state string) decimal.Decimal {
	rate, ok := tc.StateRates[state]
	if !ok {
		return decimal.Zero
	}
	return income.Mul(rate)
}

// FICATax calculates Social Security and Medicare taxes on earned income.
// Liability follows the caller's working flag in TotalTax, not age; age is
// carried for reporting parity only.
func (tc *TaxCalculator) FICATax(earnedIncome decimal.Decimal, age int) decimal.Decimal {
	_ = age

	ssTax := decimal.Min(earnedIncome, tc.SSWageBase).Mul(tc.SSRate)
	medicareTax := earnedIncome.Mul(tc.MedicareRate)
	if earnedIncome.GreaterThan(tc.AdditionalMedicareMin) {
		medicareTax = medicareTax.Add(earnedIncome.Sub(tc.AdditionalMedicareMin).Mul(tc.AdditionalMedicareRate))
	}

	return ssTax.Add(medicareTax)
}

// TotalTax sums federal, capital-gains, state, and FICA taxes and returns the
// itemized breakdown. FICA is zeroed when nobody is working. State tax is
// levied on ordinary income and capital gains combined.
func (tc *TaxCalculator) TotalTax(ordinaryIncome, capitalGains decimal.Decimal, state string, filingJointly bool, age int, isWorking bool) (decimal.Decimal, domain.TaxBreakdown) {
	federalTax := tc.FederalIncomeTax(ordinaryIncome, filingJointly)
	capitalGainsTax := tc.CapitalGainsTax(capitalGains, ordinaryIncome, filingJointly)
	stateTax := tc.StateTax(ordinaryIncome.Add(capitalGains), state)

	ficaTax := decimal.Zero
	if isWorking {
		ficaTax = tc.FICATax(ordinaryIncome, age)
	}

	total := federalTax.Add(capitalGainsTax).Add(stateTax).Add(ficaTax)

	return total, domain.TaxBreakdown{
		FederalIncome: federalTax,
		CapitalGains:  capitalGainsTax,
		State:         stateTax,
		FICA:          ficaTax,
		Total:         total,
	}
}
