package calculation

import (
	"github.com/fincast/retirement-forecast/internal/domain"
	"github.com/shopspring/decimal"
)

// withdrawalOrder is the fixed priority for funding a shortfall. Taxable
// assets pay tax only on the gains fraction, HSA withdrawals are modeled
// tax-free, Traditional withdrawals are fully ordinary-income taxable, and
// Roth balances are preserved longest for tax-free compounding.
var withdrawalOrder = []domain.AccountType{
	domain.Taxable,
	domain.HSA,
	domain.Traditional401k,
	domain.TraditionalIRA,
	domain.Roth401k,
	domain.RothIRA,
}

// rmdDivisors is the IRS uniform-lifetime distribution period by age.
// Ages beyond 100 use the age-100 divisor.
var rmdDivisors = map[int]decimal.Decimal{
	73: decimal.NewFromFloat(26.5), 74: decimal.NewFromFloat(25.5),
	75: decimal.NewFromFloat(24.6), 76: decimal.NewFromFloat(23.7),
	77: decimal.NewFromFloat(22.9), 78: decimal.NewFromFloat(22.0),
	79: decimal.NewFromFloat(21.1), 80: decimal.NewFromFloat(20.2),
	81: decimal.NewFromFloat(19.4), 82: decimal.NewFromFloat(18.5),
	83: decimal.NewFromFloat(17.7), 84: decimal.NewFromFloat(16.8),
	85: decimal.NewFromFloat(16.0), 86: decimal.NewFromFloat(15.2),
	87: decimal.NewFromFloat(14.4), 88: decimal.NewFromFloat(13.7),
	89: decimal.NewFromFloat(12.9), 90: decimal.NewFromFloat(12.2),
	91: decimal.NewFromFloat(11.5), 92: decimal.NewFromFloat(10.8),
	93: decimal.NewFromFloat(10.1), 94: decimal.NewFromFloat(9.5),
	95: decimal.NewFromFloat(8.9), 96: decimal.NewFromFloat(8.4),
	97: decimal.NewFromFloat(7.8), 98: decimal.NewFromFloat(7.3),
	99: decimal.NewFromFloat(6.8), 100: decimal.NewFromFloat(6.4),
}

// rmdStartAge is when required minimum distributions begin (SECURE Act 2.0).
const rmdStartAge = 73

// marginalRateProbe is the income delta used to estimate the marginal federal
// rate when grossing up Traditional withdrawals.
var marginalRateProbe = decimal.NewFromInt(10000)

// taxableGrossUpFactor oversizes Taxable draws so the withdrawal can self-fund
// its own capital-gains tax.
var taxableGrossUpFactor = decimal.NewFromFloat(1.5)

// WithdrawalPlanner decides how much to draw from each account type to cover
// an after-tax cash shortfall with minimal tax drag. It is stateless: it reads
// the portfolio but leaves applying the withdrawals to the caller.
type WithdrawalPlanner struct {
	TaxCalc *TaxCalculator
}

// NewWithdrawalPlanner creates a withdrawal planner.
func NewWithdrawalPlanner(taxCalc *TaxCalculator) *WithdrawalPlanner {
	return &WithdrawalPlanner{TaxCalc: taxCalc}
}

// RequiredMinimumDistribution returns the mandated Traditional-account
// withdrawal for the given age, zero below the RMD start age.
func (wp *WithdrawalPlanner) RequiredMinimumDistribution(portfolio *domain.Portfolio, age int) decimal.Decimal {
	if age < rmdStartAge {
		return decimal.Zero
	}

	divisor, ok := rmdDivisors[age]
	if !ok {
		divisor = rmdDivisors[100]
	}

	traditionalBalance := portfolio.Balance(domain.Traditional401k).Add(portfolio.Balance(domain.TraditionalIRA))
	if traditionalBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	return traditionalBalance.Div(divisor)
}

// ComputeWithdrawal plans withdrawals covering amountNeeded, the after-tax
// shortfall. It returns the gross per-account withdrawals and the total
// incremental tax they trigger. When every account is exhausted before the
// need is met, the partial plan is returned; an unmet shortfall is the
// caller's outcome to report, not an error.
//
// An RMD pre-pass runs first: at the RMD age and beyond, the mandated amount
// is drawn from Traditional accounts (401k before IRA) even when amountNeeded
// is zero, and counts against the remaining need.
func (wp *WithdrawalPlanner) ComputeWithdrawal(portfolio *domain.Portfolio, amountNeeded decimal.Decimal, age int, ordinaryIncome decimal.Decimal, filingJointly bool) (map[domain.AccountType]decimal.Decimal, decimal.Decimal) {
	withdrawals := make(map[domain.AccountType]decimal.Decimal)
	remainingNeeded := amountNeeded

	var totalCapitalGains decimal.Decimal
	var totalOrdinaryWithdrawals decimal.Decimal

	// Stacking base for the final capital-gains tally: ordinary income plus
	// ordinary withdrawals accumulated when the gains were realized. One
	// convention throughout, for the in-loop estimate and the final tally.
	gainsStackingBase := ordinaryIncome

	if age >= rmdStartAge {
		rmdRemaining := wp.RequiredMinimumDistribution(portfolio, age)
		for _, at := range []domain.AccountType{domain.Traditional401k, domain.TraditionalIRA} {
			if rmdRemaining.LessThanOrEqual(decimal.Zero) {
				break
			}
			available := portfolio.Balance(at)
			if available.LessThanOrEqual(decimal.Zero) {
				continue
			}
			withdrawal := decimal.Min(rmdRemaining, available)
			withdrawals[at] = withdrawals[at].Add(withdrawal)
			totalOrdinaryWithdrawals = totalOrdinaryWithdrawals.Add(withdrawal)
			rmdRemaining = rmdRemaining.Sub(withdrawal)
			remainingNeeded = remainingNeeded.Sub(withdrawal)
		}
	}

	for _, at := range withdrawalOrder {
		if remainingNeeded.LessThanOrEqual(decimal.Zero) {
			break
		}

		availableBalance := portfolio.Balance(at).Sub(withdrawals[at])
		if availableBalance.LessThanOrEqual(decimal.Zero) {
			continue
		}

		switch {
		case at == domain.Taxable:
			costBasis := portfolio.CostBasis(at)
			gainsRatio := decimal.Zero
			if availableBalance.GreaterThan(decimal.Zero) {
				gainsRatio = decimal.Max(decimal.Zero, availableBalance.Sub(costBasis).Div(availableBalance))
			}

			grossWithdrawal := decimal.Min(remainingNeeded.Mul(taxableGrossUpFactor), availableBalance)
			capitalGains := grossWithdrawal.Mul(gainsRatio)
			cgTax := wp.TaxCalc.CapitalGainsTax(capitalGains, ordinaryIncome.Add(totalOrdinaryWithdrawals), filingJointly)

			netWithdrawal := grossWithdrawal.Sub(cgTax)
			if netWithdrawal.GreaterThan(decimal.Zero) {
				withdrawals[at] = withdrawals[at].Add(grossWithdrawal)
				totalCapitalGains = totalCapitalGains.Add(capitalGains)
				gainsStackingBase = ordinaryIncome.Add(totalOrdinaryWithdrawals)
				remainingNeeded = remainingNeeded.Sub(netWithdrawal)
			}

		case at.IsTraditional():
			baseIncome := ordinaryIncome.Add(totalOrdinaryWithdrawals)
			baseTax := wp.TaxCalc.FederalIncomeTax(baseIncome, filingJointly)
			probeTax := wp.TaxCalc.FederalIncomeTax(baseIncome.Add(marginalRateProbe), filingJointly)
			marginalRate := probeTax.Sub(baseTax).Div(marginalRateProbe)

			netFactor := decimal.NewFromInt(1).Sub(marginalRate)
			grossNeeded := remainingNeeded
			if netFactor.GreaterThan(decimal.Zero) {
				grossNeeded = remainingNeeded.Div(netFactor)
			}

			grossWithdrawal := decimal.Min(grossNeeded, availableBalance)
			withdrawals[at] = withdrawals[at].Add(grossWithdrawal)
			totalOrdinaryWithdrawals = totalOrdinaryWithdrawals.Add(grossWithdrawal)
			remainingNeeded = remainingNeeded.Sub(grossWithdrawal.Mul(netFactor))

		default: // Roth and HSA: tax-free, reduce the need 1:1.
			withdrawal := decimal.Min(remainingNeeded, availableBalance)
			withdrawals[at] = withdrawals[at].Add(withdrawal)
			remainingNeeded = remainingNeeded.Sub(withdrawal)
		}
	}

	capitalGainsTax := decimal.Zero
	if totalCapitalGains.GreaterThan(decimal.Zero) {
		capitalGainsTax = wp.TaxCalc.CapitalGainsTax(totalCapitalGains, gainsStackingBase, filingJointly)
	}

	ordinaryTax := decimal.Zero
	if totalOrdinaryWithdrawals.GreaterThan(decimal.Zero) {
		taxWith := wp.TaxCalc.FederalIncomeTax(ordinaryIncome.Add(totalOrdinaryWithdrawals), filingJointly)
		taxWithout := wp.TaxCalc.FederalIncomeTax(ordinaryIncome, filingJointly)
		ordinaryTax = taxWith.Sub(taxWithout)
	}

	return withdrawals, capitalGainsTax.Add(ordinaryTax)
}
