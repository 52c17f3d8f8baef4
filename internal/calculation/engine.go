package calculation

import (
	"fmt"

	"github.com/fincast/retirement-forecast/internal/domain"
	"github.com/shopspring/decimal"
)

// allocationTolerance is how far contribution percentages may drift from
// summing to exactly 1.0 before the configuration is rejected.
var allocationTolerance = decimal.NewFromFloat(1e-9)

// defaultTaxableBasisRatio models unrealized gains in a default taxable
// account: cost basis starts at 80% of the balance.
var defaultTaxableBasisRatio = decimal.NewFromFloat(0.8)

// ForecastEngine runs the year-by-year household wealth projection. Each
// engine owns exactly one Portfolio for the duration of a run; engines must
// not be shared across concurrent forecasts.
type ForecastEngine struct {
	Config    *domain.ForecastConfig
	TaxCalc   *TaxCalculator
	Planner   *WithdrawalPlanner
	Portfolio *domain.Portfolio
	Logger    Logger

	allocation map[domain.AccountType]decimal.Decimal
}

// NewForecastEngine validates the configuration and builds an engine with its
// portfolio initialized from the configured balances. Invalid account-type
// keys and contribution percentages that do not sum to 1.0 are construction
// errors; the engine never runs on a partially-valid configuration.
func NewForecastEngine(cfg *domain.ForecastConfig) (*ForecastEngine, error) {
	if len(cfg.People) == 0 {
		return nil, fmt.Errorf("at least one person is required")
	}

	portfolio, err := buildPortfolio(cfg)
	if err != nil {
		return nil, err
	}

	allocation, err := buildAllocation(cfg)
	if err != nil {
		return nil, err
	}

	taxCalc := NewTaxCalculator2024()
	return &ForecastEngine{
		Config:     cfg,
		TaxCalc:    taxCalc,
		Planner:    NewWithdrawalPlanner(taxCalc),
		Portfolio:  portfolio,
		Logger:     NopLogger{},
		allocation: allocation,
	}, nil
}

// SetLogger sets the logger for the engine. A nil logger installs the no-op.
func (fe *ForecastEngine) SetLogger(l Logger) {
	if l == nil {
		fe.Logger = NopLogger{}
		return
	}
	fe.Logger = l
}

func buildPortfolio(cfg *domain.ForecastConfig) (*domain.Portfolio, error) {
	portfolio := domain.NewPortfolio()

	if len(cfg.AccountBalances) == 0 {
		portfolio.AddOrReplace(domain.Taxable, cfg.InitialAssets, cfg.InitialAssets.Mul(defaultTaxableBasisRatio))
		return portfolio, nil
	}

	for name, balance := range cfg.AccountBalances {
		at, err := domain.ParseAccountType(name)
		if err != nil {
			return nil, fmt.Errorf("account_balances: %w", err)
		}
		if balance.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("account_balances: %s balance cannot be negative", name)
		}
		costBasis := balance
		if at == domain.Taxable {
			costBasis = balance.Mul(defaultTaxableBasisRatio)
		}
		portfolio.AddOrReplace(at, balance, costBasis)
	}

	return portfolio, nil
}

func buildAllocation(cfg *domain.ForecastConfig) (map[domain.AccountType]decimal.Decimal, error) {
	if len(cfg.ContributionAllocation) == 0 {
		return map[domain.AccountType]decimal.Decimal{domain.Taxable: decimal.NewFromInt(1)}, nil
	}

	allocation := make(map[domain.AccountType]decimal.Decimal, len(cfg.ContributionAllocation))
	sum := decimal.Zero
	for name, pct := range cfg.ContributionAllocation {
		at, err := domain.ParseAccountType(name)
		if err != nil {
			return nil, fmt.Errorf("contribution_allocation: %w", err)
		}
		if pct.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("contribution_allocation: %s percentage cannot be negative", name)
		}
		allocation[at] = pct
		sum = sum.Add(pct)
	}

	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(allocationTolerance) {
		return nil, fmt.Errorf("contribution_allocation percentages must sum to 1.0, got %s", sum)
	}

	return allocation, nil
}

// householdIncome sums every person's income for a year offset and reports
// the oldest age and whether anyone is still working.
func householdIncome(people []domain.Person, yearOffset int) (cash, equity decimal.Decimal, anyoneWorking bool, oldestAge int) {
	for _, person := range people {
		personCash, personEquity, working := person.IncomeAt(yearOffset)
		cash = cash.Add(personCash)
		equity = equity.Add(personEquity)
		if working {
			anyoneWorking = true
		}
		if age := person.AgeAt(yearOffset); age > oldestAge {
			oldestAge = age
		}
	}
	return cash, equity, anyoneWorking, oldestAge
}

// yearExpenses grows the base expenses over the year offset and adds any
// one-time expenses scheduled for the matching calendar year.
func yearExpenses(cfg *domain.ForecastConfig, yearOffset int) decimal.Decimal {
	growth := decimal.NewFromInt(1).Add(cfg.ExpenseGrowthRate).Pow(decimal.NewFromInt(int64(yearOffset)))
	expenses := cfg.AnnualExpenses.Mul(growth)

	currentYear := cfg.StartYear + yearOffset
	for _, ote := range cfg.OneTimeExpenses {
		if ote.Year == currentYear {
			expenses = expenses.Add(ote.Amount)
		}
	}
	return expenses
}

// deflate converts a nominal amount into start-year dollars.
func deflate(amount, inflationRate decimal.Decimal, yearOffset int) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(inflationRate).Pow(decimal.NewFromInt(int64(yearOffset)))
	return amount.Div(divisor)
}

// CalculateForecast simulates up to the configured horizon, one YearRecord per
// year, stopping early once total assets reach zero.
func (fe *ForecastEngine) CalculateForecast() []domain.YearRecord {
	cfg := fe.Config
	filingJointly := cfg.FilingJointly()
	records := make([]domain.YearRecord, 0, cfg.ForecastYears)

	for yr := 0; yr < cfg.ForecastYears; yr++ {
		currentYear := cfg.StartYear + yr

		cashIncome, equityVesting, anyoneWorking, oldestAge := householdIncome(cfg.People, yr)

		// Equity vesting is taxed exactly like wages.
		ordinaryIncome := cashIncome.Add(equityVesting)

		socialSecurity := decimal.Zero
		if oldestAge >= cfg.SocialSecurity.StartAge {
			socialSecurity = cfg.SocialSecurity.AnnualBenefit
			ordinaryIncome = ordinaryIncome.Add(socialSecurity)
		}

		expenses := yearExpenses(cfg, yr)

		assetsBeforeGrowth := fe.Portfolio.TotalBalance()
		fe.Portfolio.ApplyGrowth(cfg.InvestmentReturnRate)
		investmentGains := fe.Portfolio.TotalBalance().Sub(assetsBeforeGrowth)

		// Withdrawal-driven capital gains are priced separately below.
		totalTax, breakdown := fe.TaxCalc.TotalTax(ordinaryIncome, decimal.Zero, cfg.State, filingJointly, oldestAge, anyoneWorking)

		netIncome := ordinaryIncome.Sub(totalTax)
		cashFlow := netIncome.Add(cfg.AdditionalContributions).Sub(expenses)

		withdrawal := decimal.Zero
		withdrawalTax := decimal.Zero
		capitalGains := decimal.Zero

		if cashFlow.GreaterThan(decimal.Zero) {
			for at, pct := range fe.allocation {
				fe.Portfolio.Deposit(at, cashFlow.Mul(pct))
			}
		} else if cashFlow.LessThan(decimal.Zero) {
			amountNeeded := cashFlow.Neg()
			withdrawalsByAccount, tax := fe.Planner.ComputeWithdrawal(fe.Portfolio, amountNeeded, oldestAge, ordinaryIncome, filingJointly)
			withdrawalTax = tax

			// Snapshot the taxable account before applying withdrawals:
			// SetBalance clamps the cost basis down to the new balance, so a
			// draw into principal would otherwise inflate the gains ratio.
			taxableBalanceBefore := fe.Portfolio.Balance(domain.Taxable)
			taxableBasisBefore := fe.Portfolio.CostBasis(domain.Taxable)

			for at, amount := range withdrawalsByAccount {
				fe.Portfolio.SetBalance(at, fe.Portfolio.Balance(at).Sub(amount))
				withdrawal = withdrawal.Add(amount)
			}
			totalTax = totalTax.Add(withdrawalTax)

			// Realized gains for reporting, from the pre-withdrawal taxable
			// balance and cost basis.
			if taxableWithdrawal, ok := withdrawalsByAccount[domain.Taxable]; ok {
				if taxableBalanceBefore.GreaterThan(decimal.Zero) {
					gainsRatio := decimal.Max(decimal.Zero, taxableBalanceBefore.Sub(taxableBasisBefore).Div(taxableBalanceBefore))
					capitalGains = taxableWithdrawal.Mul(gainsRatio)
				}
			}

			fe.Logger.Debugf("year %d: shortfall %s funded by withdrawal %s (tax %s)",
				currentYear, amountNeeded.StringFixed(2), withdrawal.StringFixed(2), withdrawalTax.StringFixed(2))
		}

		assets := fe.Portfolio.TotalBalance()
		if assets.LessThan(decimal.Zero) {
			assets = decimal.Zero
		}

		records = append(records, domain.YearRecord{
			Year:            currentYear,
			Age:             oldestAge,
			Working:         anyoneWorking,
			CashIncome:      cashIncome,
			EquityVesting:   equityVesting,
			SocialSecurity:  socialSecurity,
			TotalIncome:     ordinaryIncome,
			Expenses:        expenses,
			Taxes:           breakdown,
			TotalTax:        totalTax,
			WithdrawalTax:   withdrawalTax,
			NetIncome:       netIncome,
			CashFlow:        cashFlow,
			InvestmentGains: investmentGains,
			CapitalGains:    capitalGains,
			Withdrawal:      withdrawal,
			AssetsNominal:   assets,
			AssetsReal:      deflate(assets, cfg.InflationRate, yr),
			RealExpenses:    deflate(expenses, cfg.InflationRate, yr),
			RealIncome:      deflate(ordinaryIncome, cfg.InflationRate, yr),
			AccountBalances: fe.Portfolio.Balances(),
		})

		if assets.LessThanOrEqual(decimal.Zero) {
			fe.Logger.Infof("assets depleted in %d at age %d", currentYear, oldestAge)
			break
		}
	}

	return records
}

// Summarize derives the headline metrics from a completed forecast.
func (fe *ForecastEngine) Summarize(records []domain.YearRecord) domain.SummaryMetrics {
	var summary domain.SummaryMetrics
	if len(records) == 0 {
		return summary
	}

	for i, rec := range records {
		if !rec.Working && summary.RetirementYear == nil {
			year := rec.Year
			assets := rec.AssetsNominal
			summary.RetirementYear = &year
			summary.RetirementAssets = &assets
		}
		if i == 0 || rec.AssetsNominal.GreaterThan(summary.PeakAssets) {
			summary.PeakAssets = rec.AssetsNominal
			summary.PeakYear = rec.Year
		}
		summary.TotalTaxesPaid = summary.TotalTaxesPaid.Add(rec.TotalTax)
		summary.TotalInvestmentGains = summary.TotalInvestmentGains.Add(rec.InvestmentGains)
	}

	final := records[len(records)-1]
	summary.FinalAssets = final.AssetsNominal
	summary.FinalYear = final.Year
	summary.FinalAge = final.Age
	summary.AssetsDepleted = final.AssetsNominal.LessThanOrEqual(decimal.Zero)
	if summary.AssetsDepleted {
		year := final.Year
		summary.DepletionYear = &year
	}

	return summary
}

// Run executes the forecast and returns the records with their summary.
func (fe *ForecastEngine) Run() *domain.ForecastResult {
	records := fe.CalculateForecast()
	return &domain.ForecastResult{
		Records: records,
		Summary: fe.Summarize(records),
	}
}
