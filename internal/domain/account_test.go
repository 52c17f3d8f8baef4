package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountType(t *testing.T) {
	for _, at := range AllAccountTypes {
		parsed, err := ParseAccountType(string(at))
		require.NoError(t, err)
		assert.Equal(t, at, parsed)
	}

	_, err := ParseAccountType("checking")
	assert.Error(t, err)
}

func TestPortfolioBalanceQueries(t *testing.T) {
	p := NewPortfolio()

	// Absent types yield zero, not an error.
	assert.True(t, p.Balance(Taxable).IsZero())
	assert.True(t, p.CostBasis(Taxable).IsZero())
	assert.True(t, p.TotalBalance().IsZero())

	p.AddOrReplace(Taxable, decimal.NewFromInt(100000), decimal.NewFromInt(80000))
	p.AddOrReplaceWithDefaultBasis(Roth401k, decimal.NewFromInt(50000))

	assert.True(t, p.Balance(Taxable).Equal(decimal.NewFromInt(100000)))
	assert.True(t, p.CostBasis(Taxable).Equal(decimal.NewFromInt(80000)))
	assert.True(t, p.CostBasis(Roth401k).Equal(decimal.NewFromInt(50000)))
	assert.True(t, p.TotalBalance().Equal(decimal.NewFromInt(150000)))
}

func TestPortfolioCostBasisClamping(t *testing.T) {
	p := NewPortfolio()

	// Basis above balance clamps down.
	p.AddOrReplace(Taxable, decimal.NewFromInt(1000), decimal.NewFromInt(5000))
	assert.True(t, p.CostBasis(Taxable).Equal(decimal.NewFromInt(1000)))

	// Negative basis clamps to zero.
	p.SetCostBasis(Taxable, decimal.NewFromInt(-10))
	assert.True(t, p.CostBasis(Taxable).IsZero())

	// Shrinking the balance drags the basis down with it.
	p.SetCostBasis(Taxable, decimal.NewFromInt(900))
	p.SetBalance(Taxable, decimal.NewFromInt(500))
	assert.True(t, p.CostBasis(Taxable).Equal(decimal.NewFromInt(500)))
}

func TestPortfolioSetBalance(t *testing.T) {
	p := NewPortfolio()

	// No-op on an absent type.
	p.SetBalance(HSA, decimal.NewFromInt(1000))
	assert.True(t, p.Balance(HSA).IsZero())

	p.AddOrReplaceWithDefaultBasis(HSA, decimal.NewFromInt(2000))
	p.SetBalance(HSA, decimal.NewFromInt(-500))
	assert.True(t, p.Balance(HSA).IsZero(), "negative balances clamp to zero")
}

func TestPortfolioApplyGrowth(t *testing.T) {
	p := NewPortfolio()
	p.AddOrReplace(Taxable, decimal.NewFromInt(100000), decimal.NewFromInt(80000))
	p.AddOrReplaceWithDefaultBasis(Traditional401k, decimal.NewFromInt(50000))

	p.ApplyGrowth(decimal.NewFromFloat(0.08))

	assert.True(t, p.Balance(Taxable).Equal(decimal.NewFromInt(108000)))
	assert.True(t, p.Balance(Traditional401k).Equal(decimal.NewFromInt(54000)))
	// Growth is unrealized gain: cost basis must not move.
	assert.True(t, p.CostBasis(Taxable).Equal(decimal.NewFromInt(80000)))
}

func TestPortfolioDeposit(t *testing.T) {
	p := NewPortfolio()

	// Non-positive deposits are ignored.
	p.Deposit(Taxable, decimal.Zero)
	p.Deposit(Taxable, decimal.NewFromInt(-100))
	assert.True(t, p.TotalBalance().IsZero())

	// A deposit creates the account and counts as principal.
	p.Deposit(RothIRA, decimal.NewFromInt(7000))
	assert.True(t, p.Balance(RothIRA).Equal(decimal.NewFromInt(7000)))
	assert.True(t, p.CostBasis(RothIRA).Equal(decimal.NewFromInt(7000)))

	p.Deposit(RothIRA, decimal.NewFromInt(3000))
	assert.True(t, p.Balance(RothIRA).Equal(decimal.NewFromInt(10000)))
}

// TestPortfolioInvariantsUnderRandomOps hammers a portfolio with arbitrary
// operation sequences and checks the non-negativity invariants after each.
func TestPortfolioInvariantsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := NewPortfolio()

	checkInvariants := func() {
		for _, at := range AllAccountTypes {
			balance := p.Balance(at)
			basis := p.CostBasis(at)
			require.True(t, balance.GreaterThanOrEqual(decimal.Zero), "balance for %s went negative", at)
			require.True(t, basis.GreaterThanOrEqual(decimal.Zero), "basis for %s went negative", at)
			require.True(t, basis.LessThanOrEqual(balance), "basis for %s exceeds balance", at)
		}
	}

	for i := 0; i < 2000; i++ {
		at := AllAccountTypes[rng.Intn(len(AllAccountTypes))]
		amount := decimal.NewFromFloat(rng.Float64()*20000 - 5000)

		switch rng.Intn(5) {
		case 0:
			p.Deposit(at, amount)
		case 1:
			p.SetBalance(at, amount)
		case 2:
			p.SetCostBasis(at, amount)
		case 3:
			p.AddOrReplace(at, amount, amount.Mul(decimal.NewFromFloat(rng.Float64()*2)))
		case 4:
			p.ApplyGrowth(decimal.NewFromFloat(rng.Float64()*0.3 - 0.1))
		}
		checkInvariants()
	}
}
