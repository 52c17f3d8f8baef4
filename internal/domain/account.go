package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType identifies an investment account's tax treatment. The set is
// closed: contributions and withdrawals are priced differently per type, so an
// unrecognized type is a configuration error, never a fallback.
type AccountType string

const (
	Traditional401k AccountType = "traditional_401k"
	TraditionalIRA  AccountType = "traditional_ira"
	Roth401k        AccountType = "roth_401k"
	RothIRA         AccountType = "roth_ira"
	Taxable         AccountType = "taxable"
	HSA             AccountType = "hsa"
)

// AllAccountTypes lists every valid account type.
var AllAccountTypes = []AccountType{
	Traditional401k,
	TraditionalIRA,
	Roth401k,
	RothIRA,
	Taxable,
	HSA,
}

// ParseAccountType converts a configuration string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	for _, at := range AllAccountTypes {
		if string(at) == s {
			return at, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// IsTraditional reports whether withdrawals from the account are taxed as
// ordinary income.
func (at AccountType) IsTraditional() bool {
	return at == Traditional401k || at == TraditionalIRA
}

// IsTaxFree reports whether withdrawals from the account carry no tax at all.
func (at AccountType) IsTaxFree() bool {
	return at == Roth401k || at == RothIRA || at == HSA
}

// AccountBalance holds the balance and cost basis for one account type.
// Cost basis tracks contributed principal in a taxable account; for
// tax-advantaged accounts it is kept equal to the balance and carries no
// meaning. Invariant: 0 <= CostBasis <= Balance.
type AccountBalance struct {
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	CostBasis decimal.Decimal `json:"cost_basis"`
}

// Portfolio holds at most one AccountBalance per account type. A Portfolio is
// owned by a single forecast run and mutated in place year over year; it must
// not be shared across concurrent runs.
type Portfolio struct {
	accounts map[AccountType]*AccountBalance
}

// NewPortfolio creates an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{accounts: make(map[AccountType]*AccountBalance)}
}

// AddOrReplace sets the balance and cost basis for an account type, creating
// the entry if needed. The cost basis is clamped to [0, balance].
func (p *Portfolio) AddOrReplace(at AccountType, balance, costBasis decimal.Decimal) {
	if balance.LessThan(decimal.Zero) {
		balance = decimal.Zero
	}
	p.accounts[at] = &AccountBalance{
		Type:      at,
		Balance:   balance,
		CostBasis: clampBasis(costBasis, balance),
	}
}

// AddOrReplaceWithDefaultBasis sets the balance with cost basis equal to the
// balance (no unrealized gain).
func (p *Portfolio) AddOrReplaceWithDefaultBasis(at AccountType, balance decimal.Decimal) {
	p.AddOrReplace(at, balance, balance)
}

// Balance returns the balance for an account type, zero if absent.
func (p *Portfolio) Balance(at AccountType) decimal.Decimal {
	if acc, ok := p.accounts[at]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

// CostBasis returns the cost basis for an account type, zero if absent.
func (p *Portfolio) CostBasis(at AccountType) decimal.Decimal {
	if acc, ok := p.accounts[at]; ok {
		return acc.CostBasis
	}
	return decimal.Zero
}

// TotalBalance returns the sum of all account balances.
func (p *Portfolio) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, acc := range p.accounts {
		total = total.Add(acc.Balance)
	}
	return total
}

// SetBalance updates an account's balance, clamping at zero. The cost basis is
// left untouched beyond re-clamping to the new balance. No-op if the account
// type is absent.
func (p *Portfolio) SetBalance(at AccountType, newBalance decimal.Decimal) {
	acc, ok := p.accounts[at]
	if !ok {
		return
	}
	if newBalance.LessThan(decimal.Zero) {
		newBalance = decimal.Zero
	}
	acc.Balance = newBalance
	acc.CostBasis = clampBasis(acc.CostBasis, acc.Balance)
}

// SetCostBasis updates an account's cost basis, clamped to [0, balance].
// No-op if the account type is absent.
func (p *Portfolio) SetCostBasis(at AccountType, newBasis decimal.Decimal) {
	acc, ok := p.accounts[at]
	if !ok {
		return
	}
	acc.CostBasis = clampBasis(newBasis, acc.Balance)
}

// ApplyGrowth multiplies every balance by (1 + rate). Cost basis is unchanged:
// growth is unrealized gain, not contributed principal.
func (p *Portfolio) ApplyGrowth(rate decimal.Decimal) {
	factor := decimal.NewFromInt(1).Add(rate)
	for _, acc := range p.accounts {
		acc.Balance = acc.Balance.Mul(factor)
		if acc.Balance.LessThan(decimal.Zero) {
			acc.Balance = decimal.Zero
		}
		acc.CostBasis = clampBasis(acc.CostBasis, acc.Balance)
	}
}

// Deposit adds new money to an account, creating it if absent. Deposits are
// principal, so balance and cost basis both increase. Amounts <= 0 are ignored.
func (p *Portfolio) Deposit(at AccountType, amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	acc, ok := p.accounts[at]
	if !ok {
		p.AddOrReplace(at, decimal.Zero, decimal.Zero)
		acc = p.accounts[at]
	}
	acc.Balance = acc.Balance.Add(amount)
	acc.CostBasis = clampBasis(acc.CostBasis.Add(amount), acc.Balance)
}

// Types returns the account types currently present, in the canonical order.
func (p *Portfolio) Types() []AccountType {
	var present []AccountType
	for _, at := range AllAccountTypes {
		if _, ok := p.accounts[at]; ok {
			present = append(present, at)
		}
	}
	return present
}

// Balances returns a snapshot of every account balance keyed by type.
func (p *Portfolio) Balances() map[AccountType]decimal.Decimal {
	out := make(map[AccountType]decimal.Decimal, len(p.accounts))
	for at, acc := range p.accounts {
		out[at] = acc.Balance
	}
	return out
}

func clampBasis(basis, balance decimal.Decimal) decimal.Decimal {
	if basis.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if basis.GreaterThan(balance) {
		return balance
	}
	return basis
}
