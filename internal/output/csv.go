package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/fincast/retirement-forecast/internal/domain"
)

// CSVFormatter writes the year-by-year forecast as a flat table, one row per
// simulated year, with per-account ending balances as trailing columns.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.ForecastResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"Year", "Age", "Working",
		"CashIncome", "EquityVesting", "SocialSecurity", "TotalIncome",
		"Expenses", "FederalTax", "CapitalGainsTax", "StateTax", "FICATax",
		"TotalTax", "WithdrawalTax", "NetIncome", "CashFlow",
		"InvestmentGains", "CapitalGains", "Withdrawal",
		"AssetsNominal", "AssetsReal", "RealExpenses", "RealIncome",
	}
	for _, at := range domain.AllAccountTypes {
		header = append(header, string(at))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, rec := range result.Records {
		row := []string{
			strconv.Itoa(rec.Year),
			strconv.Itoa(rec.Age),
			strconv.FormatBool(rec.Working),
			rec.CashIncome.StringFixed(2),
			rec.EquityVesting.StringFixed(2),
			rec.SocialSecurity.StringFixed(2),
			rec.TotalIncome.StringFixed(2),
			rec.Expenses.StringFixed(2),
			rec.Taxes.FederalIncome.StringFixed(2),
			rec.Taxes.CapitalGains.StringFixed(2),
			rec.Taxes.State.StringFixed(2),
			rec.Taxes.FICA.StringFixed(2),
			rec.TotalTax.StringFixed(2),
			rec.WithdrawalTax.StringFixed(2),
			rec.NetIncome.StringFixed(2),
			rec.CashFlow.StringFixed(2),
			rec.InvestmentGains.StringFixed(2),
			rec.CapitalGains.StringFixed(2),
			rec.Withdrawal.StringFixed(2),
			rec.AssetsNominal.StringFixed(2),
			rec.AssetsReal.StringFixed(2),
			rec.RealExpenses.StringFixed(2),
			rec.RealIncome.StringFixed(2),
		}
		for _, at := range domain.AllAccountTypes {
			row = append(row, rec.AccountBalances[at].StringFixed(2))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
