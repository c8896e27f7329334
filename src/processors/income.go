// Package processors holds the portfolio computations: dividend income
// rollups, the forward dividend forecast and rebalancing recommendations.
// Everything here is pure arithmetic over already-loaded records; fetching
// and persisting stay in the handlers and stores.
package processors

import (
	"fmt"

	"github.com/username/divitrack/backend/src/models"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthlyIncomeRow is one month's bucket of the yearly income report.
type MonthlyIncomeRow struct {
	Month         string  `json:"month"`
	MonthNumber   int     `json:"monthNumber"`
	TotalUSD      float64 `json:"totalUSD"`
	TotalHKD      float64 `json:"totalHKD"`
	DividendCount int     `json:"dividendCount"`
	DisplayTotal  float64 `json:"displayTotal"`
	Currency      string  `json:"currency"`
}

// MonthlyIncomeReport is the full monthly rollup for one calendar year.
type MonthlyIncomeReport struct {
	Year          int                `json:"year"`
	Currency      string             `json:"currency"`
	ExchangeRate  float64            `json:"exchangeRate"`
	MonthlyIncome []MonthlyIncomeRow `json:"monthlyIncome"`
	YearlyTotal   float64            `json:"yearlyTotal"`
}

// addConverted accumulates a dividend amount into both currency totals.
// A USD amount contributes to the HKD total multiplied by the USD→HKD rate;
// an HKD amount contributes to the USD total divided by the same rate. The
// inverse rate is never looked up on its own.
func addConverted(totalUSD, totalHKD *float64, amount float64, currency string, usdToHkd float64) {
	if currency == models.CurrencyUSD {
		*totalUSD += amount
		*totalHKD += amount * usdToHkd
	} else {
		*totalHKD += amount
		*totalUSD += amount / usdToHkd
	}
}

func displayTotal(totalUSD, totalHKD float64, currency string) float64 {
	if currency == models.CurrencyUSD {
		return totalUSD
	}
	return totalHKD
}

// MonthlyIncome buckets a year's dividends by payment month. The dividends
// slice is expected to already be restricted to the target year; records
// outside it are ignored.
func MonthlyIncome(dividends []models.Dividend, year int, currency string, usdToHkd float64) MonthlyIncomeReport {
	report := MonthlyIncomeReport{
		Year:          year,
		Currency:      currency,
		ExchangeRate:  usdToHkd,
		MonthlyIncome: make([]MonthlyIncomeRow, 12),
	}

	for i := range report.MonthlyIncome {
		report.MonthlyIncome[i].Month = monthNames[i]
		report.MonthlyIncome[i].MonthNumber = i + 1
		report.MonthlyIncome[i].Currency = currency
	}

	for _, d := range dividends {
		if d.PaymentDate.Year() != year {
			continue
		}
		row := &report.MonthlyIncome[int(d.PaymentDate.Month())-1]
		addConverted(&row.TotalUSD, &row.TotalHKD, d.TotalAmount, d.Currency, usdToHkd)
		row.DividendCount++
	}

	for i := range report.MonthlyIncome {
		row := &report.MonthlyIncome[i]
		row.DisplayTotal = displayTotal(row.TotalUSD, row.TotalHKD, currency)
		report.YearlyTotal += row.DisplayTotal
	}
	return report
}

// YearlyIncomeRow is one calendar year's totals.
type YearlyIncomeRow struct {
	Year          int     `json:"year"`
	TotalUSD      float64 `json:"totalUSD"`
	TotalHKD      float64 `json:"totalHKD"`
	DividendCount int     `json:"dividendCount"`
	DisplayTotal  float64 `json:"displayTotal"`
	Currency      string  `json:"currency"`
}

// YearlyIncomeReport covers an inclusive range of years plus a grand total.
type YearlyIncomeReport struct {
	StartYear    int               `json:"startYear"`
	EndYear      int               `json:"endYear"`
	Currency     string            `json:"currency"`
	ExchangeRate float64           `json:"exchangeRate"`
	YearlyIncome []YearlyIncomeRow `json:"yearlyIncome"`
	GrandTotal   float64           `json:"grandTotal"`
}

// YearlyIncome rolls dividends up per calendar year across [startYear,
// endYear]. It fails when the range is inverted.
func YearlyIncome(dividends []models.Dividend, startYear, endYear int, currency string, usdToHkd float64) (*YearlyIncomeReport, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("start year must be less than or equal to end year")
	}

	report := &YearlyIncomeReport{
		StartYear:    startYear,
		EndYear:      endYear,
		Currency:     currency,
		ExchangeRate: usdToHkd,
	}

	for year := startYear; year <= endYear; year++ {
		row := YearlyIncomeRow{Year: year, Currency: currency}
		for _, d := range dividends {
			if d.PaymentDate.Year() != year {
				continue
			}
			addConverted(&row.TotalUSD, &row.TotalHKD, d.TotalAmount, d.Currency, usdToHkd)
			row.DividendCount++
		}
		row.DisplayTotal = displayTotal(row.TotalUSD, row.TotalHKD, currency)
		report.GrandTotal += row.DisplayTotal
		report.YearlyIncome = append(report.YearlyIncome, row)
	}
	return report, nil
}
