package processors

import (
	"time"

	"github.com/username/divitrack/backend/src/models"
)

// ForecastContribution is one holding's expected payment inside a month.
type ForecastContribution struct {
	Stock            string  `json:"stock"`
	Name             string  `json:"name"`
	Shares           float64 `json:"shares"`
	DividendPerShare float64 `json:"dividendPerShare"`
	TotalAmount      float64 `json:"totalAmount"`
	Currency         string  `json:"currency"`
	AmountUSD        float64 `json:"amountUSD"`
	AmountHKD        float64 `json:"amountHKD"`
}

// ForecastMonth is one projected month of dividend income.
type ForecastMonth struct {
	Month        int                    `json:"month"`
	MonthName    string                 `json:"monthName"`
	Year         int                    `json:"year"`
	TotalUSD     float64                `json:"totalUSD"`
	TotalHKD     float64                `json:"totalHKD"`
	Dividends    []ForecastContribution `json:"dividends"`
	DisplayTotal float64                `json:"displayTotal"`
	Currency     string                 `json:"currency"`
}

// ForecastReport projects expected dividend income over the coming months
// from current holdings and each stock's declared payment frequency.
type ForecastReport struct {
	Months        int             `json:"months"`
	Currency      string          `json:"currency"`
	ExchangeRate  float64         `json:"exchangeRate"`
	Forecast      []ForecastMonth `json:"forecast"`
	TotalForecast float64         `json:"totalForecast"`
}

// paysInMonth reports whether a stock with the given frequency is expected to
// pay in the 1-based calendar month. Quarterly payers land on 3/6/9/12,
// semi-annual on 6/12, annual on 12.
func paysInMonth(frequency string, month int) bool {
	switch frequency {
	case models.FrequencyMonthly, models.FrequencyWeekly:
		return true
	case models.FrequencyQuarterly:
		return month%3 == 0
	case models.FrequencySemiAnnual:
		return month == 6 || month == 12
	case models.FrequencyAnnual:
		return month == 12
	}
	return false
}

// paymentsPerYear is the divisor turning an annual per-share dividend into a
// single payment. Weekly payers are approximated as monthly payments at four
// times the yield, so they divide by 12 like monthly payers.
func paymentsPerYear(frequency string) float64 {
	switch frequency {
	case models.FrequencyMonthly, models.FrequencyWeekly:
		return 12
	case models.FrequencyQuarterly:
		return 4
	case models.FrequencySemiAnnual:
		return 2
	case models.FrequencyAnnual:
		return 1
	}
	return 0
}

// Forecast projects the next `months` months of dividend income starting at
// `now`. Holdings whose stock declares no yield are skipped. The weekly
// 4x-yield scaling is applied as a derived value per holding, never by
// mutating the stock record.
func Forecast(holdings []models.HoldingWithStock, months int, currency string, usdToHkd float64, now time.Time) ForecastReport {
	report := ForecastReport{
		Months:       months,
		Currency:     currency,
		ExchangeRate: usdToHkd,
	}

	for i := 0; i < months; i++ {
		monthIdx := (int(now.Month()) - 1 + i) % 12
		year := now.Year() + (int(now.Month())-1+i)/12

		fm := ForecastMonth{
			Month:     monthIdx + 1,
			MonthName: monthNames[monthIdx],
			Year:      year,
			Currency:  currency,
			Dividends: []ForecastContribution{},
		}

		for _, h := range holdings {
			stock := h.Stock
			if stock.DividendYield == 0 {
				continue
			}
			if !paysInMonth(stock.DividendFrequency, fm.Month) {
				continue
			}
			perYear := paymentsPerYear(stock.DividendFrequency)
			if perYear == 0 {
				continue
			}

			effectiveYield := stock.DividendYield
			if stock.DividendFrequency == models.FrequencyWeekly {
				// Approximate four weekly payments per month.
				effectiveYield *= 4
			}

			annualPerShare := stock.CurrentPrice * effectiveYield / 100
			perShare := annualPerShare / perYear
			totalAmount := perShare * h.Shares

			amountUSD := totalAmount
			amountHKD := totalAmount * usdToHkd
			if stock.Currency == models.CurrencyHKD {
				amountUSD = totalAmount / usdToHkd
				amountHKD = totalAmount
			}

			fm.TotalUSD += amountUSD
			fm.TotalHKD += amountHKD
			fm.Dividends = append(fm.Dividends, ForecastContribution{
				Stock:            stock.Symbol,
				Name:             stock.Name,
				Shares:           h.Shares,
				DividendPerShare: perShare,
				TotalAmount:      totalAmount,
				Currency:         stock.Currency,
				AmountUSD:        amountUSD,
				AmountHKD:        amountHKD,
			})
		}

		fm.DisplayTotal = displayTotal(fm.TotalUSD, fm.TotalHKD, currency)
		report.TotalForecast += fm.DisplayTotal
		report.Forecast = append(report.Forecast, fm)
	}
	return report
}
