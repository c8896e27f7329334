package processors

import (
	"testing"
	"time"

	"github.com/username/divitrack/backend/src/models"
)

func holdingFor(symbol string, shares, price, yield float64, frequency, currency string) models.HoldingWithStock {
	return models.HoldingWithStock{
		Holding: models.Holding{Shares: shares},
		Stock: models.Stock{
			Symbol:            symbol,
			Name:              symbol,
			CurrentPrice:      price,
			DividendYield:     yield,
			DividendFrequency: frequency,
			Currency:          currency,
		},
	}
}

func TestForecastQuarterlyPaysOnQuarterMonths(t *testing.T) {
	holdings := []models.HoldingWithStock{
		holdingFor("GUT", 100, 10, 8, models.FrequencyQuarterly, models.CurrencyUSD),
	}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	report := Forecast(holdings, 12, models.CurrencyUSD, 7.8, start)

	if len(report.Forecast) != 12 {
		t.Fatalf("expected 12 months, got %d", len(report.Forecast))
	}
	for _, fm := range report.Forecast {
		paying := len(fm.Dividends) > 0
		wantPaying := fm.Month%3 == 0
		if paying != wantPaying {
			t.Errorf("month %d: paying=%v, want %v", fm.Month, paying, wantPaying)
		}
	}
	// 10 * 8% / 4 payments = 0.20 per share, 100 shares, 4 quarters.
	if !approxEqual(report.TotalForecast, 0.20*100*4) {
		t.Errorf("total forecast: got %v, want 80", report.TotalForecast)
	}
}

func TestForecastWeeklyScalesYieldWithoutMutatingStock(t *testing.T) {
	holdings := []models.HoldingWithStock{
		holdingFor("YMAX", 50, 20, 30, models.FrequencyWeekly, models.CurrencyUSD),
	}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	report := Forecast(holdings, 2, models.CurrencyUSD, 7.8, start)

	// Weekly ~ four monthly-sized payments: 20 * (30*4)% / 12 = 2.00 per share.
	want := 2.0 * 50
	for _, fm := range report.Forecast {
		if len(fm.Dividends) != 1 {
			t.Fatalf("month %d: expected one contribution, got %d", fm.Month, len(fm.Dividends))
		}
		if !approxEqual(fm.Dividends[0].TotalAmount, want) {
			t.Errorf("month %d: got %v, want %v", fm.Month, fm.Dividends[0].TotalAmount, want)
		}
	}
	if holdings[0].Stock.DividendYield != 30 {
		t.Errorf("stock yield mutated to %v", holdings[0].Stock.DividendYield)
	}

	// The scaling must not compound across repeated runs.
	again := Forecast(holdings, 2, models.CurrencyUSD, 7.8, start)
	if !approxEqual(again.TotalForecast, report.TotalForecast) {
		t.Errorf("second run drifted: %v vs %v", again.TotalForecast, report.TotalForecast)
	}
}

func TestForecastSkipsZeroYieldHoldings(t *testing.T) {
	holdings := []models.HoldingWithStock{
		holdingFor("BXMT", 100, 15, 0, models.FrequencyQuarterly, models.CurrencyUSD),
	}
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	report := Forecast(holdings, 1, models.CurrencyUSD, 7.8, start)
	if len(report.Forecast[0].Dividends) != 0 {
		t.Errorf("zero-yield holding must not contribute")
	}
	if !approxEqual(report.TotalForecast, 0) {
		t.Errorf("total: got %v, want 0", report.TotalForecast)
	}
}

func TestForecastRollsOverYearBoundary(t *testing.T) {
	start := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC)
	report := Forecast(nil, 4, models.CurrencyUSD, 7.8, start)

	wantMonths := []struct {
		month int
		year  int
	}{{11, 2025}, {12, 2025}, {1, 2026}, {2, 2026}}
	for i, want := range wantMonths {
		fm := report.Forecast[i]
		if fm.Month != want.month || fm.Year != want.year {
			t.Errorf("slot %d: got %d/%d, want %d/%d", i, fm.Month, fm.Year, want.month, want.year)
		}
	}
}

func TestForecastSemiAnnualAndAnnualMonths(t *testing.T) {
	cases := []struct {
		frequency string
		months    []int
	}{
		{models.FrequencySemiAnnual, []int{6, 12}},
		{models.FrequencyAnnual, []int{12}},
	}

	for _, tc := range cases {
		holdings := []models.HoldingWithStock{
			holdingFor("X", 10, 100, 5, tc.frequency, models.CurrencyUSD),
		}
		start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		report := Forecast(holdings, 12, models.CurrencyUSD, 7.8, start)

		var got []int
		for _, fm := range report.Forecast {
			if len(fm.Dividends) > 0 {
				got = append(got, fm.Month)
			}
		}
		if len(got) != len(tc.months) {
			t.Errorf("%s: paying months %v, want %v", tc.frequency, got, tc.months)
			continue
		}
		for i := range got {
			if got[i] != tc.months[i] {
				t.Errorf("%s: paying months %v, want %v", tc.frequency, got, tc.months)
			}
		}
	}
}

func TestForecastConvertsHkdHoldings(t *testing.T) {
	usdToHkd := 7.8
	holdings := []models.HoldingWithStock{
		holdingFor("0005.HK", 100, 78, 6, models.FrequencyMonthly, models.CurrencyHKD),
	}
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	report := Forecast(holdings, 1, models.CurrencyUSD, usdToHkd, start)
	fm := report.Forecast[0]
	if len(fm.Dividends) != 1 {
		t.Fatalf("expected one contribution, got %d", len(fm.Dividends))
	}
	c := fm.Dividends[0]
	if !approxEqual(c.AmountHKD, c.TotalAmount) {
		t.Errorf("HKD amount should equal the native total, got %v vs %v", c.AmountHKD, c.TotalAmount)
	}
	if !approxEqual(c.AmountUSD, c.TotalAmount/usdToHkd) {
		t.Errorf("USD amount: got %v, want %v", c.AmountUSD, c.TotalAmount/usdToHkd)
	}
	if !approxEqual(fm.DisplayTotal, fm.TotalUSD) {
		t.Errorf("display total should follow the requested currency")
	}
}
