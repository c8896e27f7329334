package models

import (
	"database/sql"
	"errors"
)

func strptr(s string) *string { return &s }

// SeedCatalog returns the fixed three-tier fund catalog used to bootstrap an
// empty stocks table. Prices are filled from the quote provider at seed time.
func SeedCatalog() []Stock {
	return []Stock{
		// Tier 1: Anchor Funds
		{
			Symbol:            "CLM",
			Name:              "Cornerstone Strategic Value Fund",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Mandatory Starting Position"),
			DividendYield:     17.88,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("A closed-end fund with high dividend yield, mandatory starting position"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "CRF",
			Name:              "Cornerstone Total Return Fund",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Mandatory Starting Position"),
			DividendYield:     19.55,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("A closed-end fund with high dividend yield, mandatory starting position"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "YYY",
			Name:              "Amplify High Income ETF",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     10.5,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("ETF that invests in closed-end funds"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "REM",
			Name:              "iShares Mortgage Real Estate ETF",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     9.8,
			DividendFrequency: FrequencyQuarterly,
			Description:       strptr("ETF focused on mortgage REITs"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "GOF",
			Name:              "Guggenheim Strategic Opportunities Fund",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     12.30,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Flexible strategy across fixed-income and equity securities"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "ECC",
			Name:              "Eagle Point Credit Company",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     15.40,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Invests primarily in equity and junior debt tranches of CLOs"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "USA",
			Name:              "Liberty All-Star Equity Fund",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     9.5,
			DividendFrequency: FrequencyQuarterly,
			Description:       strptr("Closed-end fund investing in US equities"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "GUT",
			Name:              "Gabelli Utility Trust",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     8.2,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Closed-end fund focusing on utility companies"),
			RiskLevel:         "Low",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "BXMT",
			Name:              "Blackstone Mortgage Trust",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     11.2,
			DividendFrequency: FrequencyQuarterly,
			Description:       strptr("REIT focusing on senior mortgage loans"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "PSEC",
			Name:              "Prospect Capital Corporation",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     12.80,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Business development company providing debt and equity capital"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "BCAT",
			Name:              "BlackRock Capital Allocation Trust",
			Tier:              1,
			TierCategory:      "Anchor Funds",
			SubCategory:       strptr("Other Anchor Funds"),
			DividendYield:     9.3,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Closed-end fund with flexible capital allocation strategy"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},

		// Tier 2: Index-Based Funds
		{
			Symbol:            "QQQY",
			Name:              "Defiance Nasdaq 100 Enhanced Options & 0DTE Income ETF",
			Tier:              2,
			TierCategory:      "Index-Based Funds",
			SubCategory:       strptr("Recommended Starting Position"),
			DividendYield:     90.06,
			DividendFrequency: FrequencyWeekly,
			Description:       strptr("Uses daily options on Nasdaq 100 for weekly income"),
			RiskLevel:         "High",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "WDTE",
			Name:              "Defiance S&P 500 Enhanced Options & 0DTE Income ETF",
			Tier:              2,
			TierCategory:      "Index-Based Funds",
			SubCategory:       strptr("Recommended Starting Position"),
			DividendYield:     65.00,
			DividendFrequency: FrequencyWeekly,
			Description:       strptr("Uses daily options on S&P 500 for weekly income"),
			RiskLevel:         "High",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "IWMY",
			Name:              "Defiance R2000 Enhanced Options & 0DTE Income ETF",
			Tier:              2,
			TierCategory:      "Index-Based Funds",
			SubCategory:       strptr("Recommended Starting Position"),
			DividendYield:     73.08,
			DividendFrequency: FrequencyWeekly,
			Description:       strptr("Uses daily options on Russell 2000 for weekly income"),
			RiskLevel:         "High",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "SPYT",
			Name:              "Defiance S&P 500 Enhanced Options Income ETF",
			Tier:              2,
			TierCategory:      "Index-Based Funds",
			SubCategory:       strptr("Other Tier 2 Funds"),
			DividendYield:     20.02,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Lower yield with less price erosion than higher-tier options"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "QQQT",
			Name:              "Defiance Nasdaq-100 Enhanced Options Income ETF",
			Tier:              2,
			TierCategory:      "Index-Based Funds",
			SubCategory:       strptr("Other Tier 2 Funds"),
			DividendYield:     20.02,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Lower yield with less price erosion than higher-tier options"),
			RiskLevel:         "Moderate",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "USOY",
			Name:              "United States Oil ETF Options Income ETF",
			Tier:              2,
			TierCategory:      "Index-Based Funds",
			SubCategory:       strptr("Other Tier 2 Funds"),
			DividendYield:     25.5,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Options income strategy based on oil ETFs"),
			RiskLevel:         "High",
			Currency:          CurrencyUSD,
		},

		// Tier 3: High-Yield Funds
		{
			Symbol:            "YMAX",
			Name:              "YieldMax Universe Fund of Option Income ETFs",
			Tier:              3,
			TierCategory:      "High-Yield Funds",
			DividendYield:     68.44,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("A fund of funds that invests in multiple YieldMax option income ETFs"),
			RiskLevel:         "High",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "YMAG",
			Name:              "YieldMax Magnificent 7 Fund of Option Income ETFs",
			Tier:              3,
			TierCategory:      "High-Yield Funds",
			DividendYield:     38.65,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Focuses on option income from the Magnificent 7 tech stocks"),
			RiskLevel:         "High",
			Currency:          CurrencyUSD,
		},
		{
			Symbol:            "ULTY",
			Name:              "YieldMax Ultra Income ETF",
			Tier:              3,
			TierCategory:      "High-Yield Funds",
			DividendYield:     77.62,
			DividendFrequency: FrequencyMonthly,
			Description:       strptr("Actively managed ETF seeking monthly income from covered call strategies"),
			RiskLevel:         "Very High",
			Currency:          CurrencyUSD,
		},
	}
}

// SupplementalCatalog is the second wave of stocks added to the universe
// after the initial three-tier seed. Prices here are bootstrap values; the
// quote refresh endpoints overwrite them.
func SupplementalCatalog() []Stock {
	rows := []struct {
		symbol    string
		name      string
		tier      int
		category  string
		yield     float64
		frequency string
		price     float64
		risk      string
	}{
		{"TSPY", "T. Rowe Price Dividend Growth ETF", 2, "Index-Based Funds", 18.5, FrequencyMonthly, 25.75, "Moderate"},
		{"SPYI", "NEOS S&P 500 High Income ETF", 2, "Index-Based Funds", 22.3, FrequencyMonthly, 48.92, "Moderate"},
		{"QQQI", "NEOS Nasdaq 100 High Income ETF", 2, "Index-Based Funds", 24.1, FrequencyMonthly, 51.35, "Moderate"},
		{"XPAY", "NEOS Enhanced Income Aggregate Bond ETF", 1, "Anchor Funds", 9.8, FrequencyMonthly, 45.67, "Low"},
		{"IWMI", "iShares Russell 2000 ETF", 2, "Index-Based Funds", 19.5, FrequencyQuarterly, 38.45, "Moderate"},
		{"IYRI", "iShares ESG Screened S&P 500 ETF", 1, "Anchor Funds", 8.7, FrequencyQuarterly, 42.18, "Low"},
		{"GIAX", "Goldman Sachs MarketBeta US Equity ETF", 1, "Anchor Funds", 7.9, FrequencyQuarterly, 65.32, "Low"},
		{"EIC", "Eagle Point Income Company", 1, "Anchor Funds", 14.2, FrequencyMonthly, 16.75, "Moderate"},
		{"RDTE", "Roundhill Daily Russell 2000 ETF", 2, "Index-Based Funds", 35.8, FrequencyWeekly, 22.45, "High"},
		{"GOOGL", "Alphabet Inc.", 1, "Anchor Funds", 0, FrequencyNone, 175.85, "Moderate"},
		{"AMZN", "Amazon.com Inc.", 1, "Anchor Funds", 0, FrequencyNone, 185.07, "Moderate"},
		{"SCHG", "Schwab U.S. Large-Cap Growth ETF", 1, "Anchor Funds", 0.5, FrequencyQuarterly, 92.35, "Low"},
		{"PLTY", "YieldMax PLTR Option Income Strategy ETF", 3, "High-Yield Funds", 45.2, FrequencyMonthly, 18.65, "High"},
		{"MSTY", "YieldMax MSFT Option Income Strategy ETF", 3, "High-Yield Funds", 42.8, FrequencyMonthly, 19.25, "High"},
		{"TSYY", "YieldMax TSLA Option Income Strategy ETF", 3, "High-Yield Funds", 48.5, FrequencyMonthly, 15.85, "Very High"},
		{"AIPI", "YieldMax AI Option Income Strategy ETF", 3, "High-Yield Funds", 52.3, FrequencyMonthly, 17.45, "Very High"},
		{"HOOD", "Robinhood Markets, Inc.", 1, "Anchor Funds", 0, FrequencyNone, 22.85, "High"},
		{"HIMS", "Hims & Hers Health, Inc.", 1, "Anchor Funds", 0, FrequencyNone, 18.95, "High"},
		{"S", "SentinelOne, Inc.", 1, "Anchor Funds", 0, FrequencyNone, 23.15, "High"},
		{"NFLP", "YieldMax NFLX Option Income Strategy ETF", 3, "High-Yield Funds", 44.7, FrequencyMonthly, 16.85, "High"},
		{"SVOL", "Simplify Volatility Premium ETF", 2, "Index-Based Funds", 28.5, FrequencyMonthly, 24.35, "High"},
		{"NBIS", "Neuberger Berman Income Strategy ETF", 1, "Anchor Funds", 9.8, FrequencyMonthly, 26.75, "Moderate"},
		{"BX", "Blackstone Inc.", 1, "Anchor Funds", 3.2, FrequencyQuarterly, 125.45, "Moderate"},
		{"AMDL", "YieldMax AMD Option Income Strategy ETF", 3, "High-Yield Funds", 46.8, FrequencyMonthly, 17.25, "High"},
		{"UPRO", "ProShares UltraPro S&P 500 ETF", 2, "Index-Based Funds", 0.5, FrequencyQuarterly, 68.95, "Very High"},
		{"MSTU", "YieldMax MSFT Option Income Strategy ETF", 3, "High-Yield Funds", 43.5, FrequencyMonthly, 18.75, "High"},
		{"XYZY", "YieldMax XYZ Option Income Strategy ETF", 3, "High-Yield Funds", 47.2, FrequencyMonthly, 16.35, "High"},
	}

	stocks := make([]Stock, 0, len(rows))
	for _, r := range rows {
		stocks = append(stocks, Stock{
			Symbol:            r.symbol,
			Name:              r.name,
			Tier:              r.tier,
			TierCategory:      r.category,
			CurrentPrice:      r.price,
			Currency:          CurrencyUSD,
			DividendYield:     r.yield,
			DividendFrequency: r.frequency,
			RiskLevel:         r.risk,
		})
	}
	return stocks
}

// SeedSupplementalStocks inserts the supplemental catalog once. GOOGL serves
// as the sentinel: when it is already present the whole wave is assumed
// seeded and nothing is written.
func SeedSupplementalStocks(db *sql.DB) (int, error) {
	if _, err := GetStockBySymbol(db, "GOOGL"); err == nil {
		return 0, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	inserted := 0
	for _, s := range SupplementalCatalog() {
		stock := s
		if err := InsertStock(db, &stock); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
