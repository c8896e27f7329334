package models

// The tracker only deals in the two currencies the portfolio is funded in.
const (
	CurrencyUSD = "USD"
	CurrencyHKD = "HKD"
)

// IsSupportedCurrency reports whether c is one of the currencies the system accepts.
func IsSupportedCurrency(c string) bool {
	return c == CurrencyUSD || c == CurrencyHKD
}

// Dividend payment frequencies accepted on stocks.
const (
	FrequencyWeekly     = "Weekly"
	FrequencyMonthly    = "Monthly"
	FrequencyQuarterly  = "Quarterly"
	FrequencySemiAnnual = "Semi-Annual"
	FrequencyAnnual     = "Annual"
	FrequencyNone       = "None"
)
