package services

import "time"

// Quote is the slice of provider data the tracker cares about.
type Quote struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	Currency           string  `json:"currency"`
}

// DividendEstimate is one projected future payment, derived from the payment
// cadence the provider reported over the trailing year.
type DividendEstimate struct {
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	Symbol    string    `json:"symbol"`
	Estimated bool      `json:"estimated"`
}

// QuoteService wraps the external market-data source. Every lookup is served
// from a TTL cache first; batch lookups drop symbols the provider cannot
// resolve instead of failing the whole request.
type QuoteService interface {
	GetQuote(symbol string) (*Quote, error)
	GetBatchQuotes(symbols []string) (map[string]Quote, error)
	GetExchangeRate(from, to string) (float64, error)
	GetDividendEstimates(symbol string) ([]DividendEstimate, error)
	RefreshSymbol(symbol string) (*Quote, error)
	ClearCache()
}
