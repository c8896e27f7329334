package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/divitrack/backend/src/logger"
	"github.com/username/divitrack/backend/src/models"
)

const rateSource = "Yahoo Finance"

// ConversionResult is the response body of a currency conversion.
type ConversionResult struct {
	FromCurrency    string  `json:"fromCurrency"`
	ToCurrency      string  `json:"toCurrency"`
	OriginalAmount  float64 `json:"originalAmount"`
	ConvertedAmount float64 `json:"convertedAmount"`
	Rate            float64 `json:"rate"`
	Date            string  `json:"date"`
}

// RateService resolves USD/HKD exchange rates with a cache-aside policy: a
// persisted rate fetched within the freshness window wins, otherwise the
// quote provider is consulted and the result persisted. Only the USD→HKD
// direction is ever fetched from the provider; the inverse is derived as its
// reciprocal.
type RateService struct {
	db        *sql.DB
	quotes    QuoteService
	freshness time.Duration
}

func NewRateService(db *sql.DB, quotes QuoteService, freshness time.Duration) *RateService {
	return &RateService{db: db, quotes: quotes, freshness: freshness}
}

// CurrentRate returns the effective rate record for the pair. Same-currency
// requests resolve to the identity rate without touching storage or the
// provider.
func (s *RateService) CurrentRate(from, to string) (*models.ExchangeRate, error) {
	if !models.IsSupportedCurrency(from) || !models.IsSupportedCurrency(to) {
		return nil, fmt.Errorf("unsupported currency pair %s/%s", from, to)
	}
	if from == to {
		now := time.Now()
		return &models.ExchangeRate{
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         1,
			Date:         now.Format("2006-01-02"),
			Source:       "Identity",
			UpdatedAt:    now,
		}, nil
	}

	cutoff := time.Now().Add(-s.freshness)
	rate, err := models.GetFreshRate(s.db, from, to, cutoff)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Nothing fresh persisted. Fetch USD→HKD from the provider regardless of
	// the requested direction and derive the inverse.
	usdToHkd, err := s.quotes.GetExchangeRate(models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		return nil, err
	}

	value := usdToHkd
	if from == models.CurrencyHKD {
		value = 1 / usdToHkd
	}

	fresh := &models.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         value,
		Source:       rateSource,
	}
	if err := models.UpsertRate(s.db, fresh); err != nil {
		logger.L.Error("Failed to persist exchange rate", "from", from, "to", to, "error", err)
		return nil, err
	}
	return fresh, nil
}

// UsdToHkd returns the effective USD→HKD rate, the single directional rate
// the aggregation computations convert with.
func (s *RateService) UsdToHkd() (float64, error) {
	rate, err := s.CurrentRate(models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		return 0, err
	}
	return rate.Rate, nil
}

// Convert applies the current rate to an amount.
func (s *RateService) Convert(amount float64, from, to string) (*ConversionResult, error) {
	rate, err := s.CurrentRate(from, to)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{
		FromCurrency:    from,
		ToCurrency:      to,
		OriginalAmount:  amount,
		ConvertedAmount: amount * rate.Rate,
		Rate:            rate.Rate,
		Date:            rate.Date,
	}, nil
}

// RefreshRates force-fetches the USD→HKD rate and upserts today's rows for
// both directions, the inverse as the reciprocal.
func (s *RateService) RefreshRates() (usdToHkd, hkdToUsd *models.ExchangeRate, err error) {
	value, err := s.quotes.GetExchangeRate(models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		return nil, nil, err
	}

	usdToHkd = &models.ExchangeRate{
		FromCurrency: models.CurrencyUSD,
		ToCurrency:   models.CurrencyHKD,
		Rate:         value,
		Source:       rateSource,
	}
	if err := models.UpsertRate(s.db, usdToHkd); err != nil {
		return nil, nil, err
	}

	hkdToUsd = &models.ExchangeRate{
		FromCurrency: models.CurrencyHKD,
		ToCurrency:   models.CurrencyUSD,
		Rate:         1 / value,
		Source:       rateSource,
	}
	if err := models.UpsertRate(s.db, hkdToUsd); err != nil {
		return nil, nil, err
	}
	return usdToHkd, hkdToUsd, nil
}

// History lists the persisted observations for the pair over the last N days.
func (s *RateService) History(from, to string, days int) ([]models.ExchangeRate, error) {
	sinceDate := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	return models.ListRateHistory(s.db, from, to, sinceDate)
}
