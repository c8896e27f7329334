package services

import (
	"database/sql"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/username/divitrack/backend/src/models"
	_ "modernc.org/sqlite"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

type stubQuoteService struct {
	usdToHkd  float64
	fetchErr  error
	fetchHits int
}

func (s *stubQuoteService) GetQuote(symbol string) (*Quote, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubQuoteService) GetBatchQuotes(symbols []string) (map[string]Quote, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubQuoteService) GetExchangeRate(from, to string) (float64, error) {
	s.fetchHits++
	if s.fetchErr != nil {
		return 0, s.fetchErr
	}
	return s.usdToHkd, nil
}

func (s *stubQuoteService) GetDividendEstimates(symbol string) ([]DividendEstimate, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubQuoteService) RefreshSymbol(symbol string) (*Quote, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubQuoteService) ClearCache() {}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE exchange_rates (
			id TEXT PRIMARY KEY,
			from_currency TEXT NOT NULL,
			to_currency TEXT NOT NULL,
			rate REAL NOT NULL,
			date TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(from_currency, to_currency, date)
		)`)
	if err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func TestCurrentRateIdentity(t *testing.T) {
	stub := &stubQuoteService{usdToHkd: 7.8}
	svc := NewRateService(newTestDB(t), stub, 24*time.Hour)

	rate, err := svc.CurrentRate(models.CurrencyUSD, models.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(rate.Rate, 1) {
		t.Errorf("identity rate: got %v, want 1", rate.Rate)
	}
	if stub.fetchHits != 0 {
		t.Errorf("identity lookup must not touch the provider, got %d hits", stub.fetchHits)
	}
}

func TestCurrentRateRejectsUnsupportedPair(t *testing.T) {
	svc := NewRateService(newTestDB(t), &stubQuoteService{}, 24*time.Hour)
	if _, err := svc.CurrentRate("EUR", models.CurrencyHKD); err == nil {
		t.Fatal("expected an error for an unsupported currency")
	}
}

func TestCurrentRateFetchesAndPersistsOnMiss(t *testing.T) {
	db := newTestDB(t)
	stub := &stubQuoteService{usdToHkd: 7.85}
	svc := NewRateService(db, stub, 24*time.Hour)

	rate, err := svc.CurrentRate(models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(rate.Rate, 7.85) {
		t.Errorf("got %v, want 7.85", rate.Rate)
	}
	if stub.fetchHits != 1 {
		t.Errorf("expected one provider fetch, got %d", stub.fetchHits)
	}

	// The fetched rate is persisted and served without another provider call.
	again, err := svc.CurrentRate(models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(again.Rate, 7.85) {
		t.Errorf("got %v, want 7.85", again.Rate)
	}
	if stub.fetchHits != 1 {
		t.Errorf("fresh persisted rate should short-circuit the provider, got %d hits", stub.fetchHits)
	}
}

func TestCurrentRateServesFreshPersistedRate(t *testing.T) {
	db := newTestDB(t)
	persisted := &models.ExchangeRate{
		FromCurrency: models.CurrencyUSD,
		ToCurrency:   models.CurrencyHKD,
		Rate:         7.75,
		Source:       "Test",
	}
	if err := models.UpsertRate(db, persisted); err != nil {
		t.Fatalf("seeding rate: %v", err)
	}

	stub := &stubQuoteService{usdToHkd: 9.99}
	svc := NewRateService(db, stub, 24*time.Hour)

	rate, err := svc.CurrentRate(models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(rate.Rate, 7.75) {
		t.Errorf("got %v, want the persisted 7.75", rate.Rate)
	}
	if stub.fetchHits != 0 {
		t.Errorf("fresh persisted rate must not hit the provider")
	}
}

func TestCurrentRateIgnoresStalePersistedRate(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`
		INSERT INTO exchange_rates (id, from_currency, to_currency, rate, date, source, updated_at)
		VALUES ('stale', 'USD', 'HKD', 7.00, '2025-01-01', 'Test', ?)`,
		time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("seeding stale rate: %v", err)
	}

	stub := &stubQuoteService{usdToHkd: 7.82}
	svc := NewRateService(db, stub, 24*time.Hour)

	rate, err := svc.CurrentRate(models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(rate.Rate, 7.82) {
		t.Errorf("stale rate served: got %v, want the refetched 7.82", rate.Rate)
	}
	if stub.fetchHits != 1 {
		t.Errorf("expected one provider fetch for the stale pair, got %d", stub.fetchHits)
	}
}

func TestCurrentRateDerivesInverse(t *testing.T) {
	stub := &stubQuoteService{usdToHkd: 7.8}
	svc := NewRateService(newTestDB(t), stub, 24*time.Hour)

	rate, err := svc.CurrentRate(models.CurrencyHKD, models.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(rate.Rate, 1/7.8) {
		t.Errorf("got %v, want %v", rate.Rate, 1/7.8)
	}
}

func TestConvertRoundTrips(t *testing.T) {
	db := newTestDB(t)
	stub := &stubQuoteService{usdToHkd: 7.8}
	svc := NewRateService(db, stub, 24*time.Hour)

	forward, err := svc.Convert(100, models.CurrencyUSD, models.CurrencyHKD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(forward.ConvertedAmount, 780) {
		t.Errorf("forward: got %v, want 780", forward.ConvertedAmount)
	}

	back, err := svc.Convert(forward.ConvertedAmount, models.CurrencyHKD, models.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(back.ConvertedAmount, 100) {
		t.Errorf("round trip: got %v, want 100", back.ConvertedAmount)
	}
}

func TestRefreshRatesWritesBothDirections(t *testing.T) {
	db := newTestDB(t)
	stub := &stubQuoteService{usdToHkd: 7.79}
	svc := NewRateService(db, stub, 24*time.Hour)

	usdToHkd, hkdToUsd, err := svc.RefreshRates()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(usdToHkd.Rate, 7.79) {
		t.Errorf("usdToHkd: got %v, want 7.79", usdToHkd.Rate)
	}
	if !approxEqual(hkdToUsd.Rate, 1/7.79) {
		t.Errorf("hkdToUsd: got %v, want %v", hkdToUsd.Rate, 1/7.79)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM exchange_rates`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 persisted rows, got %d", count)
	}

	// A second refresh on the same day overwrites rather than duplicates.
	stub.usdToHkd = 7.81
	if _, _, err := svc.RefreshRates(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM exchange_rates`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 2 {
		t.Errorf("same-day refresh should upsert, got %d rows", count)
	}

	var rate float64
	err = db.QueryRow(`SELECT rate FROM exchange_rates WHERE from_currency = 'USD'`).Scan(&rate)
	if err != nil {
		t.Fatalf("reading refreshed rate: %v", err)
	}
	if !approxEqual(rate, 7.81) {
		t.Errorf("refreshed rate: got %v, want 7.81", rate)
	}
}

func TestHistoryOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewRateService(db, &stubQuoteService{}, 24*time.Hour)

	days := []string{"2025-08-10", "2025-08-12", "2025-08-11"}
	for i, day := range days {
		_, err := db.Exec(`
			INSERT INTO exchange_rates (id, from_currency, to_currency, rate, date, source, updated_at)
			VALUES (?, 'USD', 'HKD', ?, ?, 'Test', ?)`,
			fmt.Sprintf("r%d", i), 7.8+float64(i)*0.01, day, time.Now())
		if err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}

	history, err := svc.History(models.CurrencyUSD, models.CurrencyHKD, 3650)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Date < history[i-1].Date {
			t.Errorf("history not in ascending date order: %s before %s", history[i-1].Date, history[i].Date)
		}
	}
}
