package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ExchangeRate is one persisted FX observation. Uniqueness is per currency
// pair per calendar day; updated_at carries the exact fetch time for the
// freshness check.
type ExchangeRate struct {
	ID           string    `json:"id"`
	FromCurrency string    `json:"fromCurrency"`
	ToCurrency   string    `json:"toCurrency"`
	Rate         float64   `json:"rate"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Source       string    `json:"source"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const exchangeRateColumns = `id, from_currency, to_currency, rate, date, source, updated_at`

// GetFreshRate returns the most recently updated persisted rate for the pair
// with updated_at at or after the cutoff, or sql.ErrNoRows.
func GetFreshRate(db *sql.DB, from, to string, cutoff time.Time) (*ExchangeRate, error) {
	var r ExchangeRate
	row := db.QueryRow(`
		SELECT `+exchangeRateColumns+`
		FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ? AND updated_at >= ?
		ORDER BY updated_at DESC
		LIMIT 1`, from, to, cutoff)
	err := row.Scan(&r.ID, &r.FromCurrency, &r.ToCurrency, &r.Rate, &r.Date, &r.Source, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertRate saves a rate for the pair's day row, overwriting an existing
// observation for the same (from, to, date) triple.
func UpsertRate(db *sql.DB, r *ExchangeRate) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.UpdatedAt = time.Now()
	if r.Date == "" {
		r.Date = r.UpdatedAt.Format("2006-01-02")
	}
	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(from_currency, to_currency, date) DO UPDATE SET
			rate = excluded.rate,
			source = excluded.source,
			updated_at = excluded.updated_at`
	_, err := db.Exec(query, r.ID, r.FromCurrency, r.ToCurrency, r.Rate, r.Date, r.Source, r.UpdatedAt)
	return err
}

// ListRateHistory returns the persisted observations for the pair from
// sinceDate (YYYY-MM-DD, inclusive) onward, oldest first.
func ListRateHistory(db *sql.DB, from, to, sinceDate string) ([]ExchangeRate, error) {
	rows, err := db.Query(`
		SELECT `+exchangeRateColumns+`
		FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ? AND date >= ?
		ORDER BY date ASC`, from, to, sinceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []ExchangeRate
	for rows.Next() {
		var r ExchangeRate
		if err := rows.Scan(&r.ID, &r.FromCurrency, &r.ToCurrency, &r.Rate, &r.Date, &r.Source, &r.UpdatedAt); err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}
