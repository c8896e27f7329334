package models

import (
	"database/sql"
	"os"
	"testing"

	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory database and applies the real schema so the
// store functions run against the same DDL production uses.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(on)")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../db/migrations/000001_init_schema.up.sql")
	if err != nil {
		t.Fatalf("reading schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return db
}

func insertTestStock(t *testing.T, db *sql.DB, symbol string, tier int) *Stock {
	t.Helper()
	s := Stock{
		Symbol:            symbol,
		Name:              symbol + " Fund",
		Tier:              tier,
		TierCategory:      "Anchor Funds",
		CurrentPrice:      10,
		Currency:          CurrencyUSD,
		DividendYield:     8,
		DividendFrequency: FrequencyMonthly,
		RiskLevel:         "Moderate",
	}
	if err := InsertStock(db, &s); err != nil {
		t.Fatalf("inserting stock %s: %v", symbol, err)
	}
	return &s
}
