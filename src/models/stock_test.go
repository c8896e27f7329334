package models

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestInsertStockNormalizesSymbol(t *testing.T) {
	db := newTestDB(t)
	s := Stock{
		Symbol:            "  clm ",
		Name:              "Cornerstone Strategic Value Fund",
		Tier:              1,
		TierCategory:      "Anchor Funds",
		Currency:          CurrencyUSD,
		DividendFrequency: FrequencyMonthly,
		RiskLevel:         "Moderate",
	}
	if err := InsertStock(db, &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Symbol != "CLM" {
		t.Errorf("symbol: got %q, want CLM", s.Symbol)
	}

	loaded, err := GetStockBySymbol(db, "CLM")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if loaded.ID != s.ID {
		t.Errorf("round trip id mismatch: %q vs %q", loaded.ID, s.ID)
	}
}

func TestInsertStockRejectsDuplicateSymbol(t *testing.T) {
	db := newTestDB(t)
	insertTestStock(t, db, "GOF", 1)

	dup := Stock{
		Symbol:            "GOF",
		Name:              "Duplicate",
		Tier:              1,
		TierCategory:      "Anchor Funds",
		Currency:          CurrencyUSD,
		DividendFrequency: FrequencyMonthly,
		RiskLevel:         "Moderate",
	}
	if err := InsertStock(db, &dup); err == nil {
		t.Fatal("expected a unique constraint violation")
	}
}

func TestListStocksOrderedByTierThenSymbol(t *testing.T) {
	db := newTestDB(t)
	insertTestStock(t, db, "YMAX", 3)
	insertTestStock(t, db, "QQQY", 2)
	insertTestStock(t, db, "GOF", 1)
	insertTestStock(t, db, "CLM", 1)

	stocks, err := ListStocks(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"CLM", "GOF", "QQQY", "YMAX"}
	if len(stocks) != len(want) {
		t.Fatalf("expected %d stocks, got %d", len(want), len(stocks))
	}
	for i, symbol := range want {
		if stocks[i].Symbol != symbol {
			t.Errorf("slot %d: got %q, want %q", i, stocks[i].Symbol, symbol)
		}
	}
}

func TestListStocksByTier(t *testing.T) {
	db := newTestDB(t)
	insertTestStock(t, db, "CLM", 1)
	insertTestStock(t, db, "QQQY", 2)

	tier1, err := ListStocksByTier(db, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tier1) != 1 || tier1[0].Symbol != "CLM" {
		t.Errorf("tier 1: got %v", tier1)
	}
}

func TestUpdateStockMissingRow(t *testing.T) {
	db := newTestDB(t)
	s := Stock{ID: "missing", Symbol: "X", Name: "X", Tier: 1, TierCategory: "Anchor Funds",
		Currency: CurrencyUSD, DividendFrequency: FrequencyMonthly, RiskLevel: "Moderate"}
	if err := UpdateStock(db, &s); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("got %v, want sql.ErrNoRows", err)
	}
}

func TestStockReferenceCount(t *testing.T) {
	db := newTestDB(t)
	stock := insertTestStock(t, db, "PSEC", 1)

	count, err := StockReferenceCount(db, stock.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh stock: got %d references, want 0", count)
	}

	h := Holding{StockID: stock.ID, Shares: 10, AverageCostBasis: 5, Currency: CurrencyUSD}
	if err := InsertHolding(db, &h); err != nil {
		t.Fatalf("inserting holding: %v", err)
	}
	d := Dividend{StockID: stock.ID, ExDate: time.Now(), PaymentDate: time.Now(),
		AmountPerShare: 0.1, Shares: 10, Currency: CurrencyUSD}
	if err := InsertDividend(db, &d); err != nil {
		t.Fatalf("inserting dividend: %v", err)
	}

	count, err = StockReferenceCount(db, stock.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("got %d references, want 2", count)
	}
}

func TestDeleteStock(t *testing.T) {
	db := newTestDB(t)
	stock := insertTestStock(t, db, "USA", 1)

	if err := DeleteStock(db, stock.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := GetStockByID(db, stock.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("stock still present after delete: %v", err)
	}
	if err := DeleteStock(db, stock.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete: got %v, want sql.ErrNoRows", err)
	}
}

func TestSeedCatalogShape(t *testing.T) {
	catalog := SeedCatalog()
	if len(catalog) != 20 {
		t.Fatalf("expected 20 seed stocks, got %d", len(catalog))
	}

	db := newTestDB(t)
	tiers := map[int]int{}
	for i := range catalog {
		s := catalog[i]
		if err := InsertStock(db, &s); err != nil {
			t.Errorf("seed stock %s does not satisfy the schema: %v", s.Symbol, err)
		}
		tiers[s.Tier]++
	}
	if tiers[1] != 11 || tiers[2] != 6 || tiers[3] != 3 {
		t.Errorf("tier distribution: got %v, want 11/6/3", tiers)
	}

	count, err := CountStocks(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 20 {
		t.Errorf("count: got %d, want 20", count)
	}
}

func TestSeedSupplementalStocksIdempotent(t *testing.T) {
	db := newTestDB(t)

	inserted, err := SeedSupplementalStocks(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 27 {
		t.Errorf("first seed: got %d inserts, want 27", inserted)
	}

	// GOOGL is the sentinel; a second pass must not double-insert.
	again, err := SeedSupplementalStocks(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 0 {
		t.Errorf("second seed: got %d inserts, want 0", again)
	}

	count, err := CountStocks(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 27 {
		t.Errorf("count: got %d, want 27", count)
	}

	googl, err := GetStockBySymbol(db, "GOOGL")
	if err != nil {
		t.Fatalf("sentinel lookup failed: %v", err)
	}
	if googl.DividendFrequency != FrequencyNone || googl.DividendYield != 0 {
		t.Errorf("non-payers should carry a zero yield and None frequency: %+v", googl)
	}
}
