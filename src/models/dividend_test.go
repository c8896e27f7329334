package models

import (
	"math"
	"testing"
	"time"
)

func TestInsertDividendRecomputesTotal(t *testing.T) {
	db := newTestDB(t)
	stock := insertTestStock(t, db, "CLM", 1)

	d := Dividend{
		StockID:        stock.ID,
		ExDate:         time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		PaymentDate:    time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC),
		AmountPerShare: 0.1246,
		Shares:         1000,
		TotalAmount:    999999, // client-sent totals are ignored
		Currency:       CurrencyUSD,
	}
	if err := InsertDividend(db, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d.TotalAmount-124.6) > 1e-9 {
		t.Errorf("total: got %v, want 124.6", d.TotalAmount)
	}

	loaded, err := GetDividendByID(db, d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(loaded.TotalAmount-124.6) > 1e-9 {
		t.Errorf("persisted total: got %v, want 124.6", loaded.TotalAmount)
	}
}

func TestUpdateDividendRecomputesTotal(t *testing.T) {
	db := newTestDB(t)
	stock := insertTestStock(t, db, "GOF", 1)

	d := Dividend{
		StockID:        stock.ID,
		ExDate:         time.Now(),
		PaymentDate:    time.Now(),
		AmountPerShare: 0.2,
		Shares:         100,
		Currency:       CurrencyUSD,
	}
	if err := InsertDividend(db, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.Shares = 250
	if err := UpdateDividend(db, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d.TotalAmount-50) > 1e-9 {
		t.Errorf("total after update: got %v, want 50", d.TotalAmount)
	}
}

func TestListDividendsWithStocksOrdering(t *testing.T) {
	db := newTestDB(t)
	stock := insertTestStock(t, db, "YYY", 1)

	dates := []time.Time{
		time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
	}
	for _, date := range dates {
		d := Dividend{StockID: stock.ID, ExDate: date.AddDate(0, 0, -10), PaymentDate: date,
			AmountPerShare: 0.1, Shares: 10, Currency: CurrencyUSD}
		if err := InsertDividend(db, &d); err != nil {
			t.Fatalf("inserting dividend: %v", err)
		}
	}

	dividends, err := ListDividendsWithStocks(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dividends) != 3 {
		t.Fatalf("expected 3 dividends, got %d", len(dividends))
	}
	for i := 1; i < len(dividends); i++ {
		if dividends[i].PaymentDate.After(dividends[i-1].PaymentDate) {
			t.Errorf("list not in descending payment date order")
		}
	}
	if dividends[0].Stock.Symbol != "YYY" {
		t.Errorf("joined stock: got %q, want YYY", dividends[0].Stock.Symbol)
	}
}

func TestListUpcomingDividendsWindow(t *testing.T) {
	db := newTestDB(t)
	stock := insertTestStock(t, db, "REM", 1)

	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	offsets := []int{-5, 3, 10, 45}
	for _, days := range offsets {
		d := Dividend{StockID: stock.ID, ExDate: base, PaymentDate: base.AddDate(0, 0, days),
			AmountPerShare: 0.1, Shares: 10, Currency: CurrencyUSD}
		if err := InsertDividend(db, &d); err != nil {
			t.Fatalf("inserting dividend: %v", err)
		}
	}

	upcoming, err := ListUpcomingDividends(db, base, base.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 upcoming dividends, got %d", len(upcoming))
	}
	if upcoming[0].PaymentDate.After(upcoming[1].PaymentDate) {
		t.Errorf("upcoming list should be soonest first")
	}
}

func TestListDividendsInRange(t *testing.T) {
	db := newTestDB(t)
	stock := insertTestStock(t, db, "ECC", 1)

	for _, year := range []int{2023, 2024, 2025} {
		d := Dividend{StockID: stock.ID,
			ExDate:         time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC),
			PaymentDate:    time.Date(year, time.April, 15, 0, 0, 0, 0, time.UTC),
			AmountPerShare: 0.1, Shares: 10, Currency: CurrencyUSD}
		if err := InsertDividend(db, &d); err != nil {
			t.Fatalf("inserting dividend: %v", err)
		}
	}

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)
	dividends, err := ListDividendsInRange(db, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dividends) != 1 {
		t.Fatalf("expected 1 dividend in 2024, got %d", len(dividends))
	}
	if dividends[0].PaymentDate.Year() != 2024 {
		t.Errorf("got year %d, want 2024", dividends[0].PaymentDate.Year())
	}
}
