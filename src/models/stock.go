package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stock represents a row in the stocks table: one fund or share of the
// three-tier income strategy, with its declared dividend profile.
type Stock struct {
	ID                string     `json:"id"`
	Symbol            string     `json:"symbol"`
	Name              string     `json:"name"`
	Tier              int        `json:"tier"`
	TierCategory      string     `json:"tierCategory"`
	SubCategory       *string    `json:"subCategory,omitempty"`
	CurrentPrice      float64    `json:"currentPrice"`
	Currency          string     `json:"currency"`
	DividendYield     float64    `json:"dividendYield"`
	DividendFrequency string     `json:"dividendFrequency"`
	NextDividendDate  *time.Time `json:"nextDividendDate,omitempty"`
	Description       *string    `json:"description,omitempty"`
	RiskLevel         string     `json:"riskLevel"`
	LastUpdated       time.Time  `json:"lastUpdated"`
	CreatedAt         time.Time  `json:"createdAt"`
}

const stockColumns = `id, symbol, name, tier, tier_category, sub_category, current_price, currency,
	dividend_yield, dividend_frequency, next_dividend_date, description, risk_level, last_updated, created_at`

func scanStock(row interface{ Scan(...any) error }, s *Stock) error {
	return row.Scan(
		&s.ID,
		&s.Symbol,
		&s.Name,
		&s.Tier,
		&s.TierCategory,
		&s.SubCategory,
		&s.CurrentPrice,
		&s.Currency,
		&s.DividendYield,
		&s.DividendFrequency,
		&s.NextDividendDate,
		&s.Description,
		&s.RiskLevel,
		&s.LastUpdated,
		&s.CreatedAt,
	)
}

// InsertStock creates a new stock row. The symbol is stored uppercase and the
// id and timestamps are assigned here.
func InsertStock(db *sql.DB, s *Stock) error {
	now := time.Now()
	s.ID = uuid.New().String()
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	s.LastUpdated = now
	s.CreatedAt = now

	query := `
		INSERT INTO stocks (` + stockColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		s.ID, s.Symbol, s.Name, s.Tier, s.TierCategory, s.SubCategory,
		s.CurrentPrice, s.Currency, s.DividendYield, s.DividendFrequency,
		s.NextDividendDate, s.Description, s.RiskLevel, s.LastUpdated, s.CreatedAt,
	)
	return err
}

func GetStockByID(db *sql.DB, id string) (*Stock, error) {
	var s Stock
	row := db.QueryRow(`SELECT `+stockColumns+` FROM stocks WHERE id = ?`, id)
	if err := scanStock(row, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func GetStockBySymbol(db *sql.DB, symbol string) (*Stock, error) {
	var s Stock
	row := db.QueryRow(`SELECT `+stockColumns+` FROM stocks WHERE symbol = ?`, strings.ToUpper(symbol))
	if err := scanStock(row, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func ListStocks(db *sql.DB) ([]Stock, error) {
	rows, err := db.Query(`SELECT ` + stockColumns + ` FROM stocks ORDER BY tier, symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []Stock
	for rows.Next() {
		var s Stock
		if err := scanStock(rows, &s); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

func ListStocksByTier(db *sql.DB, tier int) ([]Stock, error) {
	rows, err := db.Query(`SELECT `+stockColumns+` FROM stocks WHERE tier = ? ORDER BY symbol`, tier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []Stock
	for rows.Next() {
		var s Stock
		if err := scanStock(rows, &s); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// UpdateStock rewrites the mutable columns of a stock and bumps last_updated.
func UpdateStock(db *sql.DB, s *Stock) error {
	s.LastUpdated = time.Now()
	query := `
		UPDATE stocks SET
			name = ?, tier = ?, tier_category = ?, sub_category = ?,
			dividend_yield = ?, dividend_frequency = ?, next_dividend_date = ?,
			description = ?, risk_level = ?, last_updated = ?
		WHERE id = ?`
	res, err := db.Exec(query,
		s.Name, s.Tier, s.TierCategory, s.SubCategory,
		s.DividendYield, s.DividendFrequency, s.NextDividendDate,
		s.Description, s.RiskLevel, s.LastUpdated, s.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStockPrice records a fresh quote for the stock.
func UpdateStockPrice(db *sql.DB, id string, price float64) error {
	_, err := db.Exec(`UPDATE stocks SET current_price = ?, last_updated = ? WHERE id = ?`, price, time.Now(), id)
	return err
}

// StockReferenceCount returns how many holdings and dividends point at the stock.
// Deleting a stock is refused while this is non-zero.
func StockReferenceCount(db *sql.DB, id string) (int, error) {
	var count int
	query := `
		SELECT (SELECT COUNT(*) FROM holdings WHERE stock_id = ?) +
		       (SELECT COUNT(*) FROM dividends WHERE stock_id = ?)`
	err := db.QueryRow(query, id, id).Scan(&count)
	return count, err
}

func DeleteStock(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM stocks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func CountStocks(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM stocks`).Scan(&count)
	return count, err
}
