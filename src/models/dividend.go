package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Dividend is one recorded dividend payment for a stock. The total is always
// derived from amount-per-share and shares on the server; a client-sent total
// is never trusted.
type Dividend struct {
	ID             string    `json:"id"`
	StockID        string    `json:"stockId"`
	ExDate         time.Time `json:"exDate"`
	PaymentDate    time.Time `json:"paymentDate"`
	AmountPerShare float64   `json:"amountPerShare"`
	Shares         float64   `json:"shares"`
	TotalAmount    float64   `json:"totalAmount"`
	Currency       string    `json:"currency"`
	Reinvested     bool      `json:"reinvested"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DividendWithStock is a dividend joined with its stock for display.
type DividendWithStock struct {
	Dividend
	Stock Stock `json:"stock"`
}

const dividendColumns = `d.id, d.stock_id, d.ex_date, d.payment_date, d.amount_per_share,
	d.shares, d.total_amount, d.currency, d.reinvested, d.notes, d.created_at, d.updated_at`

const dividendStockColumns = dividendColumns + `,
	s.id, s.symbol, s.name, s.tier, s.tier_category, s.sub_category, s.current_price, s.currency,
	s.dividend_yield, s.dividend_frequency, s.next_dividend_date, s.description, s.risk_level, s.last_updated, s.created_at`

func scanDividend(row interface{ Scan(...any) error }, d *Dividend) error {
	return row.Scan(
		&d.ID, &d.StockID, &d.ExDate, &d.PaymentDate, &d.AmountPerShare,
		&d.Shares, &d.TotalAmount, &d.Currency, &d.Reinvested, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt,
	)
}

func scanDividendWithStock(row interface{ Scan(...any) error }, ds *DividendWithStock) error {
	return row.Scan(
		&ds.ID, &ds.StockID, &ds.ExDate, &ds.PaymentDate, &ds.AmountPerShare,
		&ds.Shares, &ds.TotalAmount, &ds.Currency, &ds.Reinvested, &ds.Notes,
		&ds.CreatedAt, &ds.UpdatedAt,
		&ds.Stock.ID, &ds.Stock.Symbol, &ds.Stock.Name, &ds.Stock.Tier,
		&ds.Stock.TierCategory, &ds.Stock.SubCategory, &ds.Stock.CurrentPrice,
		&ds.Stock.Currency, &ds.Stock.DividendYield, &ds.Stock.DividendFrequency,
		&ds.Stock.NextDividendDate, &ds.Stock.Description, &ds.Stock.RiskLevel,
		&ds.Stock.LastUpdated, &ds.Stock.CreatedAt,
	)
}

func InsertDividend(db *sql.DB, d *Dividend) error {
	now := time.Now()
	d.ID = uuid.New().String()
	d.TotalAmount = d.AmountPerShare * d.Shares
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO dividends (id, stock_id, ex_date, payment_date, amount_per_share,
			shares, total_amount, currency, reinvested, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		d.ID, d.StockID, d.ExDate, d.PaymentDate, d.AmountPerShare,
		d.Shares, d.TotalAmount, d.Currency, d.Reinvested, d.Notes,
		d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func GetDividendByID(db *sql.DB, id string) (*Dividend, error) {
	var d Dividend
	row := db.QueryRow(`SELECT `+dividendColumns+` FROM dividends d WHERE d.id = ?`, id)
	if err := scanDividend(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func GetDividendWithStock(db *sql.DB, id string) (*DividendWithStock, error) {
	var ds DividendWithStock
	row := db.QueryRow(`
		SELECT `+dividendStockColumns+`
		FROM dividends d JOIN stocks s ON s.id = d.stock_id
		WHERE d.id = ?`, id)
	if err := scanDividendWithStock(row, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListDividendsWithStocks returns all recorded payments, most recent first.
func ListDividendsWithStocks(db *sql.DB) ([]DividendWithStock, error) {
	return queryDividendsWithStocks(db, `
		SELECT `+dividendStockColumns+`
		FROM dividends d JOIN stocks s ON s.id = d.stock_id
		ORDER BY d.payment_date DESC`)
}

func ListDividendsByStock(db *sql.DB, stockID string) ([]DividendWithStock, error) {
	return queryDividendsWithStocks(db, `
		SELECT `+dividendStockColumns+`
		FROM dividends d JOIN stocks s ON s.id = d.stock_id
		WHERE d.stock_id = ?
		ORDER BY d.payment_date DESC`, stockID)
}

// ListUpcomingDividends returns payments falling inside [from, to], soonest first.
func ListUpcomingDividends(db *sql.DB, from, to time.Time) ([]DividendWithStock, error) {
	return queryDividendsWithStocks(db, `
		SELECT `+dividendStockColumns+`
		FROM dividends d JOIN stocks s ON s.id = d.stock_id
		WHERE d.payment_date >= ? AND d.payment_date <= ?
		ORDER BY d.payment_date ASC`, from, to)
}

func queryDividendsWithStocks(db *sql.DB, query string, args ...any) ([]DividendWithStock, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dividends []DividendWithStock
	for rows.Next() {
		var ds DividendWithStock
		if err := scanDividendWithStock(rows, &ds); err != nil {
			return nil, err
		}
		dividends = append(dividends, ds)
	}
	return dividends, rows.Err()
}

// ListDividendsInRange returns the plain dividend rows with a payment date in
// [from, to], the input set for the income rollups.
func ListDividendsInRange(db *sql.DB, from, to time.Time) ([]Dividend, error) {
	rows, err := db.Query(`
		SELECT `+dividendColumns+`
		FROM dividends d
		WHERE d.payment_date >= ? AND d.payment_date <= ?`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dividends []Dividend
	for rows.Next() {
		var d Dividend
		if err := scanDividend(rows, &d); err != nil {
			return nil, err
		}
		dividends = append(dividends, d)
	}
	return dividends, rows.Err()
}

// UpdateDividend rewrites the mutable columns and recomputes the total.
func UpdateDividend(db *sql.DB, d *Dividend) error {
	d.TotalAmount = d.AmountPerShare * d.Shares
	d.UpdatedAt = time.Now()
	query := `
		UPDATE dividends SET
			ex_date = ?, payment_date = ?, amount_per_share = ?, shares = ?,
			total_amount = ?, currency = ?, reinvested = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	res, err := db.Exec(query,
		d.ExDate, d.PaymentDate, d.AmountPerShare, d.Shares,
		d.TotalAmount, d.Currency, d.Reinvested, d.Notes, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeleteDividend(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM dividends WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
