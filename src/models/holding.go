package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Holding represents a position in one stock.
type Holding struct {
	ID                         string    `json:"id"`
	StockID                    string    `json:"stockId"`
	Shares                     float64   `json:"shares"`
	AverageCostBasis           float64   `json:"averageCostBasis"`
	CurrentValue               float64   `json:"currentValue"`
	AllocationPercentage       float64   `json:"allocationPercentage"`
	TargetAllocationPercentage float64   `json:"targetAllocationPercentage"`
	Currency                   string    `json:"currency"`
	PurchaseDate               time.Time `json:"purchaseDate"`
	LastUpdated                time.Time `json:"lastUpdated"`
	CreatedAt                  time.Time `json:"createdAt"`
}

// HoldingWithStock is a holding joined with its stock, the shape every
// holdings endpoint responds with.
type HoldingWithStock struct {
	Holding
	Stock Stock `json:"stock"`
}

const holdingColumns = `h.id, h.stock_id, h.shares, h.average_cost_basis, h.current_value,
	h.allocation_percentage, h.target_allocation_percentage, h.currency, h.purchase_date, h.last_updated, h.created_at`

const holdingStockColumns = holdingColumns + `,
	s.id, s.symbol, s.name, s.tier, s.tier_category, s.sub_category, s.current_price, s.currency,
	s.dividend_yield, s.dividend_frequency, s.next_dividend_date, s.description, s.risk_level, s.last_updated, s.created_at`

func scanHolding(row interface{ Scan(...any) error }, h *Holding) error {
	return row.Scan(
		&h.ID, &h.StockID, &h.Shares, &h.AverageCostBasis, &h.CurrentValue,
		&h.AllocationPercentage, &h.TargetAllocationPercentage, &h.Currency,
		&h.PurchaseDate, &h.LastUpdated, &h.CreatedAt,
	)
}

func scanHoldingWithStock(row interface{ Scan(...any) error }, hs *HoldingWithStock) error {
	return row.Scan(
		&hs.ID, &hs.StockID, &hs.Shares, &hs.AverageCostBasis, &hs.CurrentValue,
		&hs.AllocationPercentage, &hs.TargetAllocationPercentage, &hs.Currency,
		&hs.PurchaseDate, &hs.LastUpdated, &hs.CreatedAt,
		&hs.Stock.ID, &hs.Stock.Symbol, &hs.Stock.Name, &hs.Stock.Tier,
		&hs.Stock.TierCategory, &hs.Stock.SubCategory, &hs.Stock.CurrentPrice,
		&hs.Stock.Currency, &hs.Stock.DividendYield, &hs.Stock.DividendFrequency,
		&hs.Stock.NextDividendDate, &hs.Stock.Description, &hs.Stock.RiskLevel,
		&hs.Stock.LastUpdated, &hs.Stock.CreatedAt,
	)
}

func InsertHolding(db *sql.DB, h *Holding) error {
	now := time.Now()
	h.ID = uuid.New().String()
	h.LastUpdated = now
	h.CreatedAt = now
	if h.PurchaseDate.IsZero() {
		h.PurchaseDate = now
	}

	query := `
		INSERT INTO holdings (id, stock_id, shares, average_cost_basis, current_value,
			allocation_percentage, target_allocation_percentage, currency, purchase_date, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		h.ID, h.StockID, h.Shares, h.AverageCostBasis, h.CurrentValue,
		h.AllocationPercentage, h.TargetAllocationPercentage, h.Currency,
		h.PurchaseDate, h.LastUpdated, h.CreatedAt,
	)
	return err
}

func GetHoldingByID(db *sql.DB, id string) (*Holding, error) {
	var h Holding
	row := db.QueryRow(`SELECT `+holdingColumns+` FROM holdings h WHERE h.id = ?`, id)
	if err := scanHolding(row, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func GetHoldingWithStock(db *sql.DB, id string) (*HoldingWithStock, error) {
	var hs HoldingWithStock
	row := db.QueryRow(`
		SELECT `+holdingStockColumns+`
		FROM holdings h JOIN stocks s ON s.id = h.stock_id
		WHERE h.id = ?`, id)
	if err := scanHoldingWithStock(row, &hs); err != nil {
		return nil, err
	}
	return &hs, nil
}

func ListHoldingsWithStocks(db *sql.DB) ([]HoldingWithStock, error) {
	rows, err := db.Query(`
		SELECT ` + holdingStockColumns + `
		FROM holdings h JOIN stocks s ON s.id = h.stock_id
		ORDER BY s.tier, s.symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []HoldingWithStock
	for rows.Next() {
		var hs HoldingWithStock
		if err := scanHoldingWithStock(rows, &hs); err != nil {
			return nil, err
		}
		holdings = append(holdings, hs)
	}
	return holdings, rows.Err()
}

// ListHoldingsByTier returns the holdings whose stock sits in the given tier.
func ListHoldingsByTier(db *sql.DB, tier int) ([]HoldingWithStock, error) {
	rows, err := db.Query(`
		SELECT `+holdingStockColumns+`
		FROM holdings h JOIN stocks s ON s.id = h.stock_id
		WHERE s.tier = ?
		ORDER BY s.symbol`, tier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []HoldingWithStock
	for rows.Next() {
		var hs HoldingWithStock
		if err := scanHoldingWithStock(rows, &hs); err != nil {
			return nil, err
		}
		holdings = append(holdings, hs)
	}
	return holdings, rows.Err()
}

// UpdateHolding rewrites the client-mutable columns plus the recomputed value.
func UpdateHolding(db *sql.DB, h *Holding) error {
	h.LastUpdated = time.Now()
	query := `
		UPDATE holdings SET
			shares = ?, average_cost_basis = ?, current_value = ?,
			target_allocation_percentage = ?, last_updated = ?
		WHERE id = ?`
	res, err := db.Exec(query,
		h.Shares, h.AverageCostBasis, h.CurrentValue,
		h.TargetAllocationPercentage, h.LastUpdated, h.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateHoldingValue refreshes current_value after a new quote.
func UpdateHoldingValue(db *sql.DB, id string, value float64) error {
	_, err := db.Exec(`UPDATE holdings SET current_value = ?, last_updated = ? WHERE id = ?`, value, time.Now(), id)
	return err
}

func DeleteHolding(db *sql.DB, id string) error {
	res, err := db.Exec(`DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecalculateAllocations rewrites allocation_percentage on every holding so
// the percentages reflect each position's share of the current total value.
// The pass runs in one transaction; with a zero total it is a no-op.
func RecalculateAllocations(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id, current_value FROM holdings`)
	if err != nil {
		return err
	}

	type entry struct {
		id    string
		value float64
	}
	var entries []entry
	var totalValue float64
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.value); err != nil {
			rows.Close()
			return err
		}
		entries = append(entries, e)
		totalValue += e.value
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if totalValue == 0 {
		return tx.Commit()
	}

	stmt, err := tx.Prepare(`UPDATE holdings SET allocation_percentage = ?, last_updated = ? WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range entries {
		if _, err := stmt.Exec(e.value/totalValue*100, now, e.id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
