package models

import (
	"database/sql"
	"time"
)

// Portfolio is the single strategy record: total capital, cash reserve and
// the per-tier dollar targets. It lives in a fixed singleton row.
type Portfolio struct {
	ID              int       `json:"id"`
	TotalInvestment float64   `json:"totalInvestment"`
	CashReserve     float64   `json:"cashReserve"`
	Tier1Allocation float64   `json:"tier1Allocation"`
	Tier2Allocation float64   `json:"tier2Allocation"`
	Tier3Allocation float64   `json:"tier3Allocation"`
	BaseCurrency    string    `json:"baseCurrency"`
	LastRebalanced  time.Time `json:"lastRebalanced"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

const portfolioRowID = 1

// Default strategy split: 15% cash, 55% tier 1, 25% tier 2, 5% tier 3 of 165k.
func defaultPortfolio() Portfolio {
	now := time.Now()
	return Portfolio{
		ID:              portfolioRowID,
		TotalInvestment: 165000,
		CashReserve:     24750,
		Tier1Allocation: 90750,
		Tier2Allocation: 41250,
		Tier3Allocation: 8250,
		BaseCurrency:    CurrencyUSD,
		LastRebalanced:  now,
		LastUpdated:     now,
	}
}

// GetOrCreatePortfolio returns the singleton portfolio row, creating it with
// the strategy defaults on first use.
func GetOrCreatePortfolio(db *sql.DB) (*Portfolio, error) {
	var p Portfolio
	row := db.QueryRow(`
		SELECT id, total_investment, cash_reserve, tier1_allocation, tier2_allocation,
			tier3_allocation, base_currency, last_rebalanced, last_updated
		FROM portfolio WHERE id = ?`, portfolioRowID)
	err := row.Scan(&p.ID, &p.TotalInvestment, &p.CashReserve, &p.Tier1Allocation,
		&p.Tier2Allocation, &p.Tier3Allocation, &p.BaseCurrency, &p.LastRebalanced, &p.LastUpdated)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	p = defaultPortfolio()
	_, err = db.Exec(`
		INSERT INTO portfolio (id, total_investment, cash_reserve, tier1_allocation,
			tier2_allocation, tier3_allocation, base_currency, last_rebalanced, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TotalInvestment, p.CashReserve, p.Tier1Allocation,
		p.Tier2Allocation, p.Tier3Allocation, p.BaseCurrency, p.LastRebalanced, p.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePortfolio rewrites the strategy fields and bumps last_updated.
func UpdatePortfolio(db *sql.DB, p *Portfolio) error {
	p.LastUpdated = time.Now()
	_, err := db.Exec(`
		UPDATE portfolio SET
			total_investment = ?, cash_reserve = ?, tier1_allocation = ?,
			tier2_allocation = ?, tier3_allocation = ?, base_currency = ?, last_updated = ?
		WHERE id = ?`,
		p.TotalInvestment, p.CashReserve, p.Tier1Allocation,
		p.Tier2Allocation, p.Tier3Allocation, p.BaseCurrency, p.LastUpdated, portfolioRowID)
	return err
}

// TouchLastRebalanced records that rebalance recommendations were computed.
func TouchLastRebalanced(db *sql.DB) error {
	_, err := db.Exec(`UPDATE portfolio SET last_rebalanced = ? WHERE id = ?`, time.Now(), portfolioRowID)
	return err
}

// TierTarget returns the dollar allocation target for a tier (1-3).
func (p *Portfolio) TierTarget(tier int) float64 {
	switch tier {
	case 1:
		return p.Tier1Allocation
	case 2:
		return p.Tier2Allocation
	case 3:
		return p.Tier3Allocation
	}
	return 0
}
