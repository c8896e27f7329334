package processors

import (
	"math"
	"testing"

	"github.com/username/divitrack/backend/src/models"
)

func position(id, symbol string, tier int, value, shares, target float64) models.HoldingWithStock {
	return models.HoldingWithStock{
		Holding: models.Holding{
			ID:                         id,
			Shares:                     shares,
			CurrentValue:               value,
			TargetAllocationPercentage: target,
		},
		Stock: models.Stock{Symbol: symbol, Name: symbol, Tier: tier},
	}
}

func TestTotalValue(t *testing.T) {
	holdings := []models.HoldingWithStock{
		position("a", "CLM", 1, 50000, 100, 25),
		position("b", "QQQY", 2, 150000, 200, 75),
	}
	if got := TotalValue(holdings); !approxEqual(got, 200000) {
		t.Errorf("got %v, want 200000", got)
	}
}

func TestRecommendationsThresholdBoundary(t *testing.T) {
	// 24% current vs 25% target is exactly one point off: no recommendation.
	holdings := []models.HoldingWithStock{
		position("a", "CLM", 1, 24000, 100, 25),
		position("b", "QQQY", 2, 76000, 100, 76),
	}
	recs := Recommendations(holdings, 100000)
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations at the 1pp boundary, got %d", len(recs))
	}

	// 22% vs 25% crosses the threshold and asks for a buy.
	holdings[0].CurrentValue = 22000
	holdings[1].CurrentValue = 78000
	recs = Recommendations(holdings, 100000)

	var found bool
	for _, rec := range recs {
		if rec.Symbol == "CLM" {
			found = true
			if rec.Action != "Buy" {
				t.Errorf("CLM action: got %q, want Buy", rec.Action)
			}
			if !approxEqual(rec.AmountToAdjust, 3000) {
				t.Errorf("CLM amount: got %v, want 3000", rec.AmountToAdjust)
			}
		}
	}
	if !found {
		t.Fatal("expected a recommendation for CLM")
	}
}

func TestRecommendationsSellAndShareCount(t *testing.T) {
	// 50000 of 200000 is 25% against a 20% target: sell 10000 worth.
	holdings := []models.HoldingWithStock{
		position("a", "GOF", 1, 50000, 1000, 20),
		position("b", "YYY", 1, 150000, 500, 80),
	}
	recs := Recommendations(holdings, 200000)

	var rec *Recommendation
	for i := range recs {
		if recs[i].Symbol == "GOF" {
			rec = &recs[i]
		}
	}
	if rec == nil {
		t.Fatal("expected a recommendation for GOF")
	}
	if rec.Action != "Sell" {
		t.Errorf("action: got %q, want Sell", rec.Action)
	}
	if !approxEqual(rec.AmountToAdjust, 10000) {
		t.Errorf("amount: got %v, want 10000", rec.AmountToAdjust)
	}
	// Price per share is 50, so 10000 is 200 shares.
	if !approxEqual(rec.SharesCount, 200) {
		t.Errorf("shares: got %v, want 200", rec.SharesCount)
	}
}

func TestRecommendationsSortedByImbalance(t *testing.T) {
	holdings := []models.HoldingWithStock{
		position("a", "USA", 1, 30000, 100, 33),  // 3pp under
		position("b", "ECC", 1, 20000, 100, 30),  // 10pp under
		position("c", "REM", 1, 50000, 100, 37),  // 13pp over
	}
	recs := Recommendations(holdings, 100000)

	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if math.Abs(recs[i].Difference) > math.Abs(recs[i-1].Difference) {
			t.Errorf("recommendations not sorted by imbalance: %v before %v",
				recs[i-1].Difference, recs[i].Difference)
		}
	}
	if recs[0].Symbol != "REM" {
		t.Errorf("largest imbalance first: got %q, want REM", recs[0].Symbol)
	}
}

func TestRecommendationsZeroTotal(t *testing.T) {
	holdings := []models.HoldingWithStock{
		position("a", "CLM", 1, 0, 0, 25),
	}
	recs := Recommendations(holdings, 0)
	if len(recs) != 0 {
		t.Errorf("expected no recommendations for a zero total, got %d", len(recs))
	}
}

func TestSharesCountRounding(t *testing.T) {
	// 1000 to adjust at 3 per share is 333.333...: rounded to 2 decimals.
	holdings := []models.HoldingWithStock{
		position("a", "PSEC", 1, 3000, 1000, 50),
		position("b", "BCAT", 1, 7000, 100, 50),
	}
	recs := Recommendations(holdings, 10000)

	for _, rec := range recs {
		if rec.Symbol != "PSEC" {
			continue
		}
		scaled := rec.SharesCount * 100
		if !approxEqual(scaled, math.Round(scaled)) {
			t.Errorf("shares count not rounded to 2 decimals: %v", rec.SharesCount)
		}
	}
}
