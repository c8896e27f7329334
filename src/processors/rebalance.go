package processors

import (
	"math"
	"sort"

	"github.com/username/divitrack/backend/src/models"
)

// rebalanceThreshold is the imbalance, in percentage points, below which no
// recommendation is emitted.
const rebalanceThreshold = 1.0

// Recommendation proposes a buy or sell to close an allocation gap.
type Recommendation struct {
	HoldingID         string  `json:"holdingId"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Tier              int     `json:"tier"`
	CurrentAllocation float64 `json:"currentAllocation"`
	TargetAllocation  float64 `json:"targetAllocation"`
	Difference        float64 `json:"difference"`
	Action            string  `json:"action"`
	AmountToAdjust    float64 `json:"amountToAdjust"`
	SharesCount       float64 `json:"sharesCount"`
}

// TotalValue sums current value across holdings; cash is not included.
func TotalValue(holdings []models.HoldingWithStock) float64 {
	var total float64
	for _, h := range holdings {
		total += h.CurrentValue
	}
	return total
}

// Recommendations computes the rebalancing proposals for the holdings against
// their target allocations. A holding gets a recommendation only when its
// current allocation is more than one percentage point away from target.
// Results are ordered largest imbalance first.
func Recommendations(holdings []models.HoldingWithStock, totalValue float64) []Recommendation {
	recommendations := []Recommendation{}
	if totalValue == 0 {
		return recommendations
	}

	for _, h := range holdings {
		currentAllocation := h.CurrentValue / totalValue * 100
		difference := h.TargetAllocationPercentage - currentAllocation
		if math.Abs(difference) <= rebalanceThreshold {
			continue
		}

		action := "Sell"
		if difference > 0 {
			action = "Buy"
		}
		amountToAdjust := math.Abs(difference / 100 * totalValue)

		var sharesCount float64
		if h.Shares > 0 && h.CurrentValue > 0 {
			sharesCount = amountToAdjust / (h.CurrentValue / h.Shares)
		}

		recommendations = append(recommendations, Recommendation{
			HoldingID:         h.ID,
			Symbol:            h.Stock.Symbol,
			Name:              h.Stock.Name,
			Tier:              h.Stock.Tier,
			CurrentAllocation: currentAllocation,
			TargetAllocation:  h.TargetAllocationPercentage,
			Difference:        difference,
			Action:            action,
			AmountToAdjust:    amountToAdjust,
			SharesCount:       math.Round(sharesCount*100) / 100,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		return math.Abs(recommendations[i].Difference) > math.Abs(recommendations[j].Difference)
	})
	return recommendations
}
