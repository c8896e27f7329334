package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/divitrack/backend/src/database"
	"github.com/username/divitrack/backend/src/logger"
	"github.com/username/divitrack/backend/src/models"
	"github.com/username/divitrack/backend/src/processors"
	"github.com/username/divitrack/backend/src/services"
	"github.com/username/divitrack/backend/src/utils"
)

type PortfolioHandler struct {
	quoteService services.QuoteService
}

func NewPortfolioHandler(quoteService services.QuoteService) *PortfolioHandler {
	return &PortfolioHandler{quoteService: quoteService}
}

func (h *PortfolioHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := models.GetOrCreatePortfolio(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading portfolio", "error", err)
		utils.SendJSONError(w, "Failed to fetch portfolio information", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, portfolio, http.StatusOK)
}

type updatePortfolioRequest struct {
	TotalInvestment *float64 `json:"totalInvestment"`
	CashReserve     *float64 `json:"cashReserve"`
	Tier1Allocation *float64 `json:"tier1Allocation"`
	Tier2Allocation *float64 `json:"tier2Allocation"`
	Tier3Allocation *float64 `json:"tier3Allocation"`
	BaseCurrency    *string  `json:"baseCurrency"`
}

func (h *PortfolioHandler) HandleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req updatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	portfolio, err := models.GetOrCreatePortfolio(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading portfolio for update", "error", err)
		utils.SendJSONError(w, "Failed to update portfolio information", http.StatusInternalServerError)
		return
	}

	if req.TotalInvestment != nil {
		portfolio.TotalInvestment = *req.TotalInvestment
	}
	if req.CashReserve != nil {
		portfolio.CashReserve = *req.CashReserve
	}
	if req.Tier1Allocation != nil {
		portfolio.Tier1Allocation = *req.Tier1Allocation
	}
	if req.Tier2Allocation != nil {
		portfolio.Tier2Allocation = *req.Tier2Allocation
	}
	if req.Tier3Allocation != nil {
		portfolio.Tier3Allocation = *req.Tier3Allocation
	}
	if req.BaseCurrency != nil {
		if !models.IsSupportedCurrency(*req.BaseCurrency) {
			utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
			return
		}
		portfolio.BaseCurrency = *req.BaseCurrency
	}

	if err := models.UpdatePortfolio(database.DB, portfolio); err != nil {
		logger.FromContext(r.Context()).Error("Error updating portfolio", "error", err)
		utils.SendJSONError(w, "Failed to update portfolio information", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, portfolio, http.StatusOK)
}

func (h *PortfolioHandler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := models.ListHoldingsWithStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing holdings", "error", err)
		utils.SendJSONError(w, "Failed to fetch holdings", http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.HoldingWithStock{}
	}
	utils.SendJSON(w, holdings, http.StatusOK)
}

type createHoldingRequest struct {
	StockID                    string  `json:"stockId"`
	Shares                     float64 `json:"shares"`
	AverageCostBasis           float64 `json:"averageCostBasis"`
	TargetAllocationPercentage float64 `json:"targetAllocationPercentage"`
}

func (h *PortfolioHandler) HandleCreateHolding(w http.ResponseWriter, r *http.Request) {
	var req createHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Shares < 0 || req.AverageCostBasis < 0 {
		utils.SendJSONError(w, "Shares and cost basis must be non-negative", http.StatusBadRequest)
		return
	}

	stock, err := models.GetStockByID(database.DB, req.StockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Stock not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching stock for holding", "error", err)
		utils.SendJSONError(w, "Failed to add holding", http.StatusInternalServerError)
		return
	}

	quote, err := h.quoteService.GetQuote(stock.Symbol)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching quote for holding", "symbol", stock.Symbol, "error", err)
		utils.SendJSONError(w, "Failed to add holding", http.StatusInternalServerError)
		return
	}

	holding := models.Holding{
		StockID:                    stock.ID,
		Shares:                     req.Shares,
		AverageCostBasis:           req.AverageCostBasis,
		CurrentValue:               quote.RegularMarketPrice * req.Shares,
		TargetAllocationPercentage: req.TargetAllocationPercentage,
		Currency:                   stock.Currency,
	}
	if err := models.InsertHolding(database.DB, &holding); err != nil {
		logger.FromContext(r.Context()).Error("Error inserting holding", "error", err)
		utils.SendJSONError(w, "Failed to add holding", http.StatusInternalServerError)
		return
	}

	if err := models.RecalculateAllocations(database.DB); err != nil {
		logger.FromContext(r.Context()).Error("Error recalculating allocations", "error", err)
		utils.SendJSONError(w, "Failed to add holding", http.StatusInternalServerError)
		return
	}

	created, err := models.GetHoldingWithStock(database.DB, holding.ID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error reloading created holding", "error", err)
		utils.SendJSONError(w, "Failed to add holding", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, created, http.StatusCreated)
}

func (h *PortfolioHandler) HandleGetHolding(w http.ResponseWriter, r *http.Request) {
	holding, err := models.GetHoldingWithStock(database.DB, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Holding not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching holding", "error", err)
		utils.SendJSONError(w, "Failed to fetch holding", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, holding, http.StatusOK)
}

type updateHoldingRequest struct {
	Shares                     *float64 `json:"shares"`
	AverageCostBasis           *float64 `json:"averageCostBasis"`
	TargetAllocationPercentage *float64 `json:"targetAllocationPercentage"`
}

func (h *PortfolioHandler) HandleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	var req updateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	holding, err := models.GetHoldingByID(database.DB, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Holding not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching holding for update", "error", err)
		utils.SendJSONError(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}

	if req.Shares != nil {
		if *req.Shares < 0 {
			utils.SendJSONError(w, "Shares must be non-negative", http.StatusBadRequest)
			return
		}
		holding.Shares = *req.Shares
	}
	if req.AverageCostBasis != nil {
		holding.AverageCostBasis = *req.AverageCostBasis
	}
	if req.TargetAllocationPercentage != nil {
		holding.TargetAllocationPercentage = *req.TargetAllocationPercentage
	}

	stock, err := models.GetStockByID(database.DB, holding.StockID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching stock for holding update", "error", err)
		utils.SendJSONError(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}

	quote, err := h.quoteService.GetQuote(stock.Symbol)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching quote for holding update", "symbol", stock.Symbol, "error", err)
		utils.SendJSONError(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}
	holding.CurrentValue = quote.RegularMarketPrice * holding.Shares

	if err := models.UpdateHolding(database.DB, holding); err != nil {
		logger.FromContext(r.Context()).Error("Error updating holding", "id", holding.ID, "error", err)
		utils.SendJSONError(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}

	if err := models.RecalculateAllocations(database.DB); err != nil {
		logger.FromContext(r.Context()).Error("Error recalculating allocations", "error", err)
		utils.SendJSONError(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}

	updated, err := models.GetHoldingWithStock(database.DB, holding.ID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error reloading updated holding", "error", err)
		utils.SendJSONError(w, "Failed to update holding", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, updated, http.StatusOK)
}

func (h *PortfolioHandler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := models.DeleteHolding(database.DB, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Holding not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error deleting holding", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to delete holding", http.StatusInternalServerError)
		return
	}

	if err := models.RecalculateAllocations(database.DB); err != nil {
		logger.FromContext(r.Context()).Error("Error recalculating allocations after delete", "error", err)
		utils.SendJSONError(w, "Failed to delete holding", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Holding deleted successfully"}, http.StatusOK)
}

// HandleRebalance computes buy/sell recommendations against the target
// allocations and stamps the portfolio's lastRebalanced time.
func (h *PortfolioHandler) HandleRebalance(w http.ResponseWriter, r *http.Request) {
	portfolio, err := models.GetOrCreatePortfolio(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading portfolio for rebalance", "error", err)
		utils.SendJSONError(w, "Failed to generate rebalancing recommendations", http.StatusInternalServerError)
		return
	}

	holdings, err := models.ListHoldingsWithStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing holdings for rebalance", "error", err)
		utils.SendJSONError(w, "Failed to generate rebalancing recommendations", http.StatusInternalServerError)
		return
	}

	totalValue := processors.TotalValue(holdings)
	recommendations := processors.Recommendations(holdings, totalValue)

	if err := models.TouchLastRebalanced(database.DB); err != nil {
		logger.FromContext(r.Context()).Error("Error updating lastRebalanced", "error", err)
	}

	utils.SendJSON(w, map[string]any{
		"totalValue":      totalValue,
		"cashReserve":     portfolio.CashReserve,
		"totalWithCash":   totalValue + portfolio.CashReserve,
		"recommendations": recommendations,
	}, http.StatusOK)
}

// HandleTierHoldings returns the holdings of one tier with the tier's total
// value compared against the portfolio target.
func (h *PortfolioHandler) HandleTierHoldings(w http.ResponseWriter, r *http.Request) {
	tier, err := strconv.Atoi(chi.URLParam(r, "tier"))
	if err != nil || tier < 1 || tier > 3 {
		utils.SendJSONError(w, "Invalid tier. Must be 1, 2, or 3.", http.StatusBadRequest)
		return
	}

	holdings, err := models.ListHoldingsByTier(database.DB, tier)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing tier holdings", "tier", tier, "error", err)
		utils.SendJSONError(w, "Failed to fetch tier holdings", http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.HoldingWithStock{}
	}

	portfolio, err := models.GetOrCreatePortfolio(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading portfolio for tier view", "error", err)
		utils.SendJSONError(w, "Failed to fetch tier holdings", http.StatusInternalServerError)
		return
	}

	tierTotal := processors.TotalValue(holdings)
	tierAllocation := portfolio.TierTarget(tier)

	utils.SendJSON(w, map[string]any{
		"tier":           tier,
		"holdings":       holdings,
		"tierTotal":      tierTotal,
		"tierAllocation": tierAllocation,
		"difference":     tierTotal - tierAllocation,
	}, http.StatusOK)
}

// HandleUpdateHoldingPrices refreshes every holding's value (and its stock's
// price) from the quote provider, then rewrites the allocation percentages.
func (h *PortfolioHandler) HandleUpdateHoldingPrices(w http.ResponseWriter, r *http.Request) {
	holdings, err := models.ListHoldingsWithStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing holdings for price update", "error", err)
		utils.SendJSONError(w, "Failed to update prices", http.StatusInternalServerError)
		return
	}

	symbols := make([]string, len(holdings))
	for i, hs := range holdings {
		symbols[i] = hs.Stock.Symbol
	}

	quotes, err := h.quoteService.GetBatchQuotes(symbols)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching batch quotes for holdings", "error", err)
		utils.SendJSONError(w, "Failed to update prices", http.StatusInternalServerError)
		return
	}

	for _, hs := range holdings {
		quote, ok := quotes[hs.Stock.Symbol]
		if !ok {
			continue
		}
		if err := models.UpdateHoldingValue(database.DB, hs.ID, quote.RegularMarketPrice*hs.Shares); err != nil {
			logger.FromContext(r.Context()).Error("Error updating holding value", "id", hs.ID, "error", err)
			continue
		}
		if err := models.UpdateStockPrice(database.DB, hs.Stock.ID, quote.RegularMarketPrice); err != nil {
			logger.FromContext(r.Context()).Error("Error updating stock price", "symbol", hs.Stock.Symbol, "error", err)
		}
	}

	if err := models.RecalculateAllocations(database.DB); err != nil {
		logger.FromContext(r.Context()).Error("Error recalculating allocations after price update", "error", err)
		utils.SendJSONError(w, "Failed to update prices", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Prices updated successfully"}, http.StatusOK)
}
