package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/divitrack/backend/src/database"
	"github.com/username/divitrack/backend/src/logger"
	"github.com/username/divitrack/backend/src/models"
	"github.com/username/divitrack/backend/src/services"
	"github.com/username/divitrack/backend/src/utils"
)

type StockHandler struct {
	quoteService services.QuoteService
}

func NewStockHandler(quoteService services.QuoteService) *StockHandler {
	return &StockHandler{quoteService: quoteService}
}

func (h *StockHandler) HandleListStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := models.ListStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing stocks", "error", err)
		utils.SendJSONError(w, "Failed to fetch stocks", http.StatusInternalServerError)
		return
	}
	if stocks == nil {
		stocks = []models.Stock{}
	}
	utils.SendJSON(w, stocks, http.StatusOK)
}

func (h *StockHandler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	stock, err := models.GetStockByID(database.DB, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Stock not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching stock", "error", err)
		utils.SendJSONError(w, "Failed to fetch stock", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, stock, http.StatusOK)
}

func (h *StockHandler) HandleListStocksByTier(w http.ResponseWriter, r *http.Request) {
	tier, err := strconv.Atoi(chi.URLParam(r, "tier"))
	if err != nil || tier < 1 || tier > 3 {
		utils.SendJSONError(w, "Invalid tier. Must be 1, 2, or 3.", http.StatusBadRequest)
		return
	}

	stocks, err := models.ListStocksByTier(database.DB, tier)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing stocks by tier", "tier", tier, "error", err)
		utils.SendJSONError(w, "Failed to fetch stocks", http.StatusInternalServerError)
		return
	}
	if stocks == nil {
		stocks = []models.Stock{}
	}
	utils.SendJSON(w, stocks, http.StatusOK)
}

type createStockRequest struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Tier              int     `json:"tier"`
	TierCategory      string  `json:"tierCategory"`
	SubCategory       *string `json:"subCategory"`
	DividendYield     float64 `json:"dividendYield"`
	DividendFrequency string  `json:"dividendFrequency"`
	Description       *string `json:"description"`
	RiskLevel         string  `json:"riskLevel"`
}

func (h *StockHandler) HandleCreateStock(w http.ResponseWriter, r *http.Request) {
	var req createStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" || req.Name == "" {
		utils.SendJSONError(w, "Symbol and name are required", http.StatusBadRequest)
		return
	}
	if req.Tier < 1 || req.Tier > 3 {
		utils.SendJSONError(w, "Invalid tier. Must be 1, 2, or 3.", http.StatusBadRequest)
		return
	}

	if _, err := models.GetStockBySymbol(database.DB, req.Symbol); err == nil {
		utils.SendJSONError(w, "Stock already exists", http.StatusBadRequest)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logger.FromContext(r.Context()).Error("Error checking existing stock", "error", err)
		utils.SendJSONError(w, "Failed to add stock", http.StatusInternalServerError)
		return
	}

	quote, err := h.quoteService.GetQuote(req.Symbol)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching quote for new stock", "symbol", req.Symbol, "error", err)
		utils.SendJSONError(w, "Failed to add stock", http.StatusInternalServerError)
		return
	}

	stock := models.Stock{
		Symbol:            req.Symbol,
		Name:              req.Name,
		Tier:              req.Tier,
		TierCategory:      req.TierCategory,
		SubCategory:       req.SubCategory,
		CurrentPrice:      quote.RegularMarketPrice,
		Currency:          models.CurrencyUSD,
		DividendYield:     req.DividendYield,
		DividendFrequency: req.DividendFrequency,
		Description:       req.Description,
		RiskLevel:         req.RiskLevel,
	}
	if stock.TierCategory == "" {
		stock.TierCategory = "Anchor Funds"
	}
	if stock.DividendFrequency == "" {
		stock.DividendFrequency = models.FrequencyQuarterly
	}
	if stock.RiskLevel == "" {
		stock.RiskLevel = "Moderate"
	}

	if err := models.InsertStock(database.DB, &stock); err != nil {
		logger.FromContext(r.Context()).Error("Error inserting stock", "symbol", req.Symbol, "error", err)
		utils.SendJSONError(w, "Failed to add stock", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, stock, http.StatusCreated)
}

type updateStockRequest struct {
	Name              *string  `json:"name"`
	Tier              *int     `json:"tier"`
	TierCategory      *string  `json:"tierCategory"`
	SubCategory       *string  `json:"subCategory"`
	DividendYield     *float64 `json:"dividendYield"`
	DividendFrequency *string  `json:"dividendFrequency"`
	NextDividendDate  *string  `json:"nextDividendDate"`
	Description       *string  `json:"description"`
	RiskLevel         *string  `json:"riskLevel"`
}

func (h *StockHandler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	stock, err := models.GetStockByID(database.DB, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Stock not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching stock for update", "error", err)
		utils.SendJSONError(w, "Failed to update stock", http.StatusInternalServerError)
		return
	}

	if req.Name != nil {
		stock.Name = *req.Name
	}
	if req.Tier != nil {
		if *req.Tier < 1 || *req.Tier > 3 {
			utils.SendJSONError(w, "Invalid tier. Must be 1, 2, or 3.", http.StatusBadRequest)
			return
		}
		stock.Tier = *req.Tier
	}
	if req.TierCategory != nil {
		stock.TierCategory = *req.TierCategory
	}
	if req.SubCategory != nil {
		stock.SubCategory = req.SubCategory
	}
	if req.DividendYield != nil {
		stock.DividendYield = *req.DividendYield
	}
	if req.DividendFrequency != nil {
		stock.DividendFrequency = *req.DividendFrequency
	}
	if req.NextDividendDate != nil {
		next, err := parseDate(*req.NextDividendDate)
		if err != nil {
			utils.SendJSONError(w, "Invalid nextDividendDate", http.StatusBadRequest)
			return
		}
		stock.NextDividendDate = &next
	}
	if req.Description != nil {
		stock.Description = req.Description
	}
	if req.RiskLevel != nil {
		stock.RiskLevel = *req.RiskLevel
	}

	if err := models.UpdateStock(database.DB, stock); err != nil {
		logger.FromContext(r.Context()).Error("Error updating stock", "id", stock.ID, "error", err)
		utils.SendJSONError(w, "Failed to update stock", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, stock, http.StatusOK)
}

func (h *StockHandler) HandleDeleteStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := models.GetStockByID(database.DB, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Stock not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching stock for delete", "error", err)
		utils.SendJSONError(w, "Failed to delete stock", http.StatusInternalServerError)
		return
	}

	references, err := models.StockReferenceCount(database.DB, id)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error counting stock references", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to delete stock", http.StatusInternalServerError)
		return
	}
	if references > 0 {
		utils.SendJSONError(w, "Stock is referenced by holdings or dividends and cannot be deleted", http.StatusBadRequest)
		return
	}

	if err := models.DeleteStock(database.DB, id); err != nil {
		logger.FromContext(r.Context()).Error("Error deleting stock", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to delete stock", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Stock deleted successfully"}, http.StatusOK)
}

// HandleInitializeStocks seeds the fixed three-tier catalog into an empty
// stocks table, pricing each symbol through the quote provider.
func (h *StockHandler) HandleInitializeStocks(w http.ResponseWriter, r *http.Request) {
	count, err := models.CountStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error counting stocks", "error", err)
		utils.SendJSONError(w, "Failed to initialize stocks", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		utils.SendJSON(w, map[string]any{"error": "Stocks already initialized", "count": count}, http.StatusBadRequest)
		return
	}

	catalog := models.SeedCatalog()
	symbols := make([]string, len(catalog))
	for i, s := range catalog {
		symbols[i] = s.Symbol
	}

	quotes, err := h.quoteService.GetBatchQuotes(symbols)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching catalog quotes", "error", err)
		utils.SendJSONError(w, "Failed to initialize stocks", http.StatusInternalServerError)
		return
	}

	for i := range catalog {
		if quote, ok := quotes[catalog[i].Symbol]; ok {
			catalog[i].CurrentPrice = quote.RegularMarketPrice
		}
		if err := models.InsertStock(database.DB, &catalog[i]); err != nil {
			logger.FromContext(r.Context()).Error("Error inserting catalog stock", "symbol", catalog[i].Symbol, "error", err)
			utils.SendJSONError(w, "Failed to initialize stocks", http.StatusInternalServerError)
			return
		}
	}

	utils.SendJSON(w, map[string]any{
		"message": "Stocks initialized successfully",
		"count":   len(catalog),
	}, http.StatusCreated)
}

// HandleUpdateStockPrices refreshes the current price of every stock from the
// quote provider. Symbols the provider cannot resolve keep their old price.
func (h *StockHandler) HandleUpdateStockPrices(w http.ResponseWriter, r *http.Request) {
	stocks, err := models.ListStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing stocks for price update", "error", err)
		utils.SendJSONError(w, "Failed to update prices", http.StatusInternalServerError)
		return
	}

	symbols := make([]string, len(stocks))
	for i, s := range stocks {
		symbols[i] = s.Symbol
	}

	quotes, err := h.quoteService.GetBatchQuotes(symbols)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching batch quotes", "error", err)
		utils.SendJSONError(w, "Failed to update prices", http.StatusInternalServerError)
		return
	}

	updated := 0
	for _, stock := range stocks {
		quote, ok := quotes[stock.Symbol]
		if !ok {
			continue
		}
		if err := models.UpdateStockPrice(database.DB, stock.ID, quote.RegularMarketPrice); err != nil {
			logger.FromContext(r.Context()).Error("Error updating stock price", "symbol", stock.Symbol, "error", err)
			continue
		}
		updated++
	}

	logger.FromContext(r.Context()).Info("Stock prices updated", "updated", updated, "total", len(stocks))
	utils.SendJSON(w, map[string]string{"message": "Stock prices updated successfully"}, http.StatusOK)
}
