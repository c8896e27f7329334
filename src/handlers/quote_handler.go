package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/divitrack/backend/src/logger"
	"github.com/username/divitrack/backend/src/services"
	"github.com/username/divitrack/backend/src/utils"
)

// QuoteHandler exposes the raw quote provider: per-symbol quotes, batch
// lookups and cache control.
type QuoteHandler struct {
	quoteService services.QuoteService
}

func NewQuoteHandler(quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

func (h *QuoteHandler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	quote, err := h.quoteService.GetQuote(symbol)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching quote", "symbol", symbol, "error", err)
		utils.SendJSONError(w, "Failed to fetch stock quote", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, quote, http.StatusOK)
}

func (h *QuoteHandler) HandleBatchQuotes(w http.ResponseWriter, r *http.Request) {
	symbolsParam := r.URL.Query().Get("symbols")
	if symbolsParam == "" {
		utils.SendJSONError(w, "Symbols parameter is required", http.StatusBadRequest)
		return
	}

	symbols := strings.Split(strings.ToUpper(symbolsParam), ",")
	for i := range symbols {
		symbols[i] = strings.TrimSpace(symbols[i])
	}

	quotes, err := h.quoteService.GetBatchQuotes(symbols)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching batch quotes", "error", err)
		utils.SendJSONError(w, "Failed to fetch batch quotes", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, quotes, http.StatusOK)
}

// HandleDividendEstimates returns the symbol's projected payment schedule.
func (h *QuoteHandler) HandleDividendEstimates(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	estimates, err := h.quoteService.GetDividendEstimates(symbol)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error fetching dividend estimates", "symbol", symbol, "error", err)
		utils.SendJSONError(w, "Failed to fetch dividend history", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, estimates, http.StatusOK)
}

func (h *QuoteHandler) HandleRefreshSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	quote, err := h.quoteService.RefreshSymbol(symbol)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error refreshing symbol", "symbol", symbol, "error", err)
		utils.SendJSONError(w, "Failed to refresh stock data", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]any{
		"message": "Data for " + symbol + " refreshed successfully",
		"data":    quote,
	}, http.StatusOK)
}

func (h *QuoteHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.quoteService.ClearCache()
	utils.SendJSON(w, map[string]string{"message": "Cache cleared successfully"}, http.StatusOK)
}
