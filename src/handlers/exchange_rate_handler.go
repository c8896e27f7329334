package handlers

import (
	"net/http"
	"strconv"

	"github.com/username/divitrack/backend/src/logger"
	"github.com/username/divitrack/backend/src/models"
	"github.com/username/divitrack/backend/src/services"
	"github.com/username/divitrack/backend/src/utils"
)

type ExchangeRateHandler struct {
	rates *services.RateService
}

func NewExchangeRateHandler(rates *services.RateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{rates: rates}
}

func queryPair(r *http.Request) (from, to string) {
	from = queryCurrency(r, "from", models.CurrencyUSD)
	to = queryCurrency(r, "to", models.CurrencyHKD)
	return from, to
}

func (h *ExchangeRateHandler) HandleCurrentRate(w http.ResponseWriter, r *http.Request) {
	from, to := queryPair(r)
	if !models.IsSupportedCurrency(from) || !models.IsSupportedCurrency(to) {
		utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
		return
	}

	rate, err := h.rates.CurrentRate(from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error resolving current rate", "from", from, "to", to, "error", err)
		utils.SendJSONError(w, "Failed to fetch exchange rate", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, rate, http.StatusOK)
}

func (h *ExchangeRateHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	from, to := queryPair(r)
	if !models.IsSupportedCurrency(from) || !models.IsSupportedCurrency(to) {
		utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
		return
	}

	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		utils.SendJSONError(w, "Valid amount is required", http.StatusBadRequest)
		return
	}

	result, err := h.rates.Convert(amount, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error converting amount", "from", from, "to", to, "error", err)
		utils.SendJSONError(w, "Failed to convert amount", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *ExchangeRateHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	from, to := queryPair(r)
	if !models.IsSupportedCurrency(from) || !models.IsSupportedCurrency(to) {
		utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
		return
	}

	days, err := queryInt(r, "days", 30)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	history, err := h.rates.History(from, to, days)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading rate history", "from", from, "to", to, "error", err)
		utils.SendJSONError(w, "Failed to fetch exchange rate history", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []models.ExchangeRate{}
	}
	utils.SendJSON(w, history, http.StatusOK)
}

func (h *ExchangeRateHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	usdToHkd, hkdToUsd, err := h.rates.RefreshRates()
	if err != nil {
		logger.FromContext(r.Context()).Error("Error refreshing exchange rates", "error", err)
		utils.SendJSONError(w, "Failed to refresh exchange rates", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]any{
		"message": "Exchange rates refreshed successfully",
		"rates": map[string]any{
			"usdToHkd": usdToHkd,
			"hkdToUsd": hkdToUsd,
		},
	}, http.StatusOK)
}
