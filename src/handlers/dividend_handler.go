package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/divitrack/backend/src/database"
	"github.com/username/divitrack/backend/src/logger"
	"github.com/username/divitrack/backend/src/models"
	"github.com/username/divitrack/backend/src/processors"
	"github.com/username/divitrack/backend/src/services"
	"github.com/username/divitrack/backend/src/utils"
)

type DividendHandler struct {
	rates *services.RateService
}

func NewDividendHandler(rates *services.RateService) *DividendHandler {
	return &DividendHandler{rates: rates}
}

func (h *DividendHandler) HandleListDividends(w http.ResponseWriter, r *http.Request) {
	dividends, err := models.ListDividendsWithStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing dividends", "error", err)
		utils.SendJSONError(w, "Failed to fetch dividends", http.StatusInternalServerError)
		return
	}
	if dividends == nil {
		dividends = []models.DividendWithStock{}
	}
	utils.SendJSON(w, dividends, http.StatusOK)
}

func (h *DividendHandler) HandleListDividendsByStock(w http.ResponseWriter, r *http.Request) {
	dividends, err := models.ListDividendsByStock(database.DB, chi.URLParam(r, "stockId"))
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing dividends for stock", "error", err)
		utils.SendJSONError(w, "Failed to fetch dividends", http.StatusInternalServerError)
		return
	}
	if dividends == nil {
		dividends = []models.DividendWithStock{}
	}
	utils.SendJSON(w, dividends, http.StatusOK)
}

func (h *DividendHandler) HandleGetDividend(w http.ResponseWriter, r *http.Request) {
	dividend, err := models.GetDividendWithStock(database.DB, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Dividend not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching dividend", "error", err)
		utils.SendJSONError(w, "Failed to fetch dividend", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, dividend, http.StatusOK)
}

type createDividendRequest struct {
	StockID        string  `json:"stockId"`
	ExDate         string  `json:"exDate"`
	PaymentDate    string  `json:"paymentDate"`
	AmountPerShare float64 `json:"amountPerShare"`
	Shares         float64 `json:"shares"`
	Currency       string  `json:"currency"`
	Reinvested     bool    `json:"reinvested"`
	Notes          *string `json:"notes"`
}

func (h *DividendHandler) HandleCreateDividend(w http.ResponseWriter, r *http.Request) {
	var req createDividendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AmountPerShare < 0 || req.Shares < 0 {
		utils.SendJSONError(w, "Amounts must be non-negative", http.StatusBadRequest)
		return
	}

	exDate, err := parseDate(req.ExDate)
	if err != nil {
		utils.SendJSONError(w, "Invalid exDate", http.StatusBadRequest)
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		utils.SendJSONError(w, "Invalid paymentDate", http.StatusBadRequest)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = models.CurrencyUSD
	}
	if !models.IsSupportedCurrency(currency) {
		utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
		return
	}

	if _, err := models.GetStockByID(database.DB, req.StockID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Stock not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching stock for dividend", "error", err)
		utils.SendJSONError(w, "Failed to record dividend", http.StatusInternalServerError)
		return
	}

	dividend := models.Dividend{
		StockID:        req.StockID,
		ExDate:         exDate,
		PaymentDate:    paymentDate,
		AmountPerShare: req.AmountPerShare,
		Shares:         req.Shares,
		Currency:       currency,
		Reinvested:     req.Reinvested,
		Notes:          req.Notes,
	}
	if err := models.InsertDividend(database.DB, &dividend); err != nil {
		logger.FromContext(r.Context()).Error("Error inserting dividend", "error", err)
		utils.SendJSONError(w, "Failed to record dividend", http.StatusInternalServerError)
		return
	}

	created, err := models.GetDividendWithStock(database.DB, dividend.ID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error reloading created dividend", "error", err)
		utils.SendJSONError(w, "Failed to record dividend", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, created, http.StatusCreated)
}

type updateDividendRequest struct {
	ExDate         *string  `json:"exDate"`
	PaymentDate    *string  `json:"paymentDate"`
	AmountPerShare *float64 `json:"amountPerShare"`
	Shares         *float64 `json:"shares"`
	Currency       *string  `json:"currency"`
	Reinvested     *bool    `json:"reinvested"`
	Notes          *string  `json:"notes"`
}

func (h *DividendHandler) HandleUpdateDividend(w http.ResponseWriter, r *http.Request) {
	var req updateDividendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	dividend, err := models.GetDividendByID(database.DB, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Dividend not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error fetching dividend for update", "error", err)
		utils.SendJSONError(w, "Failed to update dividend", http.StatusInternalServerError)
		return
	}

	if req.ExDate != nil {
		exDate, err := parseDate(*req.ExDate)
		if err != nil {
			utils.SendJSONError(w, "Invalid exDate", http.StatusBadRequest)
			return
		}
		dividend.ExDate = exDate
	}
	if req.PaymentDate != nil {
		paymentDate, err := parseDate(*req.PaymentDate)
		if err != nil {
			utils.SendJSONError(w, "Invalid paymentDate", http.StatusBadRequest)
			return
		}
		dividend.PaymentDate = paymentDate
	}
	if req.AmountPerShare != nil {
		if *req.AmountPerShare < 0 {
			utils.SendJSONError(w, "Amounts must be non-negative", http.StatusBadRequest)
			return
		}
		dividend.AmountPerShare = *req.AmountPerShare
	}
	if req.Shares != nil {
		if *req.Shares < 0 {
			utils.SendJSONError(w, "Amounts must be non-negative", http.StatusBadRequest)
			return
		}
		dividend.Shares = *req.Shares
	}
	if req.Currency != nil {
		if !models.IsSupportedCurrency(*req.Currency) {
			utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
			return
		}
		dividend.Currency = *req.Currency
	}
	if req.Reinvested != nil {
		dividend.Reinvested = *req.Reinvested
	}
	if req.Notes != nil {
		dividend.Notes = req.Notes
	}

	if err := models.UpdateDividend(database.DB, dividend); err != nil {
		logger.FromContext(r.Context()).Error("Error updating dividend", "id", dividend.ID, "error", err)
		utils.SendJSONError(w, "Failed to update dividend", http.StatusInternalServerError)
		return
	}

	updated, err := models.GetDividendWithStock(database.DB, dividend.ID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error reloading updated dividend", "error", err)
		utils.SendJSONError(w, "Failed to update dividend", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, updated, http.StatusOK)
}

func (h *DividendHandler) HandleDeleteDividend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := models.DeleteDividend(database.DB, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Dividend not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Error deleting dividend", "id", id, "error", err)
		utils.SendJSONError(w, "Failed to delete dividend", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Dividend deleted successfully"}, http.StatusOK)
}

// HandleMonthlyIncome rolls up one calendar year of dividend income by month.
func (h *DividendHandler) HandleMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", time.Now().Year())
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	currency := queryCurrency(r, "currency", models.CurrencyUSD)
	if !models.IsSupportedCurrency(currency) {
		utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
		return
	}

	usdToHkd, err := h.rates.UsdToHkd()
	if err != nil {
		logger.FromContext(r.Context()).Error("Error resolving exchange rate", "error", err)
		utils.SendJSONError(w, "Failed to compute monthly income", http.StatusInternalServerError)
		return
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	dividends, err := models.ListDividendsInRange(database.DB, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading dividends for monthly income", "error", err)
		utils.SendJSONError(w, "Failed to compute monthly income", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, processors.MonthlyIncome(dividends, year, currency, usdToHkd), http.StatusOK)
}

// HandleYearlyIncome rolls up dividend income per year over a range of years.
func (h *DividendHandler) HandleYearlyIncome(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	startYear, err := queryInt(r, "startYear", now.Year()-5)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	endYear, err := queryInt(r, "endYear", now.Year())
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	currency := queryCurrency(r, "currency", models.CurrencyUSD)
	if !models.IsSupportedCurrency(currency) {
		utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
		return
	}

	usdToHkd, err := h.rates.UsdToHkd()
	if err != nil {
		logger.FromContext(r.Context()).Error("Error resolving exchange rate", "error", err)
		utils.SendJSONError(w, "Failed to compute yearly income", http.StatusInternalServerError)
		return
	}

	from := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(endYear, time.December, 31, 23, 59, 59, 0, time.UTC)
	dividends, err := models.ListDividendsInRange(database.DB, from, to)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading dividends for yearly income", "error", err)
		utils.SendJSONError(w, "Failed to compute yearly income", http.StatusInternalServerError)
		return
	}

	report, err := processors.YearlyIncome(dividends, startYear, endYear, currency, usdToHkd)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

// HandleUpcoming lists payments falling due within the next N days.
func (h *DividendHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if days < 1 {
		utils.SendJSONError(w, "Days must be a positive number", http.StatusBadRequest)
		return
	}

	now := time.Now()
	dividends, err := models.ListUpcomingDividends(database.DB, now, now.AddDate(0, 0, days))
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing upcoming dividends", "error", err)
		utils.SendJSONError(w, "Failed to fetch upcoming dividends", http.StatusInternalServerError)
		return
	}
	if dividends == nil {
		dividends = []models.DividendWithStock{}
	}
	utils.SendJSON(w, dividends, http.StatusOK)
}

// HandleForecast projects expected dividend income over the coming months
// from current holdings and each stock's payment frequency.
func (h *DividendHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", 12)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if months < 1 || months > 60 {
		utils.SendJSONError(w, "Months must be between 1 and 60", http.StatusBadRequest)
		return
	}

	currency := queryCurrency(r, "currency", models.CurrencyUSD)
	if !models.IsSupportedCurrency(currency) {
		utils.SendJSONError(w, "Invalid currency codes. Only USD and HKD are supported.", http.StatusBadRequest)
		return
	}

	usdToHkd, err := h.rates.UsdToHkd()
	if err != nil {
		logger.FromContext(r.Context()).Error("Error resolving exchange rate", "error", err)
		utils.SendJSONError(w, "Failed to compute dividend forecast", http.StatusInternalServerError)
		return
	}

	holdings, err := models.ListHoldingsWithStocks(database.DB)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading holdings for forecast", "error", err)
		utils.SendJSONError(w, "Failed to compute dividend forecast", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, processors.Forecast(holdings, months, currency, usdToHkd, time.Now()), http.StatusOK)
}
