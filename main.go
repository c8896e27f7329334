package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/divitrack/backend/src/config"
	"github.com/username/divitrack/backend/src/database"
	"github.com/username/divitrack/backend/src/handlers"
	"github.com/username/divitrack/backend/src/logger"
	"github.com/username/divitrack/backend/src/models"
	"github.com/username/divitrack/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := make(map[string]bool, len(config.Cfg.AllowedOrigins))
		for _, o := range config.Cfg.AllowedOrigins {
			allowed[o] = true
		}

		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("DiviTrack backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	if n, err := models.SeedSupplementalStocks(database.DB); err != nil {
		logger.L.Error("Failed to seed supplemental stocks", "error", err)
	} else if n > 0 {
		logger.L.Info("Supplemental stocks added", "count", n)
	}

	quoteService := services.NewQuoteService(config.Cfg.QuoteCacheTTL, config.Cfg.QuoteClientTimeout)
	rateService := services.NewRateService(database.DB, quoteService, config.Cfg.RateFreshnessWindow)

	stockHandler := handlers.NewStockHandler(quoteService)
	portfolioHandler := handlers.NewPortfolioHandler(quoteService)
	dividendHandler := handlers.NewDividendHandler(rateService)
	exchangeRateHandler := handlers.NewExchangeRateHandler(rateService)
	quoteHandler := handlers.NewQuoteHandler(quoteService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "DiviTrack Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/stocks/initialize", stockHandler.HandleInitializeStocks)
		r.Get("/stocks/update-prices", stockHandler.HandleUpdateStockPrices)
		r.Get("/stocks/tier/{tier}", stockHandler.HandleListStocksByTier)
		r.Get("/stocks", stockHandler.HandleListStocks)
		r.Post("/stocks", stockHandler.HandleCreateStock)
		r.Get("/stocks/{id}", stockHandler.HandleGetStock)
		r.Put("/stocks/{id}", stockHandler.HandleUpdateStock)
		r.Delete("/stocks/{id}", stockHandler.HandleDeleteStock)

		r.Get("/portfolio", portfolioHandler.HandleGetPortfolio)
		r.Put("/portfolio", portfolioHandler.HandleUpdatePortfolio)
		r.Get("/portfolio/holdings", portfolioHandler.HandleListHoldings)
		r.Post("/portfolio/holdings", portfolioHandler.HandleCreateHolding)
		r.Get("/portfolio/holdings/{id}", portfolioHandler.HandleGetHolding)
		r.Put("/portfolio/holdings/{id}", portfolioHandler.HandleUpdateHolding)
		r.Delete("/portfolio/holdings/{id}", portfolioHandler.HandleDeleteHolding)
		r.Get("/portfolio/rebalance", portfolioHandler.HandleRebalance)
		r.Get("/portfolio/tier/{tier}", portfolioHandler.HandleTierHoldings)
		r.Get("/portfolio/update-prices", portfolioHandler.HandleUpdateHoldingPrices)

		r.Get("/dividends/income/monthly", dividendHandler.HandleMonthlyIncome)
		r.Get("/dividends/income/yearly", dividendHandler.HandleYearlyIncome)
		r.Get("/dividends/upcoming", dividendHandler.HandleUpcoming)
		r.Get("/dividends/forecast", dividendHandler.HandleForecast)
		r.Get("/dividends/stock/{stockId}", dividendHandler.HandleListDividendsByStock)
		r.Get("/dividends", dividendHandler.HandleListDividends)
		r.Post("/dividends", dividendHandler.HandleCreateDividend)
		r.Get("/dividends/{id}", dividendHandler.HandleGetDividend)
		r.Put("/dividends/{id}", dividendHandler.HandleUpdateDividend)
		r.Delete("/dividends/{id}", dividendHandler.HandleDeleteDividend)

		r.Get("/exchange-rates/current", exchangeRateHandler.HandleCurrentRate)
		r.Get("/exchange-rates/convert", exchangeRateHandler.HandleConvert)
		r.Get("/exchange-rates/history", exchangeRateHandler.HandleHistory)
		r.Post("/exchange-rates/refresh", exchangeRateHandler.HandleRefresh)

		r.Get("/quotes/batch", quoteHandler.HandleBatchQuotes)
		r.Get("/quotes/dividends/{symbol}", quoteHandler.HandleDividendEstimates)
		r.Get("/quotes/refresh/{symbol}", quoteHandler.HandleRefreshSymbol)
		r.Post("/quotes/clear-cache", quoteHandler.HandleClearCache)
		r.Get("/quotes/{symbol}", quoteHandler.HandleGetQuote)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
