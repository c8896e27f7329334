package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/divitrack/backend/src/logger"
	"golang.org/x/net/publicsuffix"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

type dividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type yahooEventsResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Events struct {
				Dividends map[string]dividendEvent `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

type quoteServiceImpl struct {
	httpClient    http.Client
	quoteCache    *cache.Cache
	isInitialized bool
	crumb         string
	mu            sync.Mutex
}

// NewQuoteService builds the Yahoo Finance adapter. Quotes and FX rates are
// cached for cacheTTL (weekly by default); the crumb session is bootstrapped
// in the background so the first request does not pay for it.
func NewQuoteService(cacheTTL, clientTimeout time.Duration) QuoteService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	s := &quoteServiceImpl{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: clientTimeout,
		},
		quoteCache: cache.New(cacheTTL, cacheTTL/2),
	}

	go s.initializeYahooSession()

	return s
}

func (s *quoteServiceImpl) initializeYahooSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized && s.crumb != "" {
		return
	}

	logger.L.Info("Initializing Yahoo Finance session and fetching Crumb...")

	req1, _ := http.NewRequest("GET", "https://fc.yahoo.com", nil)
	req1.Header.Set("User-Agent", userAgent)
	resp1, err := s.httpClient.Do(req1)
	if err == nil {
		io.Copy(io.Discard, resp1.Body)
		resp1.Body.Close()
	}

	req2, _ := http.NewRequest("GET", "https://finance.yahoo.com", nil)
	req2.Header.Set("User-Agent", userAgent)
	resp2, err := s.httpClient.Do(req2)
	if err == nil {
		io.Copy(io.Discard, resp2.Body)
		resp2.Body.Close()
	}

	req3, _ := http.NewRequest("GET", "https://query1.finance.yahoo.com/v1/test/getcrumb", nil)
	req3.Header.Set("User-Agent", userAgent)
	resp3, err := s.httpClient.Do(req3)
	if err != nil {
		logger.L.Error("Failed to fetch crumb", "error", err)
		return
	}
	defer resp3.Body.Close()

	if resp3.StatusCode == http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp3.Body)
		s.crumb = string(bodyBytes)
		s.isInitialized = true
		logger.L.Info("Yahoo session initialized successfully")
	} else {
		logger.L.Warn("Failed to fetch crumb", "status", resp3.Status)
	}
}

func (s *quoteServiceImpl) ensureSession() {
	s.mu.Lock()
	needsInit := !s.isInitialized || s.crumb == ""
	s.mu.Unlock()

	if needsInit {
		s.initializeYahooSession()
	}
}

func (s *quoteServiceImpl) GetQuote(symbol string) (*Quote, error) {
	cacheKey := "quote_" + symbol
	if cached, found := s.quoteCache.Get(cacheKey); found {
		q := cached.(Quote)
		return &q, nil
	}

	q, err := s.fetchQuote(symbol)
	if err != nil {
		return nil, err
	}
	s.quoteCache.Set(cacheKey, *q, cache.DefaultExpiration)
	return q, nil
}

// GetBatchQuotes resolves each symbol, preferring the cache. Symbols the
// provider cannot resolve are logged and left out of the result map.
func (s *quoteServiceImpl) GetBatchQuotes(symbols []string) (map[string]Quote, error) {
	results := make(map[string]Quote)

	var uncached []string
	for _, symbol := range symbols {
		if cached, found := s.quoteCache.Get("quote_" + symbol); found {
			results[symbol] = cached.(Quote)
		} else {
			uncached = append(uncached, symbol)
		}
	}

	for i, symbol := range uncached {
		if i > 0 {
			time.Sleep(250 * time.Millisecond)
		}
		q, err := s.fetchQuote(symbol)
		if err != nil {
			logger.L.Warn("Could not get quote for symbol", "symbol", symbol, "error", err)
			continue
		}
		results[symbol] = *q
		s.quoteCache.Set("quote_"+symbol, *q, cache.DefaultExpiration)
	}
	return results, nil
}

// GetExchangeRate fetches the FX rate via the provider's synthetic
// {FROM}{TO}=X symbol.
func (s *quoteServiceImpl) GetExchangeRate(from, to string) (float64, error) {
	cacheKey := fmt.Sprintf("fx_%s%s", from, to)
	if cached, found := s.quoteCache.Get(cacheKey); found {
		return cached.(float64), nil
	}

	q, err := s.fetchQuote(fmt.Sprintf("%s%s=X", from, to))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch exchange rate %s/%s: %w", from, to, err)
	}
	s.quoteCache.Set(cacheKey, q.RegularMarketPrice, cache.DefaultExpiration)
	return q.RegularMarketPrice, nil
}

// GetDividendEstimates projects the symbol's next year of payments from the
// dividends the provider reported over the trailing year. The schedule shares
// the quote cache's TTL.
func (s *quoteServiceImpl) GetDividendEstimates(symbol string) ([]DividendEstimate, error) {
	cacheKey := "dividends_" + symbol
	if cached, found := s.quoteCache.Get(cacheKey); found {
		return cached.([]DividendEstimate), nil
	}

	events, err := s.fetchDividendEvents(symbol)
	if err != nil {
		return nil, err
	}

	estimates := estimateSchedule(symbol, events, time.Now())
	s.quoteCache.Set(cacheKey, estimates, cache.DefaultExpiration)
	return estimates, nil
}

// estimateSchedule turns the trailing year's observed payments into projected
// future ones: the cadence is the observed payment count, the amount is the
// most recent payment.
func estimateSchedule(symbol string, events []dividendEvent, now time.Time) []DividendEstimate {
	estimates := []DividendEstimate{}

	var paymentsPerYear int
	var lastAmount float64
	var lastDate int64
	for _, ev := range events {
		if ev.Amount <= 0 {
			continue
		}
		paymentsPerYear++
		if ev.Date > lastDate {
			lastDate = ev.Date
			lastAmount = ev.Amount
		}
	}
	if paymentsPerYear == 0 {
		return estimates
	}
	if paymentsPerYear > 52 {
		paymentsPerYear = 52
	}

	interval := 365 / paymentsPerYear
	if interval == 0 {
		interval = 7
	}
	for i := 1; i <= paymentsPerYear; i++ {
		estimates = append(estimates, DividendEstimate{
			Date:      now.AddDate(0, 0, interval*i),
			Amount:    lastAmount,
			Symbol:    symbol,
			Estimated: true,
		})
	}
	return estimates
}

func (s *quoteServiceImpl) fetchDividendEvents(symbol string) ([]dividendEvent, error) {
	s.ensureSession()

	s.mu.Lock()
	crumb := s.crumb
	s.mu.Unlock()

	now := time.Now()
	oneYearAgo := now.AddDate(-1, 0, 0)
	eventsURL := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?symbol=%s&period1=%d&period2=%d&interval=1d&events=div&crumb=%s",
		symbol, symbol, oneYearAgo.Unix(), now.Unix(), crumb)

	req, err := http.NewRequest("GET", eventsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Yahoo events API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 {
		s.mu.Lock()
		s.isInitialized = false
		s.mu.Unlock()
		return nil, fmt.Errorf("status 401 (Unauthorized) - Crumb invalid")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo events API returned non-OK status %d", resp.StatusCode)
	}

	var data yahooEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode Yahoo events response: %w", err)
	}
	if data.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo events API returned an error: %v", data.Chart.Error)
	}
	if len(data.Chart.Result) == 0 {
		return nil, nil
	}

	var events []dividendEvent
	for _, ev := range data.Chart.Result[0].Events.Dividends {
		events = append(events, ev)
	}
	return events, nil
}

// RefreshSymbol drops the cached entry and fetches fresh data.
func (s *quoteServiceImpl) RefreshSymbol(symbol string) (*Quote, error) {
	s.quoteCache.Delete("quote_" + symbol)
	return s.GetQuote(symbol)
}

func (s *quoteServiceImpl) ClearCache() {
	s.quoteCache.Flush()
	logger.L.Info("Quote cache cleared")
}

func (s *quoteServiceImpl) fetchQuote(symbol string) (*Quote, error) {
	s.ensureSession()

	s.mu.Lock()
	crumb := s.crumb
	s.mu.Unlock()

	quoteURL := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?crumb=%s", symbol, crumb)
	req, err := http.NewRequest("GET", quoteURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Yahoo chart API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 {
		s.mu.Lock()
		s.isInitialized = false
		s.mu.Unlock()
		return nil, fmt.Errorf("status 401 (Unauthorized) - Crumb invalid")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart API returned non-OK status %d", resp.StatusCode)
	}

	var chartData yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartData); err != nil {
		return nil, fmt.Errorf("failed to decode Yahoo chart response: %w", err)
	}
	if chartData.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API returned an error: %v", chartData.Chart.Error)
	}
	if len(chartData.Chart.Result) == 0 || chartData.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("no price data found for %s", symbol)
	}

	meta := chartData.Chart.Result[0].Meta
	return &Quote{
		Symbol:             symbol,
		RegularMarketPrice: meta.RegularMarketPrice,
		Currency:           meta.Currency,
	}, nil
}
