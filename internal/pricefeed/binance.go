package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// BinanceSource fetches spot ticker prices from the Binance public API.
type BinanceSource struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceSource creates a source with optional proxy support.
func NewBinanceSource(proxyURL string) *BinanceSource {
	return &BinanceSource{
		BaseURL: "https://api.binance.com",
		Client:  newHTTPClient(proxyURL),
	}
}

func (s *BinanceSource) Name() string { return "binance" }

func (s *BinanceSource) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", s.BaseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("binance fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("binance: status %d", resp.StatusCode)
	}
	// Binance quotes prices as JSON strings.
	var result struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("binance decode: %w", err)
	}
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance parse price %q: %w", result.Price, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("binance: non-positive price for %s", symbol)
	}
	return price, nil
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
