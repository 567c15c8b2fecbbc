package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// BybitSource fetches spot ticker prices from the Bybit v5 public API.
type BybitSource struct {
	BaseURL string
	Client  *http.Client
}

// NewBybitSource creates a source with optional proxy support.
func NewBybitSource(proxyURL string) *BybitSource {
	return &BybitSource{
		BaseURL: "https://api.bybit.com",
		Client:  newHTTPClient(proxyURL),
	}
}

func (s *BybitSource) Name() string { return "bybit" }

// bybitTickers is the v5 market/tickers response shape.
type bybitTickers struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	} `json:"result"`
}

func (s *BybitSource) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v5/market/tickers?category=spot&symbol=%s", s.BaseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("bybit fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bybit: status %d", resp.StatusCode)
	}
	var result bybitTickers
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("bybit decode: %w", err)
	}
	if result.RetCode != 0 {
		return 0, fmt.Errorf("bybit api error %d: %s", result.RetCode, result.RetMsg)
	}
	if len(result.Result.List) == 0 {
		return 0, fmt.Errorf("bybit: no ticker for %s", symbol)
	}
	price, err := strconv.ParseFloat(result.Result.List[0].LastPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("bybit parse price %q: %w", result.Result.List[0].LastPrice, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("bybit: non-positive price for %s", symbol)
	}
	return price, nil
}
