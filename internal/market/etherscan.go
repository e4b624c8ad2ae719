package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultEtherscanBase = "https://api.etherscan.io"

// EtherscanClient fetches the ETH/USD spot price from Etherscan's stats
// module.
type EtherscanClient struct {
	httpc   *http.Client
	apiBase string
	apiKey  string
}

type EtherscanConfig struct {
	APIBase string
	APIKey  string
	Timeout time.Duration
}

func NewEtherscan(cfg EtherscanConfig) *EtherscanClient {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultEtherscanBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &EtherscanClient{
		httpc:   &http.Client{Timeout: cfg.Timeout},
		apiBase: cfg.APIBase,
		apiKey:  cfg.APIKey,
	}
}

type ethPriceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  struct {
		EthUSD string `json:"ethusd"`
	} `json:"result"`
}

// EthUSDPrice returns the current ETH spot price in USD.
func (c *EtherscanClient) EthUSDPrice(ctx context.Context) (float64, error) {
	q := url.Values{}
	q.Set("module", "stats")
	q.Set("action", "ethprice")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/api?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build eth price request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("eth price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("eth price: unexpected status %s", resp.Status)
	}

	var priceResp ethPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return 0, fmt.Errorf("decode eth price response: %w", err)
	}
	if priceResp.Status != "1" {
		return 0, fmt.Errorf("eth price: api error: %s", priceResp.Message)
	}

	price, err := strconv.ParseFloat(priceResp.Result.EthUSD, 64)
	if err != nil {
		return 0, fmt.Errorf("parse eth price %q: %w", priceResp.Result.EthUSD, err)
	}
	return price, nil
}
