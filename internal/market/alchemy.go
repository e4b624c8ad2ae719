package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
	"github.com/marce1l/Telegram-sniping-bot/internal/market/tokens"
)

const defaultAlchemyBase = "https://eth-mainnet.g.alchemy.com/v2"

// AlchemyClient talks JSON-RPC to Alchemy's Ethereum endpoint for wallet
// balances and gas.
type AlchemyClient struct {
	httpc   *http.Client
	apiBase string
	apiKey  string
	tokens  *tokens.Registry
	logger  *slog.Logger
}

type AlchemyConfig struct {
	APIBase string
	APIKey  string
	Timeout time.Duration
	Tokens  *tokens.Registry
	Logger  *slog.Logger
}

func NewAlchemy(cfg AlchemyConfig) *AlchemyClient {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAlchemyBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Tokens == nil {
		cfg.Tokens = tokens.NewRegistry(nil)
	}
	return &AlchemyClient{
		httpc:   &http.Client{Timeout: cfg.Timeout},
		apiBase: cfg.APIBase,
		apiKey:  cfg.APIKey,
		tokens:  cfg.Tokens,
		logger:  cfg.Logger,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *AlchemyClient) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	url := c.apiBase + "/" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", method, resp.Status)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// EthBalance returns the wallet's ETH balance in ether.
func (c *AlchemyClient) EthBalance(ctx context.Context, address string) (float64, error) {
	var hexWei string
	if err := c.call(ctx, "eth_getBalance", []any{address, "latest"}, &hexWei); err != nil {
		return 0, err
	}
	wei, err := hexutil.DecodeBig(hexWei)
	if err != nil {
		return 0, fmt.Errorf("decode balance %q: %w", hexWei, err)
	}
	return weiToUnit(wei, params.Ether), nil
}

// GasPriceGwei returns the current gas price in gwei.
func (c *AlchemyClient) GasPriceGwei(ctx context.Context) (float64, error) {
	var hexWei string
	if err := c.call(ctx, "eth_gasPrice", []any{}, &hexWei); err != nil {
		return 0, err
	}
	wei, err := hexutil.DecodeBig(hexWei)
	if err != nil {
		return 0, fmt.Errorf("decode gas price %q: %w", hexWei, err)
	}
	return weiToUnit(wei, params.GWei), nil
}

type tokenBalancesResult struct {
	Address       string `json:"address"`
	TokenBalances []struct {
		ContractAddress string `json:"contractAddress"`
		TokenBalance    string `json:"tokenBalance"`
		Error           string `json:"error"`
	} `json:"tokenBalances"`
}

// TokenBalances returns the wallet's non-zero ERC-20 balances, rendered
// through the token metadata registry. Unknown tokens fall back to a
// shortened contract address and 18 decimals.
func (c *AlchemyClient) TokenBalances(ctx context.Context, address string) ([]domain.TokenBalance, error) {
	var result tokenBalancesResult
	if err := c.call(ctx, "alchemy_getTokenBalances", []any{address, "erc20"}, &result); err != nil {
		return nil, err
	}

	balances := make([]domain.TokenBalance, 0, len(result.TokenBalances))
	for _, tb := range result.TokenBalances {
		if tb.Error != "" {
			c.logger.Warn("token balance error", "contract", tb.ContractAddress, "err", tb.Error)
			continue
		}
		raw, err := hexutil.DecodeBig(tb.TokenBalance)
		if err != nil {
			c.logger.Warn("cannot decode token balance", "contract", tb.ContractAddress, "balance", tb.TokenBalance, "err", err)
			continue
		}
		if raw.Sign() == 0 {
			continue
		}

		symbol := shortAddress(tb.ContractAddress)
		decimals := 18
		if meta, ok := c.tokens.Lookup(tb.ContractAddress); ok {
			symbol = meta.Symbol
			decimals = meta.Decimals
		}

		balances = append(balances, domain.TokenBalance{
			Contract: tb.ContractAddress,
			Symbol:   symbol,
			Amount:   scaleDown(raw, decimals),
		})
	}
	return balances, nil
}

func weiToUnit(wei *big.Int, unit float64) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(unit)).Float64()
	return f
}

func scaleDown(raw *big.Int, decimals int) float64 {
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), divisor).Float64()
	return f
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
