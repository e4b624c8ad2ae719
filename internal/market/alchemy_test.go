package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/marce1l/Telegram-sniping-bot/internal/market/tokens"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// rpcServer answers JSON-RPC calls with canned results keyed by method.
func rpcServer(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
		}
		result, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected rpc method %q", req.Method)
		}
		raw, _ := json.Marshal(result)
		json.NewEncoder(w).Encode(rpcResponse{Result: raw})
	}))
}

func newTestAlchemy(srv *httptest.Server, reg *tokens.Registry) *AlchemyClient {
	return NewAlchemy(AlchemyConfig{
		APIBase: srv.URL,
		APIKey:  "test-key",
		Tokens:  reg,
		Logger:  discardLogger(),
	})
}

func TestAlchemyEthBalance(t *testing.T) {
	// 1.5 ETH in wei.
	srv := rpcServer(t, map[string]any{"eth_getBalance": "0x14d1120d7b160000"})
	defer srv.Close()

	got, err := newTestAlchemy(srv, nil).EthBalance(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("EthBalance: %v", err)
	}
	if math.Abs(got-1.5) > 1e-12 {
		t.Errorf("balance = %g, want 1.5", got)
	}
}

func TestAlchemyGasPriceGwei(t *testing.T) {
	// 30 gwei in wei.
	srv := rpcServer(t, map[string]any{"eth_gasPrice": "0x6fc23ac00"})
	defer srv.Close()

	got, err := newTestAlchemy(srv, nil).GasPriceGwei(context.Background())
	if err != nil {
		t.Fatalf("GasPriceGwei: %v", err)
	}
	if math.Abs(got-30) > 1e-9 {
		t.Errorf("gas price = %g gwei, want 30", got)
	}
}

func TestAlchemyRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rpcResponse{Error: &rpcError{Code: -32000, Message: "rate limited"}})
	}))
	defer srv.Close()

	if _, err := newTestAlchemy(srv, nil).GasPriceGwei(context.Background()); err == nil {
		t.Fatal("expected error from rpc error response")
	}
}

func TestAlchemyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := newTestAlchemy(srv, nil).EthBalance(context.Background(), "0xabc"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestAlchemyTokenBalances(t *testing.T) {
	known := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	unknown := "0x2222222222222222222222222222222222222222"
	result := tokenBalancesResult{Address: "0xabc"}
	result.TokenBalances = []struct {
		ContractAddress string `json:"contractAddress"`
		TokenBalance    string `json:"tokenBalance"`
		Error           string `json:"error"`
	}{
		// 250 USDC (6 decimals).
		{ContractAddress: known, TokenBalance: fmt.Sprintf("0x%x", 250_000_000)},
		// Zero balances are skipped.
		{ContractAddress: "0x3333333333333333333333333333333333333333", TokenBalance: "0x0"},
		// Errored entries are skipped.
		{ContractAddress: "0x4444444444444444444444444444444444444444", TokenBalance: "0x1", Error: "contract reverted"},
		// 3 units of an unregistered token, 18-decimal fallback.
		{ContractAddress: unknown, TokenBalance: "0x29a2241af62c0000"},
	}

	srv := rpcServer(t, map[string]any{"alchemy_getTokenBalances": result})
	defer srv.Close()

	reg := tokens.NewRegistry([]tokens.Token{{Contract: known, Symbol: "USDC", Decimals: 6}})
	got, err := newTestAlchemy(srv, reg).TokenBalances(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("TokenBalances: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d balances, want 2: %+v", len(got), got)
	}

	if got[0].Symbol != "USDC" || math.Abs(got[0].Amount-250) > 1e-9 {
		t.Errorf("known token = %+v, want 250 USDC", got[0])
	}
	if got[1].Symbol != shortAddress(unknown) {
		t.Errorf("unknown token symbol = %q, want shortened address", got[1].Symbol)
	}
	if math.Abs(got[1].Amount-3) > 1e-9 {
		t.Errorf("unknown token amount = %g, want 3", got[1].Amount)
	}
}

func TestShortAddress(t *testing.T) {
	if got := shortAddress("0x1234567890123456789012345678901234567890"); got != "0x1234…7890" {
		t.Errorf("shortAddress = %q", got)
	}
	if got := shortAddress("0xabc"); got != "0xabc" {
		t.Errorf("short input must pass through, got %q", got)
	}
}
