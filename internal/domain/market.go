package domain

import "context"

// TokenBalance is one ERC-20 holding of the configured wallet.
type TokenBalance struct {
	Contract string
	Symbol   string
	Amount   float64
}

// GasEstimate is the current gas price with swap fee projections in USD.
type GasEstimate struct {
	GasPriceGwei float64
	UniswapV2USD float64
	UniswapV3USD float64
}

// MarketData is the crypto data collaborator. Each call is a single
// network round trip and may fail; callers must treat errors as
// recoverable.
type MarketData interface {
	EthBalance(ctx context.Context, address string) (float64, error)
	TokenBalances(ctx context.Context, address string) ([]TokenBalance, error)
	GasPriceGwei(ctx context.Context) (float64, error)
	EthUSDPrice(ctx context.Context) (float64, error)
}
