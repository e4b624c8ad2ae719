package market

import "github.com/marce1l/Telegram-sniping-bot/internal/domain"

// Gas units for a typical swap on each Uniswap version, with a 3% buffer
// on top. Estimates follow cryptoneur.xyz/en/gas-fees-calculator.
const (
	uniswapV2SwapGas = 152809
	uniswapV3SwapGas = 184523
	gasFeeBuffer     = 1.03
	gweiToEth        = 0.000000001
)

// EstimateSwapFees projects the USD cost of a Uniswap V2 and V3 swap at
// the given gas price and ETH price.
func EstimateSwapFees(gasPriceGwei, ethUSD float64) domain.GasEstimate {
	return domain.GasEstimate{
		GasPriceGwei: gasPriceGwei,
		UniswapV2USD: gasPriceGwei * gweiToEth * ethUSD * uniswapV2SwapGas * gasFeeBuffer,
		UniswapV3USD: gasPriceGwei * gweiToEth * ethUSD * uniswapV3SwapGas * gasFeeBuffer,
	}
}
