package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

const (
	msgBadContract    = "Trade cancelled: submitted contract is incorrect!"
	msgBadAmount      = "Trade cancelled: submitted amount is incorrect!"
	msgBadSlippage    = "Trade cancelled: submitted slippage is incorrect!"
	msgBadTradeParams = "Trade cancelled: submitted trade parameters are incorrect!"
	msgBadWallets     = "Watch wallets cancelled: submitted wallets are incorrect"
	msgConfirmPrompt  = "Do you want to execute the transaction?"
	msgExecuted       = "Transaction executed!"
	msgNotExecuted    = "Transaction was not executed!"
	msgCallbackError  = "Something went wrong with the button handling"
	msgCancelled      = "Current command is cancelled"
	msgInvalidState   = "Type /help to see available commands."
	msgInternalError  = "Something went wrong, please try again."
)

const helpText = `These commands are supported:

/help — help command
/buy <contract> <amount> <slippage> — buy ERC-20 token
/sell <contract> <amount> <slippage> — sell ERC-20 token
/balance — get wallet ETH balance
/tokens — get wallet ERC-20 token balances
/gas — get current eth gas
/watch <address...> — start monitoring ethereum wallets
/cancel — cancel current command`

// formatFloat renders a float the shortest way that round-trips, so user
// input like "1.5" echoes back as "1.5".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatOrder renders a complete trade order for the confirmation summary.
// Callers must not pass an incomplete order.
func formatOrder(t *domain.TradeOrder) string {
	marker := "🟢"
	if t.Type == domain.Sell {
		marker = "🔴"
	}
	return fmt.Sprintf("📄 Contract: %s\n💰 Amount: %s\n🏷 Slippage: %s\n%s Order type: %s",
		*t.Contract, formatFloat(*t.Amount), formatFloat(*t.Slippage), marker, t.Type)
}

func formatEthBalance(balance float64) string {
	return fmt.Sprintf("Your wallet balance is %s", formatFloat(balance))
}

func formatTokenBalances(balances []domain.TokenBalance) string {
	var b strings.Builder
	b.WriteString("ERC-20 Token balances:\n")
	for _, tb := range balances {
		b.WriteString(fmt.Sprintf("\n%s: %s", tb.Symbol, formatFloat(tb.Amount)))
	}
	return b.String()
}

func formatWatchList(wallets []string) string {
	var b strings.Builder
	b.WriteString("Wallets to watch:\n")
	for i, w := range wallets {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, w))
	}
	return b.String()
}

func formatGasEstimate(est domain.GasEstimate) string {
	return fmt.Sprintf("Current eth gas is: %.0f gwei\n\nEstimated fees:\n🦄 Uniswap V2 swap: %.2f $\n🦄 Uniswap V3 swap: %.2f $",
		est.GasPriceGwei, est.UniswapV2USD, est.UniswapV3USD)
}
