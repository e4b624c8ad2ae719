package dialog

import (
	"strconv"
	"strings"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

// Ethereum addresses are 42 characters long including the 0x prefix. No
// checksum or on-chain existence check is performed.
const (
	addressLength = 42
	addressPrefix = "0x"
)

func validAddress(s string) bool {
	return len(s) == addressLength && strings.HasPrefix(s, addressPrefix)
}

// TradeResult is the outcome of validating buy/sell arguments. Each field
// of Order is checked independently; a nil field means that argument was
// rejected. When the argument count is wrong no order is constructed at
// all and ArgCountOK is false.
type TradeResult struct {
	ArgCountOK bool
	Order      domain.TradeOrder
}

// ValidateTradeArgs checks the three positional arguments of a buy/sell
// command: contract address, amount, slippage. Amount and slippage accept
// any value strconv.ParseFloat accepts, including negative numbers and
// slippage above 100; the engine's tests pin that range rather than
// clamping it. The function is pure: recording the (possibly partial)
// order on the conversation is the caller's explicit step.
func ValidateTradeArgs(args []string, orderType domain.OrderType) TradeResult {
	res := TradeResult{Order: domain.TradeOrder{Type: orderType}}

	if len(args) != 3 {
		return res
	}
	res.ArgCountOK = true

	if validAddress(args[0]) {
		contract := args[0]
		res.Order.Contract = &contract
	}

	if amount, err := strconv.ParseFloat(args[1], 64); err == nil {
		res.Order.Amount = &amount
	}

	if slippage, err := strconv.ParseFloat(args[2], 64); err == nil {
		res.Order.Slippage = &slippage
	}

	return res
}

// ValidateWatchArgs filters candidate wallet addresses down to the
// structurally valid ones. Invalid tokens are dropped silently. The
// returned list may be empty, which signals "no valid wallets supplied";
// the caller still overwrites the stored watch list with it.
func ValidateWatchArgs(args []string) []string {
	wallets := make([]string, 0, len(args))
	for _, w := range args {
		if validAddress(w) {
			wallets = append(wallets, w)
		}
	}
	return wallets
}
