package domain

import "fmt"

// OrderType tags a trade as a buy or a sell. It round-trips to the
// lowercase command keyword that produced it (/buy, /sell).
type OrderType int

const (
	Buy OrderType = iota
	Sell
)

func (o OrderType) String() string {
	switch o {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseOrderType maps a command keyword back to its order type.
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown order type: %q", s)
	}
}

// TradeOrder is a requested buy/sell order pending confirmation. Fields are
// pointers because validation fills them independently: a nil field means
// that argument failed validation. Only a complete order may be shown to
// the user or submitted for confirmation.
type TradeOrder struct {
	Contract *string
	Amount   *float64
	Slippage *float64
	Type     OrderType
}

// Complete reports whether every trade parameter validated.
func (t *TradeOrder) Complete() bool {
	return t.Contract != nil && t.Amount != nil && t.Slippage != nil
}
