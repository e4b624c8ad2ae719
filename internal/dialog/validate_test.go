package dialog

import (
	"reflect"
	"testing"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

const goodAddress = "0x1234567890123456789012345678901234567890"

func TestValidateTradeArgsAllValid(t *testing.T) {
	res := ValidateTradeArgs([]string{goodAddress, "1.5", "0.5"}, domain.Buy)
	if !res.ArgCountOK {
		t.Fatal("expected ArgCountOK")
	}
	if !res.Order.Complete() {
		t.Fatalf("expected complete order, got %+v", res.Order)
	}
	if *res.Order.Contract != goodAddress {
		t.Errorf("contract = %q", *res.Order.Contract)
	}
	if *res.Order.Amount != 1.5 {
		t.Errorf("amount = %v, want 1.5", *res.Order.Amount)
	}
	if *res.Order.Slippage != 0.5 {
		t.Errorf("slippage = %v, want 0.5", *res.Order.Slippage)
	}
	if res.Order.Type != domain.Buy {
		t.Errorf("type = %v, want Buy", res.Order.Type)
	}
}

func TestValidateTradeArgsWrongCount(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{},
		{goodAddress},
		{goodAddress, "1.5"},
		{goodAddress, "1.5", "0.5", "extra"},
	} {
		res := ValidateTradeArgs(args, domain.Sell)
		if res.ArgCountOK {
			t.Errorf("args %v: expected ArgCountOK=false", args)
		}
		// No order is constructed at all: every field stays nil.
		if res.Order.Contract != nil || res.Order.Amount != nil || res.Order.Slippage != nil {
			t.Errorf("args %v: expected empty order, got %+v", args, res.Order)
		}
	}
}

func TestValidateTradeArgsPerFieldIndependence(t *testing.T) {
	// A bad contract must not stop amount and slippage from validating.
	res := ValidateTradeArgs([]string{"0xshort", "2", "10"}, domain.Buy)
	if !res.ArgCountOK {
		t.Fatal("expected ArgCountOK")
	}
	if res.Order.Contract != nil {
		t.Error("expected contract to be rejected")
	}
	if res.Order.Amount == nil || *res.Order.Amount != 2 {
		t.Error("expected amount to validate independently")
	}
	if res.Order.Slippage == nil || *res.Order.Slippage != 10 {
		t.Error("expected slippage to validate independently")
	}
}

func TestValidateTradeArgsAddressShape(t *testing.T) {
	tests := []struct {
		addr string
		ok   bool
	}{
		{goodAddress, true},
		{"0xshort", false},
		{"1234567890123456789012345678901234567890ab", false}, // 42 chars, no 0x
		{goodAddress + "00", false},                           // 44 chars
		{"0xZZZ4567890123456789012345678901234567890", true},  // no checksum/hex check, shape only
	}
	for _, tt := range tests {
		res := ValidateTradeArgs([]string{tt.addr, "1", "1"}, domain.Buy)
		got := res.Order.Contract != nil
		if got != tt.ok {
			t.Errorf("address %q: accepted = %v, want %v", tt.addr, got, tt.ok)
		}
	}
}

// Amount and slippage deliberately accept any parseable float: negative,
// zero, and slippage far above 100 all pass. Documented here instead of
// clamped.
func TestValidateTradeArgsPermissiveNumericRange(t *testing.T) {
	for _, tt := range []struct{ amount, slippage string }{
		{"-5", "-3"},
		{"0", "0"},
		{"1e6", "2500"},
	} {
		res := ValidateTradeArgs([]string{goodAddress, tt.amount, tt.slippage}, domain.Sell)
		if !res.Order.Complete() {
			t.Errorf("amount=%s slippage=%s: expected complete order, got %+v", tt.amount, tt.slippage, res.Order)
		}
	}
}

func TestValidateTradeArgsBadNumbers(t *testing.T) {
	res := ValidateTradeArgs([]string{goodAddress, "abc", "1,5"}, domain.Buy)
	if res.Order.Amount != nil {
		t.Error("expected amount rejection for non-numeric token")
	}
	if res.Order.Slippage != nil {
		t.Error("expected slippage rejection for comma decimal")
	}
	if res.Order.Contract == nil {
		t.Error("contract should still validate")
	}
}

func TestValidateWatchArgs(t *testing.T) {
	valid1 := "0x1111111111111111111111111111111111111111"
	valid2 := "0x2222222222222222222222222222222222222222"

	got := ValidateWatchArgs([]string{valid1, "notanaddress", valid2, "0xtooshort"})
	want := []string{valid1, valid2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filtered = %v, want %v", got, want)
	}
}

func TestValidateWatchArgsAllInvalid(t *testing.T) {
	got := ValidateWatchArgs([]string{"bad1", "bad2"})
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
