package tokens

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry([]Token{
		{Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
		{Contract: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI"},
	})

	got, ok := reg.Lookup("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	if !ok {
		t.Fatal("lookup must be case-insensitive")
	}
	if got.Symbol != "USDC" || got.Decimals != 6 {
		t.Errorf("got %+v", got)
	}

	got, ok = reg.Lookup("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	if !ok {
		t.Fatal("DAI not found")
	}
	if got.Decimals != 18 {
		t.Errorf("unset decimals must default to 18, got %d", got.Decimals)
	}

	if _, ok := reg.Lookup("0xdead"); ok {
		t.Error("unknown contract must miss")
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()

	good := `tokens:
  - contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
    symbol: USDC
    decimals: 6
  - contract: ""
    symbol: NOPE
`
	if err := os.WriteFile(filepath.Join(dir, "stable.yaml"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	// Unparsable files are skipped, not fatal.
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("tokens: [[["), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-yaml files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# docs"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadDirectory(dir, testLogger())
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry size = %d, want 1", reg.Len())
	}
	if _, ok := reg.Lookup("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"); !ok {
		t.Error("USDC entry missing")
	}
}

func TestLoadDirectoryMissing(t *testing.T) {
	reg, err := LoadDirectory(filepath.Join(t.TempDir(), "nope"), testLogger())
	if err != nil {
		t.Fatalf("missing directory must not error: %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("registry size = %d, want 0", reg.Len())
	}
}
