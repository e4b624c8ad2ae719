package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"telegram": {"token": "abc"}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("logLevel = %q, want info default", cfg.General.LogLevel)
	}
	if cfg.Telegram.ParseMode != "Markdown" {
		t.Errorf("parseMode = %q, want Markdown default", cfg.Telegram.ParseMode)
	}
	if cfg.Market.Cache.TTLSeconds != 15 {
		t.Errorf("cache ttl = %d, want 15 default", cfg.Market.Cache.TTLSeconds)
	}
	if cfg.Watch.CronSpec != "@every 1m" {
		t.Errorf("cronSpec = %q", cfg.Watch.CronSpec)
	}
	if cfg.Storage.DBPath == "" || strings.HasPrefix(cfg.Storage.DBPath, "~") {
		t.Errorf("dbPath = %q, want expanded default", cfg.Storage.DBPath)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("SNIPE_TOKEN", "tok-123")
	os.Unsetenv("SNIPE_MISSING")

	path := writeConfig(t, `{
		"telegram": {"token": "${SNIPE_TOKEN}", "parseMode": "${SNIPE_MISSING:-HTML}"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "tok-123" {
		t.Errorf("token = %q, want env value", cfg.Telegram.Token)
	}
	if cfg.Telegram.ParseMode != "HTML" {
		t.Errorf("parseMode = %q, want default fallback", cfg.Telegram.ParseMode)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	path := writeConfig(t, `{
		"general": {"logLevel": "loud"},
		"wallet": {"address": "0xshort"},
		"market": {"cache": {"enabled": true, "addr": "", "ttlSeconds": 0}}
	}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"general.logLevel", "wallet.address", "market.cache.addr", "market.cache.ttlSeconds"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFlexStringList(t *testing.T) {
	var cfg TelegramConfig
	if err := json.Unmarshal([]byte(`{"allowFrom": ["123", 456]}`), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(cfg.AllowFrom) != 2 || cfg.AllowFrom[0] != "123" || cfg.AllowFrom[1] != "456" {
		t.Errorf("allowFrom = %v", cfg.AllowFrom)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MY_VAR", "hello")
	os.Unsetenv("NO_VAR")

	tests := []struct {
		input string
		want  string
	}{
		{"${MY_VAR}", "hello"},
		{"${MY_VAR:-fallback}", "hello"},
		{"${NO_VAR:-fallback}", "fallback"},
		{"${NO_VAR}", "${NO_VAR}"},
		{"prefix-${MY_VAR}-suffix", "prefix-hello-suffix"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := ExpandEnvVars(tt.input); got != tt.want {
			t.Errorf("ExpandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGetSetByPath(t *testing.T) {
	cfg := Defaults()

	got, err := GetByPath(cfg, "telegram.parseMode")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if got != "Markdown" {
		t.Errorf("got %v", got)
	}

	if err := SetByPath(cfg, "market.cache.ttlSeconds", "30"); err != nil {
		t.Fatalf("SetByPath: %v", err)
	}
	if cfg.Market.Cache.TTLSeconds != 30 {
		t.Errorf("ttl = %d, want 30 (string coerced to int)", cfg.Market.Cache.TTLSeconds)
	}

	if err := SetByPath(cfg, "watch.enabled", "false"); err != nil {
		t.Fatalf("SetByPath: %v", err)
	}
	if cfg.Watch.Enabled {
		t.Error("watch.enabled should be false after set")
	}

	if _, err := GetByPath(cfg, "telegram.doesNotExist"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSanitizeMasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.Token = "1234567890:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	cfg.Market.Alchemy.APIKey = "alchemy-key-0123456789"
	cfg.Market.Etherscan.APIKey = "short"

	clean := Sanitize(cfg)

	if strings.Contains(clean.Telegram.Token, "AAAAAAAA") {
		t.Errorf("token not masked: %q", clean.Telegram.Token)
	}
	if !strings.HasPrefix(clean.Telegram.Token, "1234") {
		t.Errorf("mask should keep a short prefix: %q", clean.Telegram.Token)
	}
	if clean.Market.Alchemy.APIKey == cfg.Market.Alchemy.APIKey {
		t.Error("alchemy key not masked")
	}
	if clean.Market.Etherscan.APIKey != "***" {
		t.Errorf("short key = %q, want fully masked", clean.Market.Etherscan.APIKey)
	}

	// The original must be untouched.
	if cfg.Telegram.Token != "1234567890:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA" {
		t.Error("Sanitize mutated the original config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := Defaults()
	cfg.Telegram.Token = "tok"
	cfg.Wallet.Address = "0x1234567890123456789012345678901234567890"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Telegram.Token != "tok" || loaded.Wallet.Address != cfg.Wallet.Address {
		t.Errorf("round trip mismatch: %+v", loaded.Telegram)
	}
}
