package tokens

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Token is the metadata needed to render an ERC-20 balance.
type Token struct {
	Contract string `yaml:"contract"`
	Symbol   string `yaml:"symbol"`
	Decimals int    `yaml:"decimals"`
}

type tokenFile struct {
	Tokens []Token `yaml:"tokens"`
}

// Registry maps lowercased contract addresses to token metadata.
type Registry struct {
	byContract map[string]Token
}

func NewRegistry(tokens []Token) *Registry {
	r := &Registry{byContract: make(map[string]Token, len(tokens))}
	for _, t := range tokens {
		if t.Decimals == 0 {
			t.Decimals = 18
		}
		r.byContract[strings.ToLower(t.Contract)] = t
	}
	return r
}

// Lookup returns the metadata for a contract address, if known.
func (r *Registry) Lookup(contract string) (Token, bool) {
	t, ok := r.byContract[strings.ToLower(contract)]
	return t, ok
}

func (r *Registry) Len() int {
	return len(r.byContract)
}

// LoadDirectory builds a registry from every .yaml/.yml file in dir. Files
// must conform to the tokenFile schema. A missing directory yields an
// empty registry: token metadata is optional, unknown tokens render raw.
func LoadDirectory(dir string, logger *slog.Logger) (*Registry, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("tokens directory does not exist, skipping", "dir", dir)
		return NewRegistry(nil), nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tokens dir: %w", err)
	}

	var all []Token
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cannot read token file", "path", path, "err", err)
			continue
		}

		var tf tokenFile
		if err := yaml.Unmarshal(data, &tf); err != nil {
			logger.Warn("cannot parse token file", "path", path, "err", err)
			continue
		}

		for _, t := range tf.Tokens {
			if t.Contract == "" || t.Symbol == "" {
				logger.Warn("skipping token entry without contract or symbol", "path", path)
				continue
			}
			all = append(all, t)
		}
	}

	logger.Info("loaded token metadata", "dir", dir, "tokens", len(all))
	return NewRegistry(all), nil
}
