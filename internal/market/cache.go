package market

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
)

const (
	cacheKeyGasPrice = "snipingbot:gas_price_gwei"
	cacheKeyEthUSD   = "snipingbot:eth_usd_price"
)

// Cache is a read-through redis TTL cache in front of MarketData. Only
// gas price and ETH/USD are cached: they are chat-independent and change
// on the order of seconds, while balances must always be fresh. Every
// redis failure falls through to the underlying collaborator.
type Cache struct {
	inner  domain.MarketData
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(inner domain.MarketData, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Cache{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *Cache) EthBalance(ctx context.Context, address string) (float64, error) {
	return c.inner.EthBalance(ctx, address)
}

func (c *Cache) TokenBalances(ctx context.Context, address string) ([]domain.TokenBalance, error) {
	return c.inner.TokenBalances(ctx, address)
}

func (c *Cache) GasPriceGwei(ctx context.Context) (float64, error) {
	return c.cachedFloat(ctx, cacheKeyGasPrice, c.inner.GasPriceGwei)
}

func (c *Cache) EthUSDPrice(ctx context.Context) (float64, error) {
	return c.cachedFloat(ctx, cacheKeyEthUSD, c.inner.EthUSDPrice)
}

func (c *Cache) cachedFloat(ctx context.Context, key string, fetch func(context.Context) (float64, error)) (float64, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		if parsed, parseErr := strconv.ParseFloat(val, 64); parseErr == nil {
			return parsed, nil
		}
		c.logger.Warn("unparseable cache entry, refetching", "key", key, "value", val)
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed, falling back to collaborator", "key", key, "err", err)
	}

	fresh, err := fetch(ctx)
	if err != nil {
		return 0, err
	}

	if err := c.rdb.Set(ctx, key, strconv.FormatFloat(fresh, 'f', -1, 64), c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	}
	return fresh, nil
}

var _ domain.MarketData = (*Cache)(nil)
