package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Telegram: TelegramConfig{
			ParseMode: "Markdown",
		},
		Market: MarketConfig{
			Alchemy: ProviderConfig{
				APIBase: "https://eth-mainnet.g.alchemy.com/v2",
			},
			Etherscan: ProviderConfig{
				APIBase: "https://api.etherscan.io",
			},
			Cache: CacheConfig{
				Enabled:    false,
				Addr:       "localhost:6379",
				TTLSeconds: 15,
			},
			TokensDir: "~/.snipingbot/tokens",
		},
		Storage: StorageConfig{
			DBPath: "~/.snipingbot/journal.db",
		},
		Watch: WatchConfig{
			Enabled:  true,
			CronSpec: "@every 1m",
		},
	}
}
