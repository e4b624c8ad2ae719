package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/marce1l/Telegram-sniping-bot/internal/bus"
	"github.com/marce1l/Telegram-sniping-bot/internal/channel"
	"github.com/marce1l/Telegram-sniping-bot/internal/config"
	"github.com/marce1l/Telegram-sniping-bot/internal/dialog"
	"github.com/marce1l/Telegram-sniping-bot/internal/domain"
	"github.com/marce1l/Telegram-sniping-bot/internal/market"
	"github.com/marce1l/Telegram-sniping-bot/internal/market/tokens"
	"github.com/marce1l/Telegram-sniping-bot/internal/store"
	"github.com/marce1l/Telegram-sniping-bot/internal/watch"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:     "snipingbot",
		Short:   "Telegram bot for sniping ERC-20 tokens",
		Long:    "A Telegram bot that validates buy/sell orders, confirms them interactively, and watches ethereum wallets.",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.snipingbot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(runCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = buildLogger(cfg.General)

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is not configured")
	}

	// Graceful shutdown on signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updateBus := bus.New(100, logger)
	defer updateBus.Close()

	journal, err := store.NewJournal(cfg.Storage.DBPath, logger)
	if err != nil {
		return err
	}
	defer journal.Close()

	tokenReg, err := tokens.LoadDirectory(cfg.Market.TokensDir, logger)
	if err != nil {
		logger.Warn("cannot load token metadata, continuing without it", "err", err)
		tokenReg = tokens.NewRegistry(nil)
	}

	marketData := buildMarketData(cfg, tokenReg)

	tg := channel.NewTelegram(channel.TelegramConfig{
		Token:     cfg.Telegram.Token,
		AllowFrom: cfg.Telegram.AllowFrom,
		ParseMode: cfg.Telegram.ParseMode,
		Logger:    logger,
	})

	var watcher *watch.Watcher
	if cfg.Watch.Enabled {
		watcher, err = watch.New(cfg.Watch.CronSpec, marketData, tg, logger)
		if err != nil {
			return err
		}
	}

	engineCfg := dialog.EngineConfig{
		Transport:     tg,
		Market:        marketData,
		Store:         journal,
		Source:        updateBus,
		WalletAddress: cfg.Wallet.Address,
		Logger:        logger,
	}
	if watcher != nil {
		engineCfg.Watch = watcher
	}
	engine := dialog.NewEngine(engineCfg)

	go engine.Run(ctx)
	if watcher != nil {
		watcher.Start(ctx)
	}

	logger.Info("starting sniping bot", "version", version, "config", cfgPath)
	return tg.Start(ctx, updateBus)
}

// buildMarketData wires the Alchemy and Etherscan clients and the optional
// redis cache in front of them.
func buildMarketData(cfg *config.Config, tokenReg *tokens.Registry) domain.MarketData {
	alchemy := market.NewAlchemy(market.AlchemyConfig{
		APIBase: cfg.Market.Alchemy.APIBase,
		APIKey:  cfg.Market.Alchemy.APIKey,
		Tokens:  tokenReg,
		Logger:  logger,
	})
	etherscan := market.NewEtherscan(market.EtherscanConfig{
		APIBase: cfg.Market.Etherscan.APIBase,
		APIKey:  cfg.Market.Etherscan.APIKey,
	})

	var data domain.MarketData = market.NewService(alchemy, etherscan)

	if cfg.Market.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Market.Cache.Addr})
		ttl := time.Duration(cfg.Market.Cache.TTLSeconds) * time.Second
		data = market.NewCache(data, rdb, ttl, logger)
		logger.Info("market data cache enabled", "addr", cfg.Market.Cache.Addr, "ttl", ttl)
	}

	return data
}

func buildLogger(cfg config.GeneralConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Warn("cannot open log file, logging to stderr", "path", cfg.LogFile, "err", err)
		} else {
			w = io.MultiWriter(os.Stderr, f)
		}
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check config, journal and market collaborators",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				logger.Info("config", "path", cfgPath, "loaded", false, "err", err)
				return err
			}
			logger.Info("config", "path", cfgPath, "loaded", true)

			journal, err := store.NewJournal(cfg.Storage.DBPath, logger)
			if err != nil {
				logger.Info("journal", "path", cfg.Storage.DBPath, "ok", false, "err", err)
			} else {
				logger.Info("journal", "path", cfg.Storage.DBPath, "ok", true)
				journal.Close()
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			etherscan := market.NewEtherscan(market.EtherscanConfig{
				APIBase: cfg.Market.Etherscan.APIBase,
				APIKey:  cfg.Market.Etherscan.APIKey,
			})
			if price, err := etherscan.EthUSDPrice(ctx); err != nil {
				logger.Info("etherscan", "ok", false, "err", err)
			} else {
				logger.Info("etherscan", "ok", true, "eth_usd", price)
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <path>",
		Short: "Get a config value by dot-notation path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%v\n", val)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set a config value by dot-notation path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return config.Save(cfgPath, cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the config with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(config.Sanitize(cfg), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})

	return cmd
}
