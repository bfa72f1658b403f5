package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pujana-systems/stockwatch/internal/config"
	"github.com/pujana-systems/stockwatch/pkg/alerting"
	"github.com/pujana-systems/stockwatch/pkg/inventory"
	"github.com/pujana-systems/stockwatch/pkg/notify"
	"github.com/pujana-systems/stockwatch/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "stockwatch",
	Short: "Stockwatch - Inventory, billing and low stock alerting",
	Long: `Stockwatch tracks items, categories, stock levels, buy/sell bills and
low stock alerts for a small retail business. Alerts are delivered over
email and WhatsApp, throttled to one reminder per day per item, and
re-checked by a daily background sweep.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.stockwatch/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initChannels creates the notification channels that have credentials
// configured. Missing credentials disable a channel with a warning.
func initChannels(cfg *config.Config, logger *slog.Logger) []notify.Channel {
	var channels []notify.Channel

	if cfg.SMTP.Sender != "" && cfg.SMTP.Password != "" {
		channels = append(channels, notify.NewEmailChannel(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Sender, cfg.SMTP.Password,
		))
	} else {
		logger.Warn("email credentials not configured, email alerts disabled")
	}

	if cfg.WhatsApp.AccountSID != "" && cfg.WhatsApp.AuthToken != "" && cfg.WhatsApp.FromNumber != "" {
		channels = append(channels, notify.NewWhatsAppChannel(
			cfg.WhatsApp.AccountSID, cfg.WhatsApp.AuthToken,
			cfg.WhatsApp.FromNumber, cfg.WhatsApp.APIBaseURL,
		))
	} else {
		logger.Warn("whatsapp credentials not configured, whatsapp alerts disabled")
	}

	return channels
}

// app bundles the fully wired components behind every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     storage.Store
	gateway   *notify.Gateway
	evaluator *alerting.Evaluator
	sweeper   *alerting.Sweeper
	inventory *inventory.Service
}

// initApp loads config and wires the whole dependency graph.
func initApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	gateway := notify.NewGateway(initChannels(cfg, logger), logger)
	evaluator := alerting.NewEvaluator(store, gateway, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		gateway:   gateway,
		evaluator: evaluator,
		sweeper:   alerting.NewSweeper(store, gateway, logger),
		inventory: inventory.NewService(store, evaluator, logger),
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}
