package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/devserver"
	"github.com/devgianlu/go-bridgemanager/internal/logging"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

type Config struct {
	Addr               string            `koanf:"addr"`
	LogLevel           string            `koanf:"log_level"`
	Users              map[string]string `koanf:"users"`
	Bridges            map[string]bool   `koanf:"bridges"`
	InternalBridgeInfo bool              `koanf:"internal_bridge_info"`
	AllowBotLogin      bool              `koanf:"allow_bot_login"`
	TelegramCode       string            `koanf:"telegram_code"`
	QRCodes            int               `koanf:"qr_codes"`
	QRInterval         time.Duration     `koanf:"qr_interval"`
	QRTimeout          bool              `koanf:"qr_timeout"`
	AllowOrigin        string            `koanf:"allow_origin"`
}

func loadConfig(cfg *Config) error {
	defaults := devserver.DefaultOptions()

	f := flag.NewFlagSet("devserver", flag.ContinueOnError)
	configPath := f.String("config", "devserver.yml", "optional YAML file with users and bridges")
	f.String("addr", "127.0.0.1:8080", "listen address")
	f.String("log_level", "debug", "log level (trace, debug, info, warn, error)")
	f.Bool("internal_bridge_info", defaults.InternalBridgeInfo, "expose the internal bridge state")
	f.Bool("allow_bot_login", defaults.AllowBotLogin, "allow Telegram bot token logins")
	f.String("telegram_code", defaults.TelegramCode, "accepted Telegram login code")
	f.Int("qr_codes", defaults.QRCodes, "WhatsApp QR codes sent before the login completes")
	f.Duration("qr_interval", defaults.QRInterval, "delay between WhatsApp QR codes")
	f.Bool("qr_timeout", defaults.QRTimeout, "make WhatsApp logins time out")
	f.String("allow_origin", "", "origin allowed by CORS")
	if err := f.Parse(os.Args[1:]); err != nil {
		return err
	}

	// user ids contain dots, they cannot be the key delimiter
	k := koanf.New("/")
	if err := k.Load(file.Provider(*configPath), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	if err := k.Load(posflag.Provider(f, "/", k), nil); err != nil {
		return fmt.Errorf("failed loading command line configuration: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if len(cfg.Users) == 0 {
		cfg.Users = defaults.Users
	}

	return nil
}

func main() {
	var cfg Config
	if err := loadConfig(&cfg); errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.WithError(err).Fatal("failed loading configuration")
	}

	logLevel, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatalf("invalid log level: %s", cfg.LogLevel)
	} else {
		log.SetLevel(logLevel)
	}

	opts := devserver.DefaultOptions()
	opts.Users = cfg.Users
	opts.InternalBridgeInfo = cfg.InternalBridgeInfo
	opts.AllowBotLogin = cfg.AllowBotLogin
	opts.TelegramCode = cfg.TelegramCode
	opts.QRCodes = cfg.QRCodes
	opts.QRInterval = cfg.QRInterval
	opts.QRTimeout = cfg.QRTimeout
	opts.AllowOrigin = cfg.AllowOrigin

	if cfg.Bridges != nil {
		opts.Bridges = make(map[bridgemanager.BridgeId]bool, len(cfg.Bridges))
		for id, enabled := range cfg.Bridges {
			opts.Bridges[bridgemanager.BridgeId(id)] = enabled
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := devserver.New(logging.NewLogrusAdapter(log.StandardLogger()), opts)
	if err := server.ListenAndServe(ctx, cfg.Addr); err != nil {
		log.WithError(err).Fatal("dev server failed")
	}
}
