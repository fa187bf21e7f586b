package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/config"
	"github.com/devgianlu/go-bridgemanager/internal/logging"
	"github.com/devgianlu/go-bridgemanager/session"
	"github.com/devgianlu/go-bridgemanager/tui"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

type Config struct {
	ConfigDir         string `koanf:"config_dir"`
	StateDir          string `koanf:"state_dir"`
	ServerUrl         string `koanf:"server_url"`
	LogLevel          string `koanf:"log_level"`
	LogFile           string `koanf:"log_file"`
	AltScreen         bool   `koanf:"alt_screen"`
	OAuthCallbackPort int    `koanf:"oauth_callback_port"`
	RequestTimeout    int    `koanf:"request_timeout"`
}

func loadConfig(cfg *Config) ([]string, error) {
	f := flag.NewFlagSet("bridgemanager", flag.ContinueOnError)
	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [tui|status|logout]\n\n", os.Args[0])
		f.PrintDefaults()
	}

	f.StringVar(&cfg.ConfigDir, "config_dir", func() string {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "."
		}

		return filepath.Join(dir, "go-bridgemanager")
	}(), "the configuration directory")
	f.StringVar(&cfg.StateDir, "state_dir", func() string {
		dir, err := UserStateDir()
		if err != nil {
			return "."
		}

		return filepath.Join(dir, "go-bridgemanager")
	}(), "the directory the session is stored in")
	f.String("server_url", "", "base URL of the bridge manager, e.g. https://bridges.example.com")
	f.String("log_level", "", "log level (trace, debug, info, warn, error)")
	f.String("log_file", "", "file the logs are written to, defaults to bridgemanager.log in the state directory")
	f.Bool("alt_screen", true, "run the interface in the alternate screen buffer")
	f.Int("oauth_callback_port", 0, "port of the OAuth2 redirect listener, zero picks a free one")
	if err := f.Parse(os.Args[1:]); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level":           "info",
		"alt_screen":          true,
		"oauth_callback_port": 0,
		"request_timeout":     30,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed loading configuration defaults: %w", err)
	}

	// load file configuration (if available)
	configPath := filepath.Join(cfg.ConfigDir, "config.yml")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed reading configuration file: %w", err)
		}
	}

	// command line flags override everything
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed loading command line configuration: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if len(cfg.ServerUrl) == 0 {
		return nil, fmt.Errorf("server_url must be set in %s or on the command line", configPath)
	}

	return f.Args(), nil
}

type App struct {
	cfg *Config
	log bridgemanager.Logger

	state    *bridgemanager.AppState
	api      *apiclient.Client
	sessions *session.Manager
}

func NewApp(cfg *Config, log bridgemanager.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log, state: &bridgemanager.AppState{}}

	if err := app.state.Read(cfg.StateDir); err != nil {
		return nil, fmt.Errorf("failed reading state: %w", err)
	}

	var err error
	app.api, err = apiclient.NewClient(log, apiclient.NewHttpClient(), cfg.ServerUrl+"/api")
	if err != nil {
		return nil, fmt.Errorf("failed creating api client: %w", err)
	}

	app.sessions = session.NewManager(log, app.api, app.state)
	return app, nil
}

func (app *App) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(app.cfg.RequestTimeout)*time.Second)
}

func (app *App) Interactive() error {
	model := tui.NewModel(tui.Options{
		Log:      app.log,
		Api:      app.api,
		Sessions: app.sessions,
		Registry: tui.DefaultRegistry(app.cfg.OAuthCallbackPort),
		Session:  app.sessions.Restore(),
	})

	var opts []tea.ProgramOption
	if app.cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	_, err := tea.NewProgram(model, opts...).Run()
	return err
}

// Status prints the identity of every enabled bridge.
func (app *App) Status() error {
	sess := app.sessions.Restore()
	if sess == nil {
		return errors.New("not signed in, run without arguments to sign in")
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	cfg, err := config.Fetch(ctx, app.log, app.api, sess)
	if err != nil {
		return err
	}

	registry := tui.DefaultRegistry(app.cfg.OAuthCallbackPort)
	fmt.Printf("Signed into %s as %s\n\n", app.cfg.ServerUrl, sess.UserId())

	for _, id := range cfg.EnabledBridges() {
		factory, ok := registry[id]
		if !ok {
			fmt.Printf("%-20s unsupported\n", id.Name())
			continue
		}

		ident, err := factory(app.log, app.api).GetCurrentIdentity(ctx, sess)
		if err != nil {
			fmt.Printf("%-20s error: %v\n", id.Name(), err)
			continue
		}

		fmt.Printf("%-20s %s\n", id.Name(), ident.Summary())
	}

	return nil
}

func (app *App) Logout() error {
	sess := app.sessions.Restore()
	if sess == nil {
		return nil
	}

	ctx, cancel := app.requestContext()
	defer cancel()

	return app.sessions.Logout(ctx, sess)
}

func openLogFile(cfg *Config) (*os.File, error) {
	path := cfg.LogFile
	if len(path) == 0 {
		path = filepath.Join(cfg.StateDir, "bridgemanager.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed creating log directory: %w", err)
	}

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// reportError logs err and prints it on w, once logging goes to a file the terminal would
// otherwise show nothing.
func reportError(w io.Writer, msg string, err error) {
	log.WithError(err).Error(msg)
	_, _ = fmt.Fprintf(w, "%s: %v\n", msg, err)
}

func main() {
	var cfg Config
	args, err := loadConfig(&cfg)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.WithError(err).Fatal("failed loading configuration")
	}

	// parse and set log level
	logLevel, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatalf("invalid log level: %s", cfg.LogLevel)
	} else {
		log.SetLevel(logLevel)
	}

	// the interface owns the terminal, logs go to a file
	logFile, err := openLogFile(&cfg)
	if err != nil {
		log.WithError(err).Fatal("failed opening log file")
	}

	defer func() { _ = logFile.Close() }()
	log.SetOutput(logFile)

	app, err := NewApp(&cfg, logging.NewLogrusAdapter(log.StandardLogger()))
	if err != nil {
		reportError(os.Stderr, "failed creating app", err)
		_ = logFile.Close()
		os.Exit(1)
	}

	log.Infof("starting %s", bridgemanager.VersionString())

	cmd := "tui"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "tui":
		err = app.Interactive()
	case "status":
		err = app.Status()
	case "logout":
		err = app.Logout()
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		reportError(os.Stderr, fmt.Sprintf("%s failed", cmd), err)
		_ = logFile.Close()
		os.Exit(1)
	}
}
