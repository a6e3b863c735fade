package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"droidswitch/config"
	"droidswitch/config/sync"
	"droidswitch/internal/balance"
	"droidswitch/internal/prompts"
	"droidswitch/internal/shell"
	"droidswitch/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "droidswitch",
	Short:         "Factory droid API key switcher",
	Long:          "A command line tool for managing several Factory API keys and switching the one the droid CLI uses",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("home", "", "Home directory to read and write configuration under (default: current user's home)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("balance-endpoint", balance.DefaultEndpoint, "Usage API endpoint")
	flags.Duration("balance-timeout", balance.DefaultTimeout, "Timeout of a single balance request")
	flags.Duration("balance-delay", balance.DefaultDelay, "Pause between requests when refreshing every balance")

	_ = v.BindPFlag("home", flags.Lookup("home"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("balance.endpoint", flags.Lookup("balance-endpoint"))
	_ = v.BindPFlag("balance.timeout", flags.Lookup("balance-timeout"))
	_ = v.BindPFlag("balance.delay", flags.Lookup("balance-delay"))

	v.SetEnvPrefix("DROIDSWITCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version

	rootCmd.SetVersionTemplate(`droidswitch {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// app wires the components every command works with
type app struct {
	paths    config.Paths
	log      *logrus.Logger
	manager  *config.Manager
	patcher  *shell.Patcher
	env      *sync.EnvWriter
	settings *sync.SettingsWriter
	balance  *balance.Client
	prompts  *prompts.Library
}

func newLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(level)
	return log, nil
}

func newBalanceClient(log logrus.FieldLogger) (*balance.Client, error) {
	endpoint := v.GetString("balance.endpoint")
	if !utils.ValidateURL(endpoint) {
		return nil, fmt.Errorf("invalid balance endpoint: %s", endpoint)
	}
	timeout := v.GetDuration("balance.timeout")
	if timeout <= 0 {
		timeout = balance.DefaultTimeout
	}
	delay := v.GetDuration("balance.delay")
	if delay < 0 {
		delay = 0
	}
	return balance.NewClient(
		balance.WithEndpoint(endpoint),
		balance.WithTimeout(timeout),
		balance.WithDelay(delay),
		balance.WithLogger(log.WithField("component", "balance")),
	), nil
}

func newApp() (*app, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	paths, err := config.DefaultPaths(v.GetString("home"))
	if err != nil {
		return nil, err
	}

	client, err := newBalanceClient(log)
	if err != nil {
		return nil, err
	}

	patcher := shell.NewPatcher(shell.ForCurrentOS(paths.Home))
	env := sync.NewEnvWriter(paths.FactoryConfig, patcher, log.WithField("component", "env"))
	settings := sync.NewSettingsWriter(paths.Settings)

	manager := config.NewManager(
		config.NewStore(paths.AppConfig),
		env,
		config.WithBalanceFetcher(client),
		config.WithSettingsWriter(settings),
		config.WithLogger(log.WithField("component", "manager")),
		config.WithClock(time.Now),
	)

	return &app{
		paths:    paths,
		log:      log,
		manager:  manager,
		patcher:  patcher,
		env:      env,
		settings: settings,
		balance:  client,
		prompts:  prompts.NewLibrary(paths.AgentsMD, paths.Prompts, log.WithField("component", "prompts")),
	}, nil
}
