// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/siemens/ldbengine"
	"github.com/siemens/ldbengine/engine/moby"
	"github.com/siemens/ldbengine/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	_ "github.com/siemens/ldbengine/endpoint/all" // pull in engine endpoint finder plugins
)

// Configuration keys, which double as flag names.
const (
	keyDatadir  = "datadir"
	keyHost     = "host"
	keyLogLevel = "log-level"
	keyGrace    = "grace"
	keySettle   = "settle"
	keyWorkers  = "workers"
	keyHubURL   = "hub-url"
	keyOutput   = "output"
)

// DefaultDatadirName is the name of the data directory inside the user's
// home directory.
const DefaultDatadirName = ".ldb-engine"

// Config is the effective configuration.
type Config struct {
	Datadir  string
	Host     string
	LogLevel string
	Grace    time.Duration
	Settle   time.Duration
	Workers  int
	HubURL   string
	Output   string
}

// defaultDatadir returns the default data directory, falling back to the
// current directory if the home directory is unknown.
func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDatadirName
	}
	return filepath.Join(home, DefaultDatadirName)
}

// setupFlags adds the global flags to the root command.
func setupFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(keyDatadir, defaultDatadir(), "directory for instance metadata and volumes")
	flags.String(keyHost, "", "container engine API endpoint; auto-discovered if empty")
	flags.String(keyLogLevel, "warning", "log level (trace, debug, info, warning, error)")
	flags.Duration(keyGrace, 10*time.Second, "grace period for stopping database containers")
	flags.Duration(keySettle, time.Second, "delay after restarting before inspecting")
	flags.Int(keyWorkers, 0, "maximum parallel container inspections; 0 is GOMAXPROCS")
	flags.String(keyHubURL, "", "Docker Hub API base URL")
	flags.StringP(keyOutput, "o", "table", "output format (table, json)")
}

// initConfig initializes the configuration sources.
func initConfig(v *viper.Viper) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v.SetEnvPrefix("ldb")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// loadConfig binds the command's flags and returns the effective
// configuration, including the optional configuration file inside the data
// directory.
func loadConfig(v *viper.Viper, cmd *cobra.Command) (*Config, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	v.SetConfigFile(filepath.Join(v.GetString(keyDatadir), "config.yaml"))
	if err := v.ReadInConfig(); err != nil {
		var notfound viper.ConfigFileNotFoundError
		if !errors.As(err, &notfound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot read configuration, reason: %w", err)
		}
	}
	conf := &Config{
		Datadir:  v.GetString(keyDatadir),
		Host:     v.GetString(keyHost),
		LogLevel: v.GetString(keyLogLevel),
		Grace:    v.GetDuration(keyGrace),
		Settle:   v.GetDuration(keySettle),
		Workers:  v.GetInt(keyWorkers),
		HubURL:   v.GetString(keyHubURL),
		Output:   v.GetString(keyOutput),
	}
	switch conf.Output {
	case "table", "json":
	default:
		return nil, fmt.Errorf("invalid output format %q", conf.Output)
	}
	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level, reason: %w", err)
	}
	logrus.SetLevel(level)
	return conf, nil
}

// connect returns an engine connected either to the configured endpoint or
// to the first responsive endpoint found.
func connect(ctx context.Context, conf *Config) (*moby.Engine, error) {
	if conf.Host == "" {
		return moby.Discover(ctx)
	}
	eng, err := moby.New(conf.Host)
	if err != nil {
		return nil, err
	}
	if err := eng.Ping(ctx); err != nil {
		_ = eng.Close()
		return nil, err
	}
	return eng, nil
}

// newManager returns a lifecycle manager according to the configuration,
// together with the underlying engine.
func newManager(ctx context.Context, conf *Config) (*ldbengine.Manager, *moby.Engine, error) {
	eng, err := connect(ctx, conf)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(conf.Datadir)
	if err != nil {
		_ = eng.Close()
		return nil, nil, err
	}
	mgr := ldbengine.New(eng, st, store.NewVolumes(conf.Datadir),
		ldbengine.WithGracePeriod(conf.Grace),
		ldbengine.WithSettleDelay(conf.Settle),
		ldbengine.WithWorkers(conf.Workers))
	return mgr, eng, nil
}
