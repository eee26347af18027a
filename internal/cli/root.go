// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/siemens/ldbengine"
	"github.com/siemens/ldbengine/engine/moby"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version of ldbctl, set at build time.
var Version = "0.9.0"

// app carries the configuration shared by all commands.
type app struct {
	viper *viper.Viper
	conf  *Config
}

// runner is the signature of command implementations needing an engine.
type runner func(ctx context.Context, cmd *cobra.Command, args []string,
	mgr *ldbengine.Manager, eng *moby.Engine) error

// withManager wraps a runner so that it gets a lifecycle manager, which is
// closed after the runner returns.
func (a *app) withManager(fn runner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		mgr, eng, err := newManager(cmd.Context(), a.conf)
		if err != nil {
			return err
		}
		defer mgr.Close()
		return fn(cmd.Context(), cmd, args, mgr, eng)
	}
}

// NewRootCommand returns the ldbctl root command with all its subcommands.
func NewRootCommand() *cobra.Command {
	a := &app{viper: viper.New()}
	root := &cobra.Command{
		Use:   "ldbctl",
		Short: "manage local database instances",
		Long: fmt.Sprintf(`ldbctl (v%s)

Provisions, runs and removes single-container PostgreSQL, Redis, MySQL and
MongoDB instances on the local Docker or podman engine.`, Version),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig(a.viper)
			conf, err := loadConfig(a.viper, cmd)
			if err != nil {
				return err
			}
			a.conf = conf
			return nil
		},
	}
	setupFlags(root)

	root.AddCommand(
		a.createCommand(),
		a.startCommand(),
		a.stopCommand(),
		a.restartCommand(),
		a.deleteCommand(),
		a.listCommand(),
		a.statusCommand(),
		a.inspectCommand(),
		a.connstrCommand(),
		a.portsCommand(),
		a.pullCommand(),
		a.logsCommand(),
		a.tagsCommand(),
		a.imagesCommand(),
		a.volumesCommand(),
		versionCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version number of ldbctl",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ldbctl v%s\n", Version)
		},
	}
}

// Execute runs the root command, exiting with a non-zero exit code on error.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
