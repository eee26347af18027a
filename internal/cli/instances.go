// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/siemens/ldbengine"
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/engine/moby"
	"github.com/siemens/ldbengine/model"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (a *app) createCommand() *cobra.Command {
	var (
		typename string
		image    string
		tag      string
		password string
		port     uint16
		pull     bool
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "create a new database instance",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, eng *moby.Engine) error {
		typ, err := model.ParseDatabaseType(typename)
		if err != nil {
			return err
		}
		policy, err := dbtype.Lookup(typ)
		if err != nil {
			return err
		}
		if image == "" {
			image = policy.HubRepository()
			image = strings.TrimPrefix(image, "library/")
		}
		if password == "" {
			if password, err = promptPassword("Root password"); err != nil {
				return err
			}
		}
		req := model.CreateRequest{
			Name:         args[0],
			DatabaseType: typ,
			Image:        image,
			Tag:          tag,
			Password:     password,
		}
		if cmd.Flags().Changed("port") {
			req.Port = &port
		}
		if pull {
			if err := pullImage(ctx, cmd, eng, req.Image+":"+req.Tag); err != nil {
				return err
			}
		}
		inst, err := mgr.Create(ctx, req)
		if err != nil {
			if model.IsRetryable(err) {
				log.Warn("port got taken in the meantime, please try again")
			}
			return err
		}
		return printInstance(cmd.OutOrStdout(), a.conf.Output, inst, false)
	})
	flags := cmd.Flags()
	flags.StringVarP(&typename, "type", "t", "postgresql", "database type (postgresql, redis, mysql, mongodb)")
	flags.StringVar(&image, "image", "", "image name; defaults to the official image of the database type")
	flags.StringVar(&tag, "tag", "latest", "image tag")
	flags.StringVarP(&password, "password", "p", "", "root password; prompted for if not given")
	flags.Uint16Var(&port, "port", 0, "host port; allocated automatically if not given")
	flags.BoolVar(&pull, "pull", false, "pull the image before creating the instance")
	return cmd
}

// transition returns a command applying the specified lifecycle transition
// to the referenced instance.
func (a *app) transition(use, short string,
	fn func(*ldbengine.Manager, context.Context, string) (model.Instance, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " INSTANCE",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		inst, err := fn(mgr, ctx, args[0])
		if err != nil {
			return err
		}
		if a.conf.Output == "json" {
			return printJSON(cmd.OutOrStdout(), redacted(inst))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", inst.Name, inst.Status)
		return nil
	})
	return cmd
}

func (a *app) startCommand() *cobra.Command {
	return a.transition("start", "start a database instance", (*ldbengine.Manager).Start)
}

func (a *app) stopCommand() *cobra.Command {
	return a.transition("stop", "stop a database instance", (*ldbengine.Manager).Stop)
}

func (a *app) restartCommand() *cobra.Command {
	return a.transition("restart", "restart a database instance", (*ldbengine.Manager).Restart)
}

func (a *app) deleteCommand() *cobra.Command {
	var volume, force bool
	cmd := &cobra.Command{
		Use:     "delete INSTANCE",
		Aliases: []string{"rm"},
		Short:   "remove a database instance",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		label := fmt.Sprintf("Delete instance %q", args[0])
		if volume {
			label += " including its data"
		}
		ok, err := confirm(label, force)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
		return mgr.Delete(ctx, args[0], volume)
	})
	cmd.Flags().BoolVar(&volume, "volume", false, "also delete the instance's data volume")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list all database instances",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		results, err := mgr.List(ctx)
		if err != nil {
			return err
		}
		return printInstances(cmd.OutOrStdout(), a.conf.Output, results)
	})
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status INSTANCE",
		Short: "show the engine status of a database instance",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		status, err := mgr.Status(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), status)
		return nil
	})
	return cmd
}

func (a *app) inspectCommand() *cobra.Command {
	var showPassword bool
	cmd := &cobra.Command{
		Use:   "inspect INSTANCE",
		Short: "show the details of a database instance",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		inst, err := mgr.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printInstance(cmd.OutOrStdout(), a.conf.Output, inst, showPassword)
	})
	cmd.Flags().BoolVar(&showPassword, "show-password", false, "show the root password")
	return cmd
}

func (a *app) connstrCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connstr INSTANCE",
		Short: "print the connection string of a database instance",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		connstr, err := mgr.ConnectionString(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), connstr)
		return nil
	})
	return cmd
}
