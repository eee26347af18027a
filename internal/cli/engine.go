// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/siemens/ldbengine"
	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/engine/moby"
	"github.com/siemens/ldbengine/model"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func (a *app) portsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "show host ports in use and the next free ports",
	}
	occupied := &cobra.Command{
		Use:   "occupied",
		Short: "list the host ports published by running containers",
		Args:  cobra.NoArgs,
	}
	occupied.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		ports, err := mgr.Ports().OccupiedPorts(ctx)
		if err != nil {
			return err
		}
		sorted := make([]uint16, 0, len(ports))
		for port := range ports {
			sorted = append(sorted, port)
		}
		slices.Sort(sorted)
		if a.conf.Output == "json" {
			return printJSON(cmd.OutOrStdout(), sorted)
		}
		for _, port := range sorted {
			fmt.Fprintln(cmd.OutOrStdout(), port)
		}
		return nil
	})
	var typename string
	next := &cobra.Command{
		Use:   "next",
		Short: "show the next free port for a database type",
		Args:  cobra.NoArgs,
	}
	next.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		typ, err := model.ParseDatabaseType(typename)
		if err != nil {
			return err
		}
		port, err := mgr.Ports().Allocate(ctx, typ, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), port)
		return nil
	})
	next.Flags().StringVarP(&typename, "type", "t", "postgresql", "database type")
	cmd.AddCommand(occupied, next)
	return cmd
}

func (a *app) pullCommand() *cobra.Command {
	var typename string
	cmd := &cobra.Command{
		Use:   "pull [IMAGE[:TAG]]",
		Short: "pull a database image",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		_ *ldbengine.Manager, eng *moby.Engine) error {
		var ref string
		if len(args) > 0 {
			ref = args[0]
		} else {
			typ, err := model.ParseDatabaseType(typename)
			if err != nil {
				return err
			}
			policy, err := dbtype.Lookup(typ)
			if err != nil {
				return err
			}
			ref = policy.HubRepository()
		}
		image, tag := ldbengine.SplitImageRef(ref)
		return pullImage(ctx, cmd, eng, image+":"+tag)
	})
	cmd.Flags().StringVarP(&typename, "type", "t", "postgresql",
		"database type whose official image to pull if no image is given")
	return cmd
}

// pullImage pulls the image, reporting the overall progress status changes.
func pullImage(ctx context.Context, cmd *cobra.Command, eng *moby.Engine, ref string) error {
	log.Infof("pulling image %s", ref)
	out := cmd.ErrOrStderr()
	return eng.Pull(ctx, ref, func(p moby.PullProgress) {
		switch {
		case p.ID == "":
			fmt.Fprintln(out, p.Status)
		case p.Total > 0:
			log.Debugf("%s: %s %d/%d", p.ID, p.Status, p.Current, p.Total)
		default:
			fmt.Fprintf(out, "%s: %s\n", p.ID, p.Status)
		}
	})
}

func (a *app) logsCommand() *cobra.Command {
	var opts moby.LogOptions
	cmd := &cobra.Command{
		Use:   "logs INSTANCE",
		Short: "show the container logs of a database instance",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, eng *moby.Engine) error {
		inst, err := mgr.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return eng.Logs(ctx, inst.ContainerID, opts, func(ev moby.LogEvent) {
			switch ev.Kind {
			case moby.StdOut:
				fmt.Fprint(cmd.OutOrStdout(), ev.Message)
			case moby.StdErr:
				fmt.Fprint(cmd.ErrOrStderr(), ev.Message)
			case moby.Error:
				log.Debugf("log stream failed: %s", ev.Message)
			}
		})
	})
	cmd.Flags().IntVarP(&opts.Tail, "tail", "n", 0, "number of lines from the end; all if zero")
	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "follow the log output")
	cmd.Flags().BoolVar(&opts.Timestamps, "timestamps", false, "show timestamps")
	return cmd
}

func (a *app) volumesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "manage instance data volumes",
	}
	orphans := &cobra.Command{
		Use:   "orphans",
		Short: "list data volumes not belonging to any known instance",
		Args:  cobra.NoArgs,
	}
	orphans.RunE = a.withManager(func(ctx context.Context, cmd *cobra.Command, args []string,
		mgr *ldbengine.Manager, _ *moby.Engine) error {
		paths, err := mgr.OrphanVolumes()
		if err != nil {
			return err
		}
		if a.conf.Output == "json" {
			return printJSON(cmd.OutOrStdout(), paths)
		}
		rows := make([][]string, 0, len(paths))
		for idx, path := range paths {
			rows = append(rows, []string{strconv.Itoa(idx + 1), path})
		}
		printTable(cmd.OutOrStdout(), []string{"#", "Path"}, rows)
		return nil
	})
	cmd.AddCommand(orphans)
	return cmd
}
