// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"strings"

	"github.com/siemens/ldbengine/dbtype"
	"github.com/siemens/ldbengine/hub"
	"github.com/siemens/ldbengine/model"
	"github.com/spf13/cobra"
)

func (a *app) tagsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tags TYPE|REPOSITORY",
		Short: "list the available image tags on the Docker Hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repository := args[0]
			if typ, err := model.ParseDatabaseType(repository); err == nil {
				policy, err := dbtype.Lookup(typ)
				if err != nil {
					return err
				}
				repository = policy.HubRepository()
			}
			tags, err := hub.NewClient(a.conf.HubURL).Tags(cmd.Context(), repository)
			if err != nil {
				return err
			}
			cats := hub.Categorize(hub.Names(tags))
			if a.conf.Output == "json" {
				return printJSON(cmd.OutOrStdout(), cats)
			}
			printPairs(cmd.OutOrStdout(), [][2]string{
				{"Latest", joinLimited(cats.Latest, limit)},
				{"Versions", joinLimited(cats.Versions, limit)},
				{"Variants", joinLimited(cats.Variants, limit)},
			})
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum tags to show per category; all if zero")
	return cmd
}

// joinLimited joins at most limit names, indicating any omitted ones.
func joinLimited(names []string, limit int) string {
	if len(names) == 0 {
		return "-"
	}
	if limit <= 0 || len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:limit], ", ") + ", ..."
}

func (a *app) imagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "list the supported database images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			images := hub.SupportedImages()
			if a.conf.Output == "json" {
				return printJSON(cmd.OutOrStdout(), images)
			}
			rows := make([][]string, 0, len(images))
			for _, image := range images {
				rows = append(rows, []string{image.Name, image.Repository, image.Description})
			}
			printTable(cmd.OutOrStdout(), []string{"Name", "Repository", "Description"}, rows)
			return nil
		},
	}
}
