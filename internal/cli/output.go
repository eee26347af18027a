// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/siemens/ldbengine"
	"github.com/siemens/ldbengine/model"
)

// printTable writes the rows as a borderless table.
func printTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

// printPairs writes key-value pairs as a two-column table.
func printPairs(w io.Writer, pairs [][2]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(":")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}
	table.Render()
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listEntry is the JSON representation of a listing result, never including
// the root password.
type listEntry struct {
	ContainerID string          `json:"container_id"`
	Instance    *model.Instance `json:"instance,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// printInstances writes the listing results either as a table or JSON.
func printInstances(w io.Writer, format string, results []ldbengine.ListResult) error {
	if format == "json" {
		entries := make([]listEntry, 0, len(results))
		for _, result := range results {
			entry := listEntry{ContainerID: result.ContainerID}
			if result.Err != nil {
				entry.Error = result.Err.Error()
			} else {
				inst := redacted(result.Instance)
				entry.Instance = &inst
			}
			entries = append(entries, entry)
		}
		return printJSON(w, entries)
	}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			rows = append(rows, []string{
				"", "", "", "", "", shortID(result.ContainerID), "error: " + result.Err.Error(),
			})
			continue
		}
		inst := result.Instance
		rows = append(rows, []string{
			inst.Name,
			inst.DatabaseType.String(),
			inst.ImageRef(),
			port(inst.Port),
			string(inst.Status),
			shortID(inst.ContainerID),
			created(inst.CreatedAt),
		})
	}
	printTable(w, []string{"Name", "Type", "Image", "Port", "Status", "Container", "Created"}, rows)
	return nil
}

// printInstance writes the details of a single instance either as a table or
// JSON. The root password is only shown when requested.
func printInstance(w io.Writer, format string, inst model.Instance, showPassword bool) error {
	if !showPassword {
		inst = redacted(inst)
	}
	if format == "json" {
		return printJSON(w, inst)
	}
	printPairs(w, [][2]string{
		{"ID", inst.ID},
		{"Name", inst.Name},
		{"Container", inst.ContainerName()},
		{"Container ID", inst.ContainerID},
		{"Type", inst.DatabaseType.String()},
		{"Image", inst.ImageRef()},
		{"Port", port(inst.Port)},
		{"Status", string(inst.Status)},
		{"Created", created(inst.CreatedAt)},
		{"Volume", inst.VolumePath},
		{"Password", inst.RootPassword},
	})
	return nil
}

// redacted returns the instance with its root password masked.
func redacted(inst model.Instance) model.Instance {
	if inst.RootPassword != "" {
		inst.RootPassword = "********"
	}
	return inst
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func port(p uint16) string {
	if p == 0 {
		return "-"
	}
	return strconv.Itoa(int(p))
}

func created(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
