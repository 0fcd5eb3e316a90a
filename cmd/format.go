package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// EntryInfo is the CLI's presentation shape for one file entry: every
// field hfsinfo can print, independent of output format.
type EntryInfo struct {
	Name            string   `json:"name" yaml:"name"`
	Identifier      uint32   `json:"identifier" yaml:"identifier"`
	Parent          uint32   `json:"parent" yaml:"parent"`
	Kind            string   `json:"kind" yaml:"kind"`
	Created         string   `json:"created" yaml:"created"`
	Modified        string   `json:"modified" yaml:"modified"`
	Mode            string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Owner           *uint32  `json:"owner,omitempty" yaml:"owner,omitempty"`
	Group           *uint32  `json:"group,omitempty" yaml:"group,omitempty"`
	Size            *int64   `json:"size,omitempty" yaml:"size,omitempty"`
	HasResourceFork bool     `json:"has_resource_fork,omitempty" yaml:"has_resource_fork,omitempty"`
	LinkTarget      string   `json:"link_target,omitempty" yaml:"link_target,omitempty"`
	Attributes      []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// FormatEntries writes entries to w as a table, JSON array, or YAML
// document, per --format: table via text/tabwriter, JSON via
// encoding/json, YAML via gopkg.in/yaml.v3.
func FormatEntries(w io.Writer, entries []EntryInfo, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(entries)
	case "table", "":
		return formatEntriesTable(w, entries)
	default:
		return fmt.Errorf("unsupported output format %q (want table, json, or yaml)", format)
	}
}

func formatEntriesTable(w io.Writer, entries []EntryInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "IDENTIFIER\tPARENT\tKIND\tMODE\tSIZE\tNAME\n")
	for _, e := range entries {
		size := "-"
		if e.Size != nil {
			size = fmt.Sprintf("%d", *e.Size)
		}
		mode := e.Mode
		if mode == "" {
			mode = "-"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", e.Identifier, e.Parent, e.Kind, mode, size, e.Name)
	}
	return tw.Flush()
}
