// Package cmd implements hfsinfo, the read-only command-line explorer that
// exercises the github.com/deploymenttheory/go-hfs library end to end:
// opening a volume, walking its catalog, and reporting file entries,
// hierarchy, and bodyfile-format metadata. A single command with flags
// rather than a discover/list/extract command tree, following the
// established persistent-flags-plus-Execute/os.Exit pattern.
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-hfs/internal/device"
	"github.com/deploymenttheory/go-hfs/internal/hfs"
)

const version = "0.1.0-dev"

var (
	offset       int64
	bodyfilePath string
	digest       bool
	entryIdent   string
	entryPath    string
	hierarchy    bool
	verbose      bool
	showVersion  bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:          "hfsinfo [flags] source",
	Short:        "Read-only explorer for HFS/HFS+/HFSX volumes",
	Long:         `hfsinfo opens an HFS, HFS+, or HFSX volume image or device and reports catalog metadata, directory hierarchy, and per-entry details without mounting the volume.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runInfo,
}

func init() {
	rootCmd.Flags().Int64VarP(&offset, "offset", "o", 0, "byte offset at which the volume begins inside source")
	rootCmd.Flags().StringVarP(&bodyfilePath, "bodyfile", "B", "", "write a Sleuthkit-3 bodyfile to PATH")
	rootCmd.Flags().BoolVarP(&digest, "digest", "d", false, "compute an MD5 digest per regular file in the bodyfile")
	rootCmd.Flags().StringVarP(&entryIdent, "entry", "E", "", `print info for one file entry by numeric CNID, or "all"`)
	rootCmd.Flags().StringVarP(&entryPath, "file", "F", "", "print info for a file entry by slash-separated path")
	rootCmd.Flags().BoolVarP(&hierarchy, "hierarchy", "H", false, "print the full hierarchy as an indented tree")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false, "print version and exit")
	rootCmd.Flags().StringVar(&outputFormat, "format", "table", "entry output format: table, json, or yaml")
}

// Execute runs the command, exiting nonzero and printing to stderr on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hfsinfo: %v\n", err)
		os.Exit(1)
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Fprintf(cmd.OutOrStdout(), "hfsinfo %s\n", version)
		return nil
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	source := args[0]

	cfg, err := device.LoadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("offset") {
		offset = cfg.DefaultOffset
	}
	if !cmd.Flags().Changed("verbose") {
		verbose = cfg.VerboseLogging
	}

	vol, err := hfs.Open(source, offset, cfg.NodeCacheSize)
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer vol.Close()

	stopAbortHandler := installAbortHandler(vol)
	defer stopAbortHandler()

	if verbose {
		header := vol.Header()
		fmt.Fprintf(os.Stderr, "hfsinfo: HFS+=%v allocation_block_size=%d\n", vol.IsHFSPlus(), header.AllocationBlockSize)
	}

	switch {
	case hierarchy:
		root, err := vol.RootEntry()
		if err != nil {
			return err
		}
		return printHierarchy(cmd.OutOrStdout(), root, "")
	case bodyfilePath != "":
		return writeBodyfile(vol, bodyfilePath, digest)
	case entryPath != "":
		entry, err := vol.EntryByPath(entryPath)
		if err != nil {
			return err
		}
		return printEntryInfo(cmd.OutOrStdout(), entry, outputFormat)
	case entryIdent != "":
		return printEntryByIdentifier(cmd.OutOrStdout(), vol, entryIdent, outputFormat)
	default:
		return cmd.Help()
	}
}

// installAbortHandler sets vol's abort flag and unblocks stdin on SIGINT,
// so a long directory walk or bodyfile dump can be interrupted cleanly
// mid-descent instead of ignoring Ctrl-C until the current operation
// finishes on its own. The returned stop function releases the signal
// subscription.
func installAbortHandler(vol *hfs.Volume) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			vol.SignalAbort()
			os.Stdin.Close()
		case <-done:
		}
	}()
	return func() {
		close(done)
		signal.Stop(sigCh)
	}
}
