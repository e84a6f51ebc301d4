// Package cli implements the unildd command-line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/unildd"
	"github.com/simonhull/unildd/internal/hostcompat"
)

// ErrReadFailed is returned when at least one input could not be read.
// The individual errors have already been printed.
var ErrReadFailed = errors.New("one or more files could not be read")

// NewRootCmd builds the unildd command tree.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		format     string
		debug      bool
		maxDepth   int
		hostCheck  bool
	)

	cmd := &cobra.Command{
		Use:   "unildd [files...]",
		Short: "Show linkage metadata of executables, libraries and archives",
		Long: `unildd reads ELF, Mach-O, PE and COFF objects, including those nested in
ar archives and fat binaries, and reports for each object its format,
target OS, CPU, interpreter and imported libraries.

Objects that cannot be fully parsed are still listed, with the error that
stopped them.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := DefaultConfig()
			if configPath != "" {
				loaded, err := LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			flags := cmd.Flags()
			if flags.Changed("format") || configPath == "" {
				cfg.Format = format
			}
			if flags.Changed("debug") {
				cfg.Debug = debug
			}
			if flags.Changed("max-depth") {
				cfg.MaxDepth = maxDepth
			}
			if flags.Changed("host-check") {
				cfg.HostCheck = hostCheck
			}

			return run(cmd, args, cfg)
		},
	}

	AddFormatFlag(cmd, &format, FormatTable, supportedFormats)
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log parser diagnostics to stderr")
	cmd.Flags().IntVar(&maxDepth, "max-depth", unildd.DefaultMaxDepth, "Maximum container nesting")
	cmd.Flags().BoolVar(&hostCheck, "host-check", false, "Compare each object's OS and CPU with this host")

	cmd.AddCommand(newTreeCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func run(cmd *cobra.Command, paths []string, cfg Config) error {
	if err := ValidateFormat(cfg.Format, supportedFormats); err != nil {
		return err
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative")
	}

	ctx := cmd.Context()
	results, err := unildd.ReadFiles(ctx, paths, cfg.options()...)
	if err != nil {
		return err
	}

	var host *hostcompat.Host
	if cfg.HostCheck {
		h, err := hostcompat.Detect(ctx)
		if err != nil {
			return err
		}
		host = &h
	}

	failed := false
	for _, r := range results {
		if r.Err != nil {
			failed = true
			cmd.PrintErrf("%s: %v\n", r.Path, r.Err)
		}
	}

	if err := writeReports(cmd.OutOrStdout(), OutputFormat(cfg.Format), buildReports(results, host), cfg.HostCheck); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if failed {
		return ErrReadFailed
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := unildd.GetVersionInfo()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "unildd version %s\n", info.Version)
			_, _ = fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			_, _ = fmt.Fprintf(out, "Build date: %s\n", info.BuildTime)
			_, _ = fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
		},
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
