package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Pirikara/liccheck/internal/policy"
	"github.com/Pirikara/liccheck/internal/strategy"
)

func newSelfCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "self-check",
		Short: "Check liccheck installation and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "liccheck self-check")
			fmt.Fprintln(out, "===================")

			level, err := policy.LevelStartingWith(opts.level)
			if err != nil {
				fmt.Fprintf(out, "❌ Invalid level: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "✅ Level: %s\n", level)

			s, src, err := loadStrategy(opts)
			if err != nil {
				fmt.Fprintf(out, "❌ Failed to load strategy: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "✅ Strategy loaded from %s %s (%d authorized, %d unauthorized licenses, %d authorized packages)\n",
				src.Kind, src.Path, len(s.AuthorizedLicenses()), len(s.UnauthorizedLicenses()), len(s.AuthorizedPackages()))

			if opts.input != "" {
				if _, err := os.Stat(opts.input); err != nil {
					fmt.Fprintf(out, "❌ Input file not readable: %v\n", err)
					return err
				}
				fmt.Fprintf(out, "✅ Input file: %s\n", opts.input)
			} else {
				path, err := exec.LookPath(opts.rfile)
				if err != nil {
					fmt.Fprintf(out, "❌ Resolver binary not found: %v\n", err)
					return err
				}
				fmt.Fprintf(out, "✅ Resolver binary: %s\n", path)
			}

			fmt.Fprintln(out, "\n✅ liccheck is ready to use!")
			return nil
		},
	}
}

func newPrintConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "print-config",
		Short: "Print current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Level: %s\n", opts.level)
			fmt.Fprintf(out, "Strategy File: %s\n", opts.sfile)
			fmt.Fprintf(out, "Manifest: %s\n", opts.manifest)
			fmt.Fprintf(out, "Resolver: %s\n", opts.rfile)
			fmt.Fprintf(out, "Input: %s\n", opts.input)
			fmt.Fprintf(out, "Reporting: %s\n", opts.reporting)
			fmt.Fprintf(out, "No Deps: %v\n", opts.noDeps)
			fmt.Fprintf(out, "Timeout: %s\n", opts.timeout)
			fmt.Fprintf(out, "Log Level: %s\n", opts.logLevel)

			s, src, err := loadStrategy(opts)
			if err != nil {
				fmt.Fprintf(out, "Strategy: [not loaded: %v]\n", err)
				return nil
			}
			fmt.Fprintf(out, "Strategy: %s %s\n", src.Kind, src.Path)
			fmt.Fprintf(out, "  Authorized Licenses: %s\n", strings.Join(s.AuthorizedLicenses(), ", "))
			fmt.Fprintf(out, "  Unauthorized Licenses: %s\n", strings.Join(s.UnauthorizedLicenses(), ", "))
			fmt.Fprintf(out, "  Authorized Packages: %s\n", strings.Join(s.AuthorizedPackages(), ", "))
			return nil
		},
	}
}

func newInitStrategyCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-strategy [path]",
		Short: "Write a default strategy file",
		Long: `Write the default strategy to path (license_strategy.json by default).
A path ending in .yaml or .yml is written as YAML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strategy.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			s, err := strategy.Parse(defaultStrategyJSON)
			if err != nil {
				return fmt.Errorf("failed to parse default strategy: %w", err)
			}
			data, err := strategy.Encode(path, s)
			if err != nil {
				return fmt.Errorf("failed to encode strategy: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write strategy: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
