package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Pirikara/liccheck/internal/logger"
	"github.com/Pirikara/liccheck/internal/policy"
	"github.com/Pirikara/liccheck/internal/report"
	"github.com/Pirikara/liccheck/internal/resolver"
	"github.com/Pirikara/liccheck/internal/strategy"
)

// Default strategy written by init-strategy
//
//go:embed default_strategy.json
var defaultStrategyJSON []byte

// errPolicyFailed signals UNAUTHORIZED or UNKNOWN packages; the summary has
// already been printed so run exits 1 without another message.
var errPolicyFailed = errors.New("license policy check failed")

type options struct {
	sfile     string
	level     string
	rfile     string
	reporting string
	noDeps    bool
	manifest  string
	input     string
	timeout   time.Duration
	logLevel  string
	logFormat string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	rootCmd := newRootCmd(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errPolicyFailed) {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	return 0
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "liccheck",
		Short: "Check license of packages and their dependencies",
		Long: `liccheck lists the project's packages through the package manager and checks
their declared licenses against a strategy.

Levels:
  STANDARD - at least one authorized license (default)
  CAUTIOUS - per standard but no unauthorized licenses
  PARANOID - all licenses must be authorized

The strategy is read from --sfile, else from the "extra.liccheck" section of
composer.json, else from license_strategy.json.`,
		Example: `  liccheck
  liccheck -s license_strategy.json -l paranoid
  liccheck --no-deps -R reporting.txt
  liccheck --input licenses.json`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.sfile, "sfile", "s", "", "Strategy JSON (or YAML) file")
	flags.StringVarP(&opts.level, "level", "l", string(policy.LevelStandard), "Compliance level: STANDARD, CAUTIOUS or PARANOID (prefix accepted)")
	flags.StringVarP(&opts.rfile, "rfile", "r", resolver.DefaultBinary, "Path to the composer binary")
	flags.StringVarP(&opts.reporting, "reporting", "R", "", "Report file to append results to")
	flags.BoolVar(&opts.noDeps, "no-deps", false, "Don't check dev dependencies (composer --no-dev)")
	flags.StringVar(&opts.manifest, "manifest", strategy.DefaultManifest, "Manifest holding an embedded strategy under extra.liccheck")
	flags.StringVar(&opts.input, "input", "", "Read saved 'composer licenses --format json' output instead of running composer")
	flags.DurationVar(&opts.timeout, "timeout", resolver.DefaultTimeout, "Timeout for the composer call")
	flags.StringVar(&opts.logLevel, "log-level", string(logger.LevelWarn), "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", string(logger.FormatJSON), "Log format: json or console")

	// Subcommands
	rootCmd.AddCommand(newSelfCheckCmd(opts))
	rootCmd.AddCommand(newPrintConfigCmd(opts))
	rootCmd.AddCommand(newInitStrategyCmd())

	return rootCmd
}

func newLogger(cmd *cobra.Command, opts *options) (*logger.Logger, error) {
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(opts.logFormat)
	if err != nil {
		return nil, err
	}
	return logger.New(cmd.ErrOrStderr(), level, format).WithRunID(uuid.NewString()), nil
}

func loadStrategy(opts *options) (*policy.Strategy, strategy.Source, error) {
	return strategy.Load(strategy.Options{
		File:        opts.sfile,
		Manifest:    opts.manifest,
		DefaultFile: strategy.DefaultFile,
	})
}

func newResolver(opts *options) resolver.Resolver {
	if opts.input != "" {
		return &resolver.File{Path: opts.input}
	}
	return &resolver.Composer{
		Binary:  opts.rfile,
		NoDev:   opts.noDeps,
		Timeout: opts.timeout,
	}
}

func runCheck(cmd *cobra.Command, opts *options) error {
	log, err := newLogger(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync()

	level, err := policy.LevelStartingWith(opts.level)
	if err != nil {
		log.Error("invalid_level", err.Error(), nil)
		return err
	}

	s, src, err := loadStrategy(opts)
	if err != nil {
		log.Error("strategy_load_failed", err.Error(), map[string]interface{}{
			"kind": string(src.Kind),
			"path": src.Path,
		})
		return err
	}
	log.Info("strategy_loaded", "Strategy loaded", map[string]interface{}{
		"kind":                  string(src.Kind),
		"path":                  src.Path,
		"authorized_licenses":   len(s.AuthorizedLicenses()),
		"unauthorized_licenses": len(s.UnauthorizedLicenses()),
		"authorized_packages":   len(s.AuthorizedPackages()),
	})

	// Set up signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := report.NewConsole(cmd.OutOrStdout())
	console.Gathering()

	start := time.Now()
	packages, err := newResolver(opts).Resolve(ctx)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout())
		log.Error("resolution_failed", "Failed to resolve packages", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	log.Info("packages_resolved", fmt.Sprintf("Resolved %d packages", len(packages)), map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"input":       opts.input,
	})
	console.Gathered(len(packages), opts.noDeps)

	engine := policy.NewEngine(s, level)
	result := engine.Evaluate(packages)
	for _, reason := range policy.Reasons() {
		for _, pkg := range result.Packages(reason) {
			log.LogClassification(pkg, reason, level)
		}
	}

	if opts.reporting != "" {
		rows := report.Rows(result)
		if err := report.AppendFile(opts.reporting, rows); err != nil {
			log.Error("report_failed", err.Error(), map[string]interface{}{
				"path": opts.reporting,
			})
			return err
		}
		log.Info("report_written", fmt.Sprintf("Appended %d rows", len(rows)), map[string]interface{}{
			"path": opts.reporting,
		})
	}

	console.Summary(result)

	log.Info("check_complete", "License check finished", map[string]interface{}{
		"level":        string(level),
		"total":        result.Total(),
		"ok":           len(result.Packages(policy.ReasonOK)),
		"unauthorized": len(result.Packages(policy.ReasonUnauthorized)),
		"unknown":      len(result.Packages(policy.ReasonUnknown)),
		"exit_code":    result.ExitCode(),
	})

	if result.Failed() {
		return errPolicyFailed
	}
	return nil
}
