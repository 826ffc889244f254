package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/upgraded-notifs/notifs/internal/app"
	"github.com/upgraded-notifs/notifs/internal/config"
	"github.com/upgraded-notifs/notifs/internal/logger"
	"github.com/upgraded-notifs/notifs/pkg/providers"
)

const appName = "notifs"

type options struct {
	dryRun     bool
	source     string
	configPath string
	debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "notifs fetches new consulting assignments and tenders, classifies them against your roles and emails a digest",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "fetch, classify and persist but do not send the email")
	cmd.Flags().StringVar(&opts.source, "source", "", "run a single source by id (default is all sources)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "digest config file (default is CONFIG_PATH or ./config.json)")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "verbose/debug output")

	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.configPath != "" {
		cfg.ConfigPath = opts.configPath
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}

	// reject a bad --source before any credentials are required
	reg, err := providers.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("load sources registry: %w", err)
	}
	if _, err := app.SelectSources(reg, opts.source); err != nil {
		return err
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj(cfg.AppName+" starting", "config", map[string]any{
		"env":         cfg.Env,
		"log_level":   cfg.LogLevel,
		"sources":     reg.IDs(),
		"sinks_file":  cfg.SinksFile,
		"storage":     cfg.StorageType,
		"classifier":  cfg.ClassifierType,
		"from_email":  cfg.FromEmail,
		"seen_path":   cfg.SeenPath,
		"bbolt_path":  cfg.BBoltPath,
		"config_path": cfg.ConfigPath,
	})
	log.InfoObj("run options", "run_options", map[string]any{
		"dry_run": opts.dryRun,
		"source":  opts.source,
	})

	runner, err := app.NewRunner(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return err
	}
	defer runner.Close()

	res, err := runner.Run(ctx, app.RunOptions{DryRun: opts.dryRun, Source: opts.source})
	if err != nil {
		log.ErrorObj("run failed", "error", err.Error())
		return err
	}

	log.InfoObj(cfg.AppName+" finished", "run_result", map[string]any{
		"sources": res.Sources,
		"matches": len(res.Matches),
		"seen":    res.SeenCount,
		"emailed": res.Emailed,
	})
	return nil
}
