// indeed-bot is an automated Indeed application runner.
//
// Harvests in-platform apply links from configured searches and drives
// the multi-step application wizard for each new job. Answers screening
// questions from deterministic rules, a persistent answer cache and an
// optional Gemini fallback.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/DIEGOHORVATTI/indeed-bot/internal/answers"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/bot"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/browser"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/config"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/docs"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/history"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/llm"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/registry"
	"github.com/DIEGOHORVATTI/indeed-bot/internal/wizard"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		mode       string
		maxApplies int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:     "indeed-bot",
		Short:   "Automated Indeed application runner",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			// Secrets come from the environment; .env is a convenience.
			if err := godotenv.Load(); err == nil {
				slog.Debug("loaded .env file")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if maxApplies > 0 {
				cfg.MaxApplies = maxApplies
			}

			runMode := bot.Mode(mode)
			if runMode != bot.ModeFull && runMode != bot.ModeMinimal {
				return fmt.Errorf("invalid --mode %q (full or minimal)", mode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, runMode)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	cmd.Flags().StringVarP(&mode, "mode", "m", "full", "run mode: full (batch harvest, tailored documents) or minimal (per page, stored resume)")
	cmd.Flags().IntVar(&maxApplies, "max", 0, "override the application cap for this run")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, cfg *config.Config, mode bot.Mode) error {
	history.SetPath(cfg.Storage.HistoryPath)

	reg := registry.Open(cfg.Storage.RegistryPath)
	cache := answers.OpenCache(cfg.Storage.CachePath)

	var gen answers.Generative
	var drafter *docs.Generator
	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return err
		}
		gen = client
		if mode == bot.ModeFull && cfg.Candidate.BaseCVDoc != "" {
			drafter = &docs.Generator{
				Client:       client,
				BaseCVPath:   cfg.Candidate.BaseCVDoc,
				BaseCoverDoc: cfg.Candidate.CoverLetter,
				OutputDir:    cfg.Candidate.OutputDir,
			}
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set, generative answers disabled")
	}

	session, err := browser.NewChromeSession(ctx, browser.Options{
		UserDataDir: cfg.Browser.UserDataDir,
		Headless:    cfg.Browser.Headless,
		ProxyServer: cfg.Browser.Proxy,
	})
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer session.Close()

	driver := &wizard.Driver{
		Session:  session,
		Resolver: answers.NewResolver(cache, gen),
		CVPath:   cfg.Candidate.CVPath,
		Verify:   cfg.Verify,
	}
	if drafter != nil {
		driver.Docs = drafter
	}

	b := bot.New(cfg, session, reg, cache, driver)
	submitted, err := b.Run(ctx, mode)
	slog.Info("done", slog.Int("submitted", submitted))
	return err
}
