package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	audioimpl "github.com/foxseedlab/mensetsukun/external/audio"
	"github.com/foxseedlab/mensetsukun/external/backend"
	configloader "github.com/foxseedlab/mensetsukun/external/config"
	historyimpl "github.com/foxseedlab/mensetsukun/external/history"
	"github.com/foxseedlab/mensetsukun/external/terminal"
	"github.com/foxseedlab/mensetsukun/internal/capture"
	"github.com/foxseedlab/mensetsukun/internal/config"
	"github.com/foxseedlab/mensetsukun/internal/history"
	"github.com/foxseedlab/mensetsukun/internal/interview"
	"github.com/foxseedlab/mensetsukun/internal/shell"
	"github.com/foxseedlab/mensetsukun/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mensetsukun",
		Short:        "Terminal client for AI-scored Excel mock interviews",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newReportCmd(), newHistoryCmd(), newHealthCmd())
	return root
}

// bootstrap loads configuration, configures logging and builds the
// dependency graph shared by every subcommand.
func bootstrap() (do.Injector, context.Context, context.CancelFunc, error) {
	cfg, err := configloader.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	initLogger(cfg)
	slog.Debug("configuration loaded", "env", cfg.Env, "server_url", cfg.ServerURL)

	injector := setupDI(cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return injector, ctx, cancel, nil
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	backend.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	historyimpl.RegisterDI(injector)
	terminal.RegisterDI(injector)
	capture.RegisterDI(injector)
	shell.RegisterDI(injector)

	return injector
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive interview session",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, ctx, cancel, err := bootstrap()
			if err != nil {
				return err
			}
			defer cancel()

			archive, err := do.Invoke[history.Archive](injector)
			if err != nil {
				return err
			}
			defer func() {
				if err := archive.Close(); err != nil {
					slog.Warn("closing history archive failed", "error", err)
				}
			}()

			sh, err := do.Invoke[*shell.Shell](injector)
			if err != nil {
				return err
			}
			return sh.Run(ctx)
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <session-id>",
		Short: "Fetch and display the report for a finished session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, ctx, cancel, err := bootstrap()
			if err != nil {
				return err
			}
			defer cancel()

			client, err := do.Invoke[interview.Client](injector)
			if err != nil {
				return err
			}
			rep, err := client.FetchReport(ctx, args[0])
			if err != nil {
				return errors.New(interview.UserMessage(err))
			}

			term, err := do.Invoke[ui.UI](injector)
			if err != nil {
				return err
			}
			term.ShowReport(*rep)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List locally archived interview results",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, ctx, cancel, err := bootstrap()
			if err != nil {
				return err
			}
			defer cancel()

			archive, err := do.Invoke[history.Archive](injector)
			if err != nil {
				return err
			}
			defer func() { _ = archive.Close() }()

			records, err := archive.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no archived interviews yet")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%s  %-20s %.1f/5 over %d questions  (session %s)\n",
					rec.CompletedAt.Local().Format("2006-01-02 15:04"),
					rec.UserName, rec.FinalScore, rec.TotalQuestions, rec.SessionID)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results to list")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the interview backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, ctx, cancel, err := bootstrap()
			if err != nil {
				return err
			}
			defer cancel()

			client, err := do.Invoke[interview.Client](injector)
			if err != nil {
				return err
			}
			if err := client.Health(ctx); err != nil {
				return errors.New(interview.UserMessage(err))
			}
			fmt.Println("backend healthy")
			return nil
		},
	}
}
