package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	subscriptiondigest "digest-stack/agents/subscription-digest"
	"digest-stack/shared/ai"
	"digest-stack/shared/config"
	"digest-stack/shared/logging"
	"digest-stack/shared/scheduler"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	logCloser io.Closer

	model    string
	once     bool
	langs    []string
	segments bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "subscription-digest",
		Short: "Summarize recent activity from your YouTube subscriptions",
		Long: `Fetches recent uploads and posts from subscribed YouTube channels and
summarizes them with an LLM. Video transcripts can be fetched and summarized
individually.

Configuration is read from config.yaml (or CONFIG_FILE), .env and the
environment. Without real API keys the tool runs in a clearly labelled
placeholder mode.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.teardown() },
		RunE:              a.runReport,
	}
	root.PersistentFlags().StringVar(&a.model, "model", "", "LLM model to use (overrides LLM_MODEL)")
	root.Flags().BoolVar(&a.once, "once", false, "Generate one report and exit (default behaviour)")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate one subscription digest and print it",
		Args:  cobra.NoArgs,
		RunE:  a.runReport,
	}
	reportCmd.Flags().BoolVar(&a.once, "once", false, "Accepted for compatibility, reports always run once")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Generate digests on the configured cron schedule",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}

	transcriptCmd := &cobra.Command{
		Use:   "transcript <video-url-or-id>...",
		Short: "Fetch and print video transcripts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runTranscript,
	}
	transcriptCmd.Flags().StringSliceVar(&a.langs, "lang", nil, "Preferred transcript language, repeatable (default: TRANSCRIPT_LANGUAGES)")
	transcriptCmd.Flags().BoolVar(&a.segments, "segments", false, "Print timed segments instead of plain text")

	summarizeCmd := &cobra.Command{
		Use:   "summarize <video-url-or-id>...",
		Short: "Fetch video transcripts and summarize them",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runSummarize,
	}
	summarizeCmd.Flags().StringSliceVar(&a.langs, "lang", nil, "Preferred transcript language, repeatable (default: TRANSCRIPT_LANGUAGES)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List supported LLM models and check the configured one",
		Args:  cobra.NoArgs,
		RunE:  a.runModels,
	}

	root.AddCommand(reportCmd, serveCmd, transcriptCmd, summarizeCmd, modelsCmd)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.model != "" {
		cfg.LLM.Model = a.model
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.logCloser = closer
	return nil
}

func (a *app) teardown() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

func (a *app) newAgent(cmd *cobra.Command) (*subscriptiondigest.DigestAgent, error) {
	agent := subscriptiondigest.NewDigestAgent(a.cfg, cmd.OutOrStdout(), a.logger)
	if err := agent.Initialize(); err != nil {
		return nil, err
	}
	return agent, nil
}

func (a *app) runReport(cmd *cobra.Command, args []string) error {
	agent, err := a.newAgent(cmd)
	if err != nil {
		return err
	}

	// Provider failures are already reported in the output and the run log.
	if err := scheduler.New(a.cfg, agent, a.logger).RunOnce(cmd.Context()); err != nil {
		a.logger.WithError(err).Error("Report run failed")
	}
	return nil
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	agent := subscriptiondigest.NewDigestAgent(a.cfg, cmd.OutOrStdout(), a.logger)
	s := scheduler.New(a.cfg, agent, a.logger)

	a.logger.Info("Starting scheduler...")
	if err := s.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler failed: %w", err)
	}
	return nil
}

func (a *app) runTranscript(cmd *cobra.Command, args []string) error {
	agent, err := a.newAgent(cmd)
	if err != nil {
		return err
	}
	results := agent.FetchTranscripts(cmd.Context(), args, a.langs...)
	return subscriptiondigest.WriteTranscripts(cmd.OutOrStdout(), results, a.segments)
}

func (a *app) runSummarize(cmd *cobra.Command, args []string) error {
	agent, err := a.newAgent(cmd)
	if err != nil {
		return err
	}
	digests := agent.SummarizeVideos(cmd.Context(), args, a.langs...)
	return subscriptiondigest.WriteVideoDigests(cmd.OutOrStdout(), digests)
}

func (a *app) runModels(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available models:")
	for _, m := range ai.AvailableModels() {
		fmt.Fprintf(out, "  %s\n", m)
	}

	status := "ready"
	if !a.cfg.LLM.IsConfigured() {
		status = "not configured (set LLM_API_KEY or use a local model such as ollama/llama3)"
	}
	fmt.Fprintf(out, "\nConfigured model: %s, %s\n", a.cfg.LLM.Model, status)
	return nil
}
