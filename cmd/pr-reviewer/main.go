package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dagenius007/pr-reviewer/internal/ai"
	"github.com/dagenius007/pr-reviewer/internal/config"
	"github.com/dagenius007/pr-reviewer/internal/github"
	"github.com/dagenius007/pr-reviewer/internal/logging"
	"github.com/dagenius007/pr-reviewer/internal/review"
	"github.com/dagenius007/pr-reviewer/internal/server"
	"github.com/dagenius007/pr-reviewer/internal/webhook"
	"github.com/dagenius007/pr-reviewer/internal/worker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:           "pr-reviewer",
	Short:         "GitHub webhook service that posts AI reviews on pull requests",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, flush, err := logging.NewZap(cfg.Environment, cfg.LogLevel)
		if err != nil {
			return err
		}
		defer flush()

		return run(cmd.Context(), cfg, log)
	},
}

func init() {
	f := rootCmd.Flags()
	f.String("port", "", "HTTP listen port (PORT)")
	f.String("env-file", "", "dotenv file to load (ENV_FILE)")
	f.String("log-level", "", "log level: debug or info (LOG_LEVEL)")
	f.String("ai-provider", "", "AI backend: openai or ollama (AI_PROVIDER)")
	f.Int("worker-count", 0, "background review workers (WORKER_COUNT)")
	f.Int("review-concurrency", 0, "simultaneous file reviews per PR (REVIEW_CONCURRENCY)")
}

func run(ctx context.Context, cfg config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WebhookSecret == "" {
		log.Warn("GITHUB_WEBHOOK_SECRET is empty, webhook signatures will not be checked")
	}

	gh, err := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL, cfg.GitHubTimeout, log)
	if err != nil {
		return err
	}

	prompt, err := ai.LoadPrompt(cfg.PromptFile)
	if err != nil {
		return err
	}
	model := cfg.Model
	if cfg.AIProvider == ai.ProviderOllama {
		model = cfg.OllamaModel
	}
	completer, err := ai.NewCompleter(ai.ProviderConfig{
		Provider:  cfg.AIProvider,
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     model,
		ServerURL: cfg.OllamaURL,
		Timeout:   cfg.AITimeout,
	})
	if err != nil {
		return err
	}
	analyzer := ai.NewClient(completer, ai.Settings{
		Provider:        cfg.AIProvider,
		Model:           model,
		MaxContentChars: cfg.MaxContentChars,
		Timeout:         cfg.AITimeout,
		RedactSecrets:   cfg.RedactSecrets,
		Prompt:          prompt,
	}, log)
	if !analyzer.Configured() {
		log.Warn("no AI API key configured, reviews will contain placeholder results")
	}

	processor := review.NewProcessor(gh, analyzer, review.Options{
		Files: github.FilePolicy{
			MaxChanges: cfg.MaxFileSize,
			MaxFiles:   cfg.MaxFilesPerPR,
			Extensions: cfg.SupportedExtensions,
		},
		Concurrency:       cfg.ReviewConcurrency,
		Timeout:           cfg.ReviewTimeout,
		ManualReviewLabel: cfg.ManualReviewLabel,
		ReviewedLabel:     cfg.ReviewedLabel,
	}, log)

	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize, log)
	filter := webhook.NewEventFilter(cfg.ReviewActions)

	srv := server.NewServer(server.Options{
		Verifier:         webhook.NewVerifier(cfg.WebhookSecret, log),
		Filter:           filter,
		Queue:            pool,
		Processor:        processor,
		AI:               analyzer,
		GitHubConfigured: cfg.GitHubToken != "",
		AllowedOrigin:    cfg.AllowedOrigin,
		Version:          version,
		Log:              log,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", httpServer.Addr, "environment", cfg.Environment,
			"actions", filter.Actions(), "aiProvider", cfg.AIProvider, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "http shutdown")
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "review jobs still running at shutdown")
	}
	log.Info("stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pr-reviewer:", err)
		os.Exit(1)
	}
}
