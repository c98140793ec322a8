package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dagenius007/pr-reviewer/internal/logging"
	"github.com/dagenius007/pr-reviewer/internal/redact"
)

const (
	truncationMarker = "\n... [content truncated]"
	excerptChars     = 500
	summaryParsed    = "Reviewed, see suggestions"
)

// Settings tunes how files are presented to the model.
type Settings struct {
	Provider        string
	Model           string
	MaxContentChars int
	Timeout         time.Duration
	RedactSecrets   bool
	Prompt          PromptSpec
}

// Status describes the AI backend for health checks.
type Status struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Model    string `json:"model"`
}

// Client reviews single files. It never returns an error: every failure
// becomes a fallback Result.
type Client struct {
	completer Completer
	settings  Settings
	log       logging.Logger
}

// NewClient wraps completer. A nil completer puts the client in
// unconfigured mode, where Analyze answers with a placeholder and performs
// no network I/O.
func NewClient(completer Completer, settings Settings, log logging.Logger) *Client {
	return &Client{completer: completer, settings: settings, log: log.WithName("ai")}
}

func (c *Client) Configured() bool { return c.completer != nil }

func (c *Client) Status() Status {
	st := Status{Provider: c.settings.Provider, Status: "configured", Model: c.settings.Model}
	if !c.Configured() {
		st.Status = "unconfigured"
	}
	return st
}

// Analyze reviews one file's content or patch.
func (c *Client) Analyze(ctx context.Context, filename, content string) (res Result) {
	if !c.Configured() {
		return placeholderResult()
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(fmt.Errorf("panic: %v", r), "ai analysis panicked", "file", filename)
			res = unavailableResult()
		}
	}()

	if c.settings.RedactSecrets {
		var n int
		if content, n = redact.Content(filename, content); n > 0 {
			c.log.Info("redacted secrets before analysis", "file", filename, "count", n)
		}
	}
	content = truncate(content, c.settings.MaxContentChars)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	raw, err := c.completer.Complete(ctx, Request{
		System:      c.settings.Prompt.System,
		Prompt:      c.settings.Prompt.Render(filename, content),
		Temperature: c.settings.Prompt.Style.Temperature,
		MaxTokens:   c.settings.Prompt.Style.MaxTokens,
	})
	if err != nil {
		c.log.Error(c.annotateError(err), "ai analysis failed, using fallback", "file", filename)
		return unavailableResult()
	}

	parsed, err := ParseResult(raw)
	if err != nil {
		c.log.Warn("could not parse ai response", "file", filename, "error", err.Error())
		return unparsedResult(raw)
	}
	c.log.Debug("ai analysis done", "file", filename, "rating", parsed.Rating,
		"issues", len(parsed.Issues), "duration", time.Since(start).String())
	return parsed
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.settings.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.settings.Timeout)
}

func (c *Client) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("ai call timed out after %s: %w", c.settings.Timeout, err)
	}
	return err
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	// keep the cut on a rune boundary
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func placeholderResult() Result {
	return Result{
		Rating:      DefaultRating,
		Issues:      []Issue{},
		Suggestions: []string{"AI review is not configured. Set OPENAI_API_KEY or AI_PROVIDER=ollama to enable automated analysis."},
		Summary:     "AI review not configured",
		Fallback:    true,
	}
}

func unavailableResult() Result {
	return Result{
		Rating:      DefaultRating,
		Issues:      []Issue{},
		Suggestions: []string{"The AI service was unavailable for this file. Please review it manually."},
		Summary:     "AI review unavailable",
		Fallback:    true,
	}
}

func unparsedResult(raw string) Result {
	excerpt := strings.TrimSpace(raw)
	if len(excerpt) > excerptChars {
		excerpt = truncate(excerpt, excerptChars)
	}
	suggestions := []string{}
	if excerpt != "" {
		suggestions = append(suggestions, excerpt)
	}
	return Result{
		Rating:      DefaultRating,
		Issues:      []Issue{},
		Suggestions: suggestions,
		Summary:     summaryParsed,
		Fallback:    true,
	}
}
