// Package review runs the end-to-end AI review of one pull request.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dagenius007/pr-reviewer/internal/ai"
	"github.com/dagenius007/pr-reviewer/internal/github"
	"github.com/dagenius007/pr-reviewer/internal/logging"
	"github.com/dagenius007/pr-reviewer/internal/webhook"
)

// postTimeout bounds the calls that publish results. They run even after the
// job's own deadline has passed.
const postTimeout = 30 * time.Second

// Analyzer reviews one file. Implementations must not fail.
type Analyzer interface {
	Analyze(ctx context.Context, filename, content string) ai.Result
}

// Outcome is the terminal state of one Process call.
type Outcome string

const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeNoFiles  Outcome = "no_files"
	OutcomeReviewed Outcome = "reviewed"
	OutcomeFailed   Outcome = "failed"
)

type Options struct {
	Files github.FilePolicy
	// Concurrency caps simultaneous file reviews; 1 reviews sequentially.
	Concurrency int
	// Timeout is the wall-clock budget for one pull request; zero disables it.
	Timeout           time.Duration
	ManualReviewLabel string
	ReviewedLabel     string
}

type Processor struct {
	gh       github.API
	analyzer Analyzer
	opts     Options
	log      logging.Logger
}

func NewProcessor(gh github.API, analyzer Analyzer, opts Options, log logging.Logger) *Processor {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Processor{gh: gh, analyzer: analyzer, opts: opts, log: log.WithName("review")}
}

// Process reviews pr and posts the result. Failures are reported on the pull
// request and in the log; they are never returned.
func (p *Processor) Process(ctx context.Context, pr webhook.PRInfo) Outcome {
	log := p.log.WithValues("repo", pr.FullName(), "pr", pr.Number, "delivery", pr.DeliveryID)

	if !pr.IsPublic {
		log.Info("skipping non-public repository")
		return OutcomeSkipped
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	files, err := p.gh.ListChangedFiles(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		p.fail(ctx, log, pr, fmt.Errorf("fetching changed files: %w", err))
		return OutcomeFailed
	}

	reviewable := github.FilterReviewableFiles(files, p.opts.Files)
	log.Info("filtered changed files", "total", len(files), "reviewable", len(reviewable))
	if len(reviewable) == 0 {
		if _, err := p.gh.PostComment(ctx, pr.Owner, pr.Repo, pr.Number, RenderNoReviewableFiles(len(files))); err != nil {
			log.Error(err, "failed to post no-reviewable-files comment")
		}
		return OutcomeNoFiles
	}

	reviews := p.reviewFiles(ctx, log, pr, reviewable)
	summary := Aggregate(pr, reviews, len(files))

	// Files the budget cut short are already error entries; what finished is
	// still published.
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postTimeout)
	defer cancel()

	reviewID, err := p.gh.PostReview(postCtx, pr.Owner, pr.Repo, pr.Number, RenderSummary(summary))
	if err != nil {
		p.fail(ctx, log, pr, fmt.Errorf("posting review: %w", err))
		return OutcomeFailed
	}
	log.Info("posted review", "reviewId", reviewID, "rating", summary.Rating,
		"files", len(reviews), "duration", time.Since(start).String())

	if p.opts.ReviewedLabel != "" {
		if err := p.gh.AddLabel(postCtx, pr.Owner, pr.Repo, pr.Number, p.opts.ReviewedLabel); err != nil {
			log.Warn("could not apply reviewed label", "label", p.opts.ReviewedLabel, "error", err.Error())
		}
	}
	return OutcomeReviewed
}

// reviewFiles keeps results in input order whatever the completion order.
func (p *Processor) reviewFiles(ctx context.Context, log logging.Logger, pr webhook.PRInfo, files []github.ChangedFile) []FileReview {
	reviews := make([]FileReview, len(files))
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			reviews[i] = p.reviewFile(ctx, log, pr, f)
			return nil
		})
	}
	_ = g.Wait()
	return reviews
}

func (p *Processor) reviewFile(ctx context.Context, log logging.Logger, pr webhook.PRInfo, f github.ChangedFile) (fr FileReview) {
	fr = FileReview{File: f}
	defer func() {
		if r := recover(); r != nil {
			fr.Err = fmt.Sprintf("review failed: %v", r)
			log.Error(fmt.Errorf("%v", r), "file review panicked", "file", f.Filename)
		}
	}()

	content, source := "", SourcePatch
	if f.HasContentAtHead() {
		body, err := p.gh.GetFileContent(ctx, pr.Owner, pr.Repo, f.Filename, pr.HeadSHA)
		switch {
		case err == nil:
			content, source = body, SourceContent
		case errors.Is(err, github.ErrNotFound):
			log.Debug("file not found at head, using patch", "file", f.Filename)
		default:
			log.Warn("could not fetch file content, using patch", "file", f.Filename, "error", err.Error())
		}
	}
	if content == "" {
		content = f.Patch
	}
	if content == "" {
		fr.Err = "no content or patch available"
		return fr
	}
	if err := ctx.Err(); err != nil {
		fr.Err = fmt.Sprintf("review cancelled: %v", err)
		return fr
	}

	fr.Source = source
	fr.Result = p.analyzer.Analyze(ctx, f.Filename, content)
	fr.Reviewed = true
	return fr
}

// fail is the best-effort path for errors fatal to the whole pull request.
func (p *Processor) fail(ctx context.Context, log logging.Logger, pr webhook.PRInfo, cause error) {
	log.Error(cause, "pull request review failed")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postTimeout)
	defer cancel()

	if _, err := p.gh.PostComment(ctx, pr.Owner, pr.Repo, pr.Number, RenderFailure(cause)); err != nil {
		log.Error(err, "failed to post error comment")
	}
	if p.opts.ManualReviewLabel == "" {
		return
	}
	if err := p.gh.AddLabel(ctx, pr.Owner, pr.Repo, pr.Number, p.opts.ManualReviewLabel); err != nil {
		log.Error(err, "failed to apply manual review label", "label", p.opts.ManualReviewLabel)
	}
}
