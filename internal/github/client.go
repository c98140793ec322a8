package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/dagenius007/pr-reviewer/internal/logging"
)

// ErrNotFound is returned when a path does not exist at the requested ref.
var ErrNotFound = errors.New("not found")

// API is the slice of the GitHub REST API the reviewer depends on.
type API interface {
	ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error)
	PostReview(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	PostComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	AddLabel(ctx context.Context, owner, repo string, number int, label string) error
}

// Client implements API on top of go-github.
type Client struct {
	gh  *github.Client
	log logging.Logger
}

// NewClient builds an authenticated client. apiURL may point at a GitHub
// Enterprise API root such as https://ghe.example.com/api/v3; empty means
// api.github.com. Every request is bounded by timeout.
func NewClient(token, apiURL string, timeout time.Duration, log logging.Logger) (*Client, error) {
	var hc *http.Client
	if token == "" {
		hc = &http.Client{}
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	hc.Timeout = timeout

	gh := github.NewClient(hc)
	if apiURL != "" {
		base, err := url.Parse(strings.TrimRight(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", apiURL, err)
		}
		gh.BaseURL = base
	}
	return &Client{gh: gh, log: log.WithName("github")}, nil
}

// ListChangedFiles returns every file touched by the pull request, following
// pagination.
func (c *Client) ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	opts := &github.ListOptions{PerPage: 100}
	var out []ChangedFile
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list files for %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, f := range files {
			out = append(out, toChangedFile(f))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	c.log.Debug("listed pull request files", "repo", owner+"/"+repo, "pr", number, "count", len(out))
	return out, nil
}

func toChangedFile(f *github.CommitFile) ChangedFile {
	cf := ChangedFile{
		Filename:         f.GetFilename(),
		PreviousFilename: f.GetPreviousFilename(),
		Status:           f.GetStatus(),
		Additions:        f.GetAdditions(),
		Deletions:        f.GetDeletions(),
		Changes:          f.GetChanges(),
		Patch:            f.GetPatch(),
	}
	cf.Binary = cf.Patch == "" && cf.Changes == 0 && cf.Status != StatusRemoved
	return cf
}

// GetFileContent fetches the decoded blob at path for ref. A missing path
// (or a directory) yields an error wrapping ErrNotFound.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return "", fmt.Errorf("%s@%s: %w", path, ref, ErrNotFound)
		}
		return "", fmt.Errorf("get content %s@%s: %w", path, ref, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s@%s is not a file: %w", path, ref, ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode content %s@%s: %w", path, ref, err)
	}
	return content, nil
}

// PostReview posts body as a COMMENT review. It never approves or requests
// changes.
func (c *Client) PostReview(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	review, _, err := c.gh.PullRequests.CreateReview(ctx, owner, repo, number, &github.PullRequestReviewRequest{
		Body:  github.String(body),
		Event: github.String("COMMENT"),
	})
	if err != nil {
		return 0, fmt.Errorf("create review on %s/%s#%d: %w", owner, repo, number, err)
	}
	return review.GetID(), nil
}

// PostComment adds a plain conversation comment to the pull request.
func (c *Client) PostComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	comment, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return 0, fmt.Errorf("add comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return comment.GetID(), nil
}

// AddLabel applies label to the pull request.
func (c *Client) AddLabel(ctx context.Context, owner, repo string, number int, label string) error {
	if _, _, err := c.gh.Issues.AddLabelsToIssue(ctx, owner, repo, number, []string{label}); err != nil {
		return fmt.Errorf("add label %q on %s/%s#%d: %w", label, owner, repo, number, err)
	}
	return nil
}

func isStatus(err error, code int) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == code
	}
	return false
}
