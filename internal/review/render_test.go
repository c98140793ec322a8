package review

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagenius007/pr-reviewer/internal/ai"
	"github.com/dagenius007/pr-reviewer/internal/github"
)

func TestAggregate(t *testing.T) {
	reviews := []FileReview{
		{File: github.ChangedFile{Filename: "a.go"}, Reviewed: true, Result: ai.Result{Rating: 4}},
		{File: github.ChangedFile{Filename: "b.go"}, Reviewed: true, Result: ai.Result{Rating: 5, Fallback: true}},
		{File: github.ChangedFile{Filename: "c.go"}, Err: "no content or patch available"},
	}
	s := Aggregate(testPR(), reviews, 5)

	assert.Equal(t, 5, s.Rating, "mean 4.5 rounds half away from zero")
	assert.Equal(t, "Excellent", s.Tier)
	assert.Equal(t, 1, s.Fallbacks)
	assert.Equal(t, 5, s.ChangedFiles)
}

func TestAggregateDefaultsWithoutScores(t *testing.T) {
	s := Aggregate(testPR(), []FileReview{{Err: "boom"}}, 1)
	assert.Equal(t, ai.DefaultRating, s.Rating)
	assert.Equal(t, "Needs attention", s.Tier)
}

func TestAggregateHighIssuesDriveNextStep(t *testing.T) {
	s := Aggregate(testPR(), []FileReview{{Reviewed: true, Result: goodResult(5)}}, 1)
	assert.Equal(t, 1, s.HighIssues)
	assert.Equal(t, "Address the high-severity issues before merging.", s.NextStep)
}

func TestRenderSummaryGroupsIssuesBySeverity(t *testing.T) {
	s := Aggregate(testPR(), []FileReview{{
		File:     github.ChangedFile{Filename: "svc.go"},
		Source:   SourceContent,
		Reviewed: true,
		Result: ai.Result{
			Rating: 2,
			Issues: []ai.Issue{
				{Type: "style", Description: "long line", Severity: ai.SeverityLow},
				{Type: "bug", Description: "nil deref", Severity: ai.SeverityHigh},
				{Type: "performance", Description: "n+1 query", Severity: ai.SeverityMedium},
			},
			Suggestions: []string{"cache the lookup"},
			Summary:     "Risky",
		},
	}}, 1)

	out := RenderSummary(s)

	high := strings.Index(out, "nil deref")
	medium := strings.Index(out, "n+1 query")
	low := strings.Index(out, "long line")
	assert.True(t, high < medium && medium < low, "issues ordered high, medium, low:\n%s", out)
	assert.Contains(t, out, "**Overall rating:** ⭐⭐ 2/5 (Needs work)")
	assert.Contains(t, out, "cache the lookup")
	assert.Contains(t, out, "### Next step")
	assert.NotContains(t, out, "diff only")
}

func TestRenderFailure(t *testing.T) {
	out := RenderFailure(errors.New("fetching changed files: 401 bad credentials"))
	assert.Contains(t, out, "401 bad credentials")
	assert.Contains(t, out, "manually")
}
