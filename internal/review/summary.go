package review

import (
	"math"

	"github.com/dagenius007/pr-reviewer/internal/ai"
	"github.com/dagenius007/pr-reviewer/internal/github"
	"github.com/dagenius007/pr-reviewer/internal/webhook"
)

// Where the reviewed text came from.
const (
	SourceContent = "content"
	SourcePatch   = "patch"
)

// FileReview is the outcome for one reviewable file.
type FileReview struct {
	File     github.ChangedFile
	Source   string
	Result   ai.Result
	Reviewed bool
	// Err is set when the file could not be reviewed at all.
	Err string
}

// Summary is the aggregated, render-ready view of a pull request review.
type Summary struct {
	PR           webhook.PRInfo
	Files        []FileReview
	Rating       int
	Tier         string
	NextStep     string
	ChangedFiles int
	HighIssues   int
	Fallbacks    int
}

// Aggregate folds per-file results into one pull request summary. The
// rating is the rounded mean of reviewed files, or the default when none
// were reviewed.
func Aggregate(pr webhook.PRInfo, reviews []FileReview, changedFiles int) Summary {
	s := Summary{PR: pr, Files: reviews, ChangedFiles: changedFiles}

	total, scored := 0, 0
	for _, r := range reviews {
		if !r.Reviewed {
			continue
		}
		total += r.Result.Rating
		scored++
		if r.Result.Fallback {
			s.Fallbacks++
		}
		for _, is := range r.Result.Issues {
			if is.Severity == ai.SeverityHigh {
				s.HighIssues++
			}
		}
	}

	s.Rating = ai.DefaultRating
	if scored > 0 {
		s.Rating = int(math.Round(float64(total) / float64(scored)))
	}
	s.Tier = tier(s.Rating)
	s.NextStep = nextStep(s)
	return s
}

func tier(rating int) string {
	switch {
	case rating >= 5:
		return "Excellent"
	case rating == 4:
		return "Good"
	case rating == 3:
		return "Needs attention"
	case rating == 2:
		return "Needs work"
	default:
		return "Critical issues"
	}
}

func nextStep(s Summary) string {
	switch {
	case s.HighIssues > 0:
		return "Address the high-severity issues before merging."
	case s.Rating >= 4:
		return "Looks ready for a final human review and merge."
	case s.Rating == 3:
		return "Consider the suggestions below, then request a human review."
	default:
		return "Significant changes are recommended before merging."
	}
}
