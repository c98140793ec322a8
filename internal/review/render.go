package review

import (
	"fmt"
	"strings"

	"github.com/dagenius007/pr-reviewer/internal/ai"
)

var severityOrder = []string{ai.SeverityHigh, ai.SeverityMedium, ai.SeverityLow}

var severityIcon = map[string]string{
	ai.SeverityHigh:   "🔴",
	ai.SeverityMedium: "🟡",
	ai.SeverityLow:    "🟢",
}

// RenderSummary formats s as the Markdown body of the review.
func RenderSummary(s Summary) string {
	var b strings.Builder

	b.WriteString("## 🤖 AI Code Review\n\n")
	fmt.Fprintf(&b, "**Overall rating:** %s %d/5 (%s)\n\n", stars(s.Rating), s.Rating, s.Tier)
	fmt.Fprintf(&b, "Reviewed %d of %d changed file(s)", reviewedCount(s.Files), s.ChangedFiles)
	if s.HighIssues > 0 {
		fmt.Fprintf(&b, ", found %d high-severity issue(s)", s.HighIssues)
	}
	b.WriteString(".\n")

	var failed []FileReview
	for _, fr := range s.Files {
		if !fr.Reviewed {
			failed = append(failed, fr)
			continue
		}
		renderFile(&b, fr)
	}

	if len(failed) > 0 {
		b.WriteString("\n### ⚠️ Files that could not be reviewed\n\n")
		for _, fr := range failed {
			fmt.Fprintf(&b, "- `%s`: %s\n", fr.File.Filename, fr.Err)
		}
	}

	fmt.Fprintf(&b, "\n### Next step\n\n%s\n", s.NextStep)
	if s.Fallbacks > 0 {
		fmt.Fprintf(&b, "\n_%d file(s) received a default assessment because the AI service was unavailable or unconfigured._\n", s.Fallbacks)
	}
	b.WriteString("\n---\n_This review was generated automatically and does not approve or block the pull request._\n")
	return b.String()
}

func renderFile(b *strings.Builder, fr FileReview) {
	r := fr.Result
	fmt.Fprintf(b, "\n### `%s` (%d/5)\n\n", fr.File.Filename, r.Rating)
	if r.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", r.Summary)
	}
	if fr.Source == SourcePatch {
		b.WriteString("_Reviewed from the diff only._\n\n")
	}

	for _, sev := range severityOrder {
		for _, is := range r.Issues {
			if is.Severity != sev {
				continue
			}
			fmt.Fprintf(b, "- %s **%s** (%s): %s\n", severityIcon[sev], is.Type, sev, is.Description)
		}
	}
	if len(r.Suggestions) > 0 {
		b.WriteString("\n<details><summary>Suggestions</summary>\n\n")
		for _, sug := range r.Suggestions {
			fmt.Fprintf(b, "- %s\n", sug)
		}
		b.WriteString("\n</details>\n")
	}
}

// RenderNoReviewableFiles is posted when filtering leaves nothing to review.
func RenderNoReviewableFiles(changed int) string {
	return fmt.Sprintf("## 🤖 AI Code Review\n\nNo reviewable files were found in this pull request "+
		"(%d changed file(s)). Files are skipped when they are removed, binary, generated, "+
		"too large or use an unsupported extension.\n", changed)
}

// RenderFailure is posted when the review could not be completed.
func RenderFailure(cause error) string {
	return fmt.Sprintf("## 🤖 AI Code Review\n\nSorry, the automated review could not be completed.\n\n"+
		"**Error:** %s\n\nPlease review this pull request manually.\n", cause)
}

func stars(rating int) string {
	return strings.Repeat("⭐", max(0, min(5, rating)))
}

func reviewedCount(files []FileReview) int {
	n := 0
	for _, f := range files {
		if f.Reviewed {
			n++
		}
	}
	return n
}
