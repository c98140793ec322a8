package ai

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// Severity levels, highest first.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// DefaultRating is used whenever the model gives no usable score.
const DefaultRating = 3

// Issue is one problem the model found in a file.
type Issue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Result is the structured review of one file. Issues and Suggestions are
// never nil and Rating is always within 1..5.
type Result struct {
	Rating      int      `json:"rating"`
	Issues      []Issue  `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary"`
	// Fallback marks results substituted for a failed or skipped model call.
	Fallback bool `json:"fallback,omitempty"`
}

var errUnparseable = errors.New("model output is not a review object")

type wireResult struct {
	Rating      *float64 `json:"rating"`
	Issues      []Issue  `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary"`
}

// ParseResult turns raw model text into a normalized Result.
func ParseResult(raw string) (Result, error) {
	text := stripFences(raw)

	var w wireResult
	if hasReviewFields(text) {
		if err := json.Unmarshal([]byte(text), &w); err == nil {
			return w.normalize(), nil
		}
	}
	obj, ok := extractObject(text)
	if !ok || !hasReviewFields(obj) {
		return Result{}, errUnparseable
	}
	if err := json.Unmarshal([]byte(obj), &w); err == nil {
		return w.normalize(), nil
	}
	return salvage(gjson.Parse(obj)), nil
}

var reviewFields = []string{"rating", "issues", "suggestions", "summary"}

// hasReviewFields reports whether s is a JSON object carrying at least one
// review field.
func hasReviewFields(s string) bool {
	if !gjson.Valid(s) {
		return false
	}
	doc := gjson.Parse(s)
	if !doc.IsObject() {
		return false
	}
	for _, f := range reviewFields {
		if doc.Get(f).Exists() {
			return true
		}
	}
	return false
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func extractObject(s string) (string, bool) {
	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return s[first : last+1], true
}

// salvage reads a syntactically valid object whose fields have the wrong
// types, e.g. a quoted rating or suggestions given as objects.
func salvage(doc gjson.Result) Result {
	var w wireResult
	if r := doc.Get("rating"); r.Exists() {
		if f := r.Float(); f != 0 {
			w.Rating = &f
		}
	}
	doc.Get("issues").ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			w.Issues = append(w.Issues, Issue{
				Type:        v.Get("type").String(),
				Description: v.Get("description").String(),
				Severity:    v.Get("severity").String(),
			})
		} else if s := v.String(); s != "" {
			w.Issues = append(w.Issues, Issue{Description: s})
		}
		return true
	})
	doc.Get("suggestions").ForEach(func(_, v gjson.Result) bool {
		s := v.String()
		if v.IsObject() {
			s = v.Get("description").String()
		}
		if s != "" {
			w.Suggestions = append(w.Suggestions, s)
		}
		return true
	})
	w.Summary = doc.Get("summary").String()
	return w.normalize()
}

func (w wireResult) normalize() Result {
	out := Result{
		Rating:      DefaultRating,
		Issues:      make([]Issue, 0, len(w.Issues)),
		Suggestions: make([]string, 0, len(w.Suggestions)),
		Summary:     strings.TrimSpace(w.Summary),
	}
	if w.Rating != nil {
		out.Rating = clampRating(int(math.Round(*w.Rating)))
	}
	for _, is := range w.Issues {
		desc := strings.TrimSpace(is.Description)
		if desc == "" {
			continue
		}
		typ := strings.ToLower(strings.TrimSpace(is.Type))
		if typ == "" {
			typ = "general"
		}
		out.Issues = append(out.Issues, Issue{Type: typ, Description: desc, Severity: NormalizeSeverity(is.Severity)})
	}
	for _, s := range w.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			out.Suggestions = append(out.Suggestions, s)
		}
	}
	return out
}

func clampRating(r int) int {
	return max(1, min(5, r))
}

// NormalizeSeverity maps free-form severities onto low, medium and high.
func NormalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical", "blocker", "major", "error":
		return SeverityHigh
	case "low", "minor", "info", "trivial", "nit":
		return SeverityLow
	default:
		return SeverityMedium
	}
}
