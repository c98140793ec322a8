package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Result
	}{
		{
			name: "strict json",
			raw:  `{"rating":4,"issues":[{"type":"Bug","description":"nil map write","severity":"HIGH"}],"suggestions":["add a guard"],"summary":"Mostly fine"}`,
			want: Result{
				Rating:      4,
				Issues:      []Issue{{Type: "bug", Description: "nil map write", Severity: SeverityHigh}},
				Suggestions: []string{"add a guard"},
				Summary:     "Mostly fine",
			},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"rating\":5,\"summary\":\"Clean\"}\n```",
			want: Result{Rating: 5, Issues: []Issue{}, Suggestions: []string{}, Summary: "Clean"},
		},
		{
			name: "surrounded by prose",
			raw:  "Here is my review:\n{\"rating\": 2, \"suggestions\": [\"split the function\"]}\nHope it helps!",
			want: Result{Rating: 2, Issues: []Issue{}, Suggestions: []string{"split the function"}},
		},
		{
			name: "loosely typed values",
			raw:  `{"rating":"4","issues":["missing error check"],"suggestions":[{"description":"wrap errors"}],"summary":"ok"}`,
			want: Result{
				Rating:      4,
				Issues:      []Issue{{Type: "general", Description: "missing error check", Severity: SeverityMedium}},
				Suggestions: []string{"wrap errors"},
				Summary:     "ok",
			},
		},
		{
			name: "out of range rating and unknown severity",
			raw:  `{"rating":9,"issues":[{"type":"style","description":"long line","severity":"whatever"},{"type":"x","description":" "}]}`,
			want: Result{
				Rating:      5,
				Issues:      []Issue{{Type: "style", Description: "long line", Severity: SeverityMedium}},
				Suggestions: []string{},
			},
		},
		{
			name: "missing rating",
			raw:  `{"summary":"no score"}`,
			want: Result{Rating: DefaultRating, Issues: []Issue{}, Suggestions: []string{}, Summary: "no score"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResultRejectsProse(t *testing.T) {
	_, err := ParseResult("The code looks good to me.")
	assert.Error(t, err)

	_, err = ParseResult("{not json at all}")
	assert.Error(t, err)

	for _, raw := range []string{
		"null",
		"{}",
		"[1, 2]",
		`{"error":{"message":"model overloaded"}}`,
		"Sorry: {\"detail\": \"quota exceeded\"}",
	} {
		_, err := ParseResult(raw)
		assert.Error(t, err, raw)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, NormalizeSeverity("Critical"))
	assert.Equal(t, SeverityLow, NormalizeSeverity(" nit "))
	assert.Equal(t, SeverityMedium, NormalizeSeverity(""))
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, 1, clampRating(-3))
	assert.Equal(t, 1, clampRating(0))
	assert.Equal(t, 3, clampRating(3))
	assert.Equal(t, 5, clampRating(6))
}
