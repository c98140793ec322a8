package github

import (
	"path"
	"regexp"
	"strings"
)

// FilePolicy bounds which changed files are sent for review.
type FilePolicy struct {
	// MaxChanges skips files whose changes count exceeds it.
	MaxChanges int
	// MaxFiles truncates the reviewable list.
	MaxFiles int
	// Extensions is the allow-list of lower-case extensions with leading dot.
	Extensions []string
}

// generated and vendored content that is never worth a review
var ignorePatternMap = map[string]string{
	"package-lock":   `(^|/)package-lock\.json$`,
	"yarn-lock":      `(^|/)yarn\.lock$`,
	"pnpm-lock":      `(^|/)pnpm-lock\.yaml$`,
	"npm-shrinkwrap": `(^|/)npm-shrinkwrap\.json$`,
	"composer-lock":  `(^|/)composer\.lock$`,
	"vendor":         `(^|/)vendor/`,
	"node_modules":   `(^|/)node_modules/`,
	"dist":           `(^|/)dist/`,
	"generated-go":   `\.(?:pb|pb\.gw)\.go$`,
	"generated":      `\.generated\.[a-z]+$`,
	"minified":       `\.min\.(?:js|css)$`,
	"snapshots":      `\.snap$`,
}

var ignorePatterns = buildIgnorePatterns()

func buildIgnorePatterns() map[string]*regexp.Regexp {
	compiled := make(map[string]*regexp.Regexp, len(ignorePatternMap))
	for reason, pattern := range ignorePatternMap {
		compiled[reason] = regexp.MustCompile(pattern)
	}
	return compiled
}

// ShouldIgnoreFile reports whether filename is generated or vendored content,
// along with the matching rule.
func ShouldIgnoreFile(filename string) (bool, string) {
	for reason, rx := range ignorePatterns {
		if rx.MatchString(filename) {
			return true, reason
		}
	}
	return false, ""
}

// FilterReviewableFiles drops removed, binary, oversized, generated and
// unsupported files, then truncates to MaxFiles. Input order is preserved.
func FilterReviewableFiles(files []ChangedFile, policy FilePolicy) []ChangedFile {
	allowed := make(map[string]struct{}, len(policy.Extensions))
	for _, ext := range policy.Extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	out := make([]ChangedFile, 0, len(files))
	for _, f := range files {
		if policy.MaxFiles > 0 && len(out) >= policy.MaxFiles {
			break
		}
		if f.Status == StatusRemoved || f.Binary {
			continue
		}
		if policy.MaxChanges > 0 && f.Changes > policy.MaxChanges {
			continue
		}
		if _, ok := allowed[strings.ToLower(path.Ext(f.Filename))]; !ok {
			continue
		}
		if ignored, _ := ShouldIgnoreFile(f.Filename); ignored {
			continue
		}
		out = append(out, f)
	}
	return out
}
