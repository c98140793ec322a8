// Package redact masks credentials in source text before it leaves the
// process for an AI provider.
package redact

import (
	"path"
	"regexp"
	"strings"
)

// Mask replaces every detected secret.
const Mask = "[REDACTED]"

type rule struct {
	name string
	rx   *regexp.Regexp
	// keep is the number of leading submatches preserved, so that
	// `api_key = "..."` keeps its key name and only loses the value.
	keep int
}

var rules = []rule{
	{name: "private-key", rx: regexp.MustCompile(`-----BEGIN (?:[A-Z]+ )?PRIVATE KEY-----[\s\S]*?(?:-----END (?:[A-Z]+ )?PRIVATE KEY-----|$)`)},
	{name: "aws-access-key", rx: regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)},
	{name: "github-token", rx: regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`)},
	{name: "github-pat", rx: regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{40,}\b`)},
	{name: "slack-token", rx: regexp.MustCompile(`\bxox[abporsd]-[A-Za-z0-9-]{10,}`)},
	{name: "openai-key", rx: regexp.MustCompile(`\bsk-(?:proj-|ant-)?[A-Za-z0-9_-]{20,}`)},
	{name: "jwt", rx: regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{8,}\.eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}`)},
	{name: "bearer", rx: regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/-]{20,}=*`), keep: 1},
	{name: "assignment", rx: regexp.MustCompile(`(?i)((?:api[_-]?key|api[_-]?secret|secret|token|password|passwd|credential)s?["']?\s*[:=]\s*["'])([^"'\s]{8,})(["'])`), keep: 1},
}

// sensitive files are masked wholesale
var sensitiveFiles = []string{".env", ".env.*", "*.pem", "*.key", "id_rsa", "id_ed25519", "*.p12", "*.pfx"}

// Secrets returns text with credentials masked and the number of matches.
func Secrets(text string) (string, int) {
	total := 0
	for _, r := range rules {
		text = r.rx.ReplaceAllStringFunc(text, func(match string) string {
			total++
			if r.keep == 0 {
				return Mask
			}
			sub := r.rx.FindStringSubmatch(match)
			var b strings.Builder
			for i := 1; i <= r.keep && i < len(sub); i++ {
				b.WriteString(sub[i])
			}
			b.WriteString(Mask)
			// close a quoted value again
			if len(sub) > r.keep+2 {
				b.WriteString(sub[len(sub)-1])
			}
			return b.String()
		})
	}
	return text, total
}

// IsSensitivePath reports whether the whole file should be withheld.
func IsSensitivePath(filename string) bool {
	base := path.Base(filename)
	for _, pattern := range sensitiveFiles {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Content masks secrets in content, or withholds the body entirely when the
// filename itself is sensitive.
func Content(filename, content string) (string, int) {
	if IsSensitivePath(filename) {
		return Mask + " (file withheld)\n", 1
	}
	return Secrets(content)
}
