package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/go-playground/validator/v10"
	"github.com/google/go-github/v66/github"
)

// ParseError tags every failure to turn a delivery into a usable event.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse webhook: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse webhook: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err carries a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Payload is the decoded JSON document of a delivery.
type Payload struct {
	Action string
	// Raw is the JSON document exactly as delivered.
	Raw json.RawMessage
}

const formContentType = "application/x-www-form-urlencoded"

// Parse normalizes a delivery body. Form encoded bodies carry the JSON
// document in the "payload" field; anything else is treated as JSON.
func Parse(body []byte, contentType string) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Payload{}, &ParseError{Reason: "empty body"}
	}

	doc := body
	if isForm(contentType) {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return Payload{}, &ParseError{Reason: "invalid form body", Err: err}
		}
		field := values.Get("payload")
		if field == "" {
			return Payload{}, &ParseError{Reason: "missing payload field"}
		}
		doc = []byte(field)
	}

	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return Payload{}, &ParseError{Reason: "invalid JSON", Err: err}
	}
	raw := make(json.RawMessage, len(doc))
	copy(raw, doc)
	return Payload{Action: head.Action, Raw: raw}, nil
}

func isForm(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(contentType), formContentType)
	}
	return mt == formContentType
}

var validate = validator.New()

// ExtractPRInfo decodes a pull_request payload into a validated PRInfo.
func ExtractPRInfo(eventType, deliveryID string, p Payload) (PRInfo, error) {
	ev, err := github.ParseWebHook(eventType, p.Raw)
	if err != nil {
		return PRInfo{}, &ParseError{Reason: "decode " + eventType + " event", Err: err}
	}
	prEvent, ok := ev.(*github.PullRequestEvent)
	if !ok {
		return PRInfo{}, &ParseError{Reason: fmt.Sprintf("unexpected event type %q", eventType)}
	}
	pr := prEvent.GetPullRequest()
	if pr == nil {
		return PRInfo{}, &ParseError{Reason: "missing pull_request object"}
	}
	repo := prEvent.GetRepo()
	if repo == nil {
		return PRInfo{}, &ParseError{Reason: "missing repository object"}
	}

	owner, name := repoOwnerAndName(repo)
	number := pr.GetNumber()
	if number == 0 {
		number = prEvent.GetNumber()
	}
	info := PRInfo{
		DeliveryID: deliveryID,
		Owner:      owner,
		Repo:       name,
		Number:     number,
		Action:     prEvent.GetAction(),
		Title:      pr.GetTitle(),
		Author:     pr.GetUser().GetLogin(),
		HeadSHA:    pr.GetHead().GetSHA(),
		BaseSHA:    pr.GetBase().GetSHA(),
		HTMLURL:    pr.GetHTMLURL(),
		IsPublic:   isPublic(repo),
	}
	if err := validate.Struct(info); err != nil {
		return PRInfo{}, &ParseError{Reason: "incomplete pull request payload", Err: err}
	}
	return info, nil
}

// repoOwnerAndName prefers the structured owner, then full_name, then the
// repository URL.
func repoOwnerAndName(repo *github.Repository) (string, string) {
	owner, name := repo.GetOwner().GetLogin(), repo.GetName()
	if owner != "" && name != "" {
		return owner, name
	}
	if parts := strings.SplitN(repo.GetFullName(), "/", 2); len(parts) == 2 && parts[0] != "" && parts[1] != "" {
		return parts[0], parts[1]
	}
	if u := repo.GetHTMLURL(); u != "" {
		if info, err := vcsurl.Parse(u); err == nil {
			return info.Username, info.Name
		}
	}
	return owner, name
}

// isPublic needs positive evidence: a repository object that states neither
// private nor visibility is not treated as public.
func isPublic(repo *github.Repository) bool {
	if repo.GetPrivate() {
		return false
	}
	switch strings.ToLower(repo.GetVisibility()) {
	case "private", "internal":
		return false
	case "public":
		return true
	}
	return repo.Private != nil
}
