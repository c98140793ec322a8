package webhook

import (
	"net/http"
)

// Header names set by GitHub on every delivery.
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature-256"
)

const EventPullRequest = "pull_request"

// Event is one raw delivery as received on the wire.
type Event struct {
	Type        string
	DeliveryID  string
	Signature   string
	ContentType string
	Body        []byte
}

// EventFromRequest captures the delivery headers alongside the raw body.
// The body must be the exact bytes read from the request.
func EventFromRequest(r *http.Request, body []byte) Event {
	return Event{
		Type:        r.Header.Get(HeaderEvent),
		DeliveryID:  r.Header.Get(HeaderDelivery),
		Signature:   r.Header.Get(HeaderSignature),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	}
}

// PRInfo is the normalized pull request descriptor handed to the reviewer.
type PRInfo struct {
	DeliveryID string
	Owner      string `validate:"required"`
	Repo       string `validate:"required"`
	Number     int    `validate:"gt=0"`
	Action     string `validate:"required"`
	Title      string
	Author     string
	HeadSHA    string
	BaseSHA    string
	HTMLURL    string `validate:"omitempty,url"`
	IsPublic   bool
}

// FullName returns "owner/repo".
func (p PRInfo) FullName() string {
	return p.Owner + "/" + p.Repo
}
