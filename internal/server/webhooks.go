package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dagenius007/pr-reviewer/internal/logging"
	"github.com/dagenius007/pr-reviewer/internal/types"
	"github.com/dagenius007/pr-reviewer/internal/webhook"
	"github.com/dagenius007/pr-reviewer/internal/worker"
)

const maxBodyBytes = 25 << 20

const (
	msgInvalidSignature = "Invalid signature"
	msgInvalidPayload   = "Invalid payload"
	msgInternal         = "Internal server error"
	msgQueueFull        = "Processing queue full"
	msgIgnored          = "Event ignored"
	msgAccepted         = "Webhook received and processing started"
)

// handleGitHubWebhook verifies, filters and queues a delivery. The review
// itself runs in the background; its result is only visible on the pull
// request and in the logs.
func (s *Server) handleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, msgInvalidPayload)
			return
		}
		s.writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	ev := webhook.EventFromRequest(r, body)
	log := s.log.WithValues("delivery", ev.DeliveryID, "event", ev.Type, "request_id", middleware.GetReqID(r.Context()))

	if !s.opts.Verifier.Verify(ev.Body, ev.Signature) {
		log.Warn("rejected webhook with invalid signature")
		s.writeError(w, http.StatusUnauthorized, msgInvalidSignature)
		return
	}

	payload, err := webhook.Parse(ev.Body, ev.ContentType)
	if err != nil {
		s.payloadError(w, log.WithValues("stage", "parse"), err)
		return
	}

	if !s.opts.Filter.IsProcessable(ev.Type, payload.Action) {
		log.Debug("ignoring event", "action", payload.Action)
		writeJSON(w, http.StatusOK, types.MessageResponse{Message: msgIgnored})
		return
	}

	pr, err := webhook.ExtractPRInfo(ev.Type, ev.DeliveryID, payload)
	if err != nil {
		s.payloadError(w, log.WithValues("stage", "extract"), err)
		return
	}

	job := worker.Job{
		ID:   ev.DeliveryID,
		Name: fmt.Sprintf("review %s#%d", pr.FullName(), pr.Number),
		Run: func(ctx context.Context) {
			outcome := s.opts.Processor.Process(ctx, pr)
			log.Info("review job finished", "outcome", string(outcome))
		},
	}
	if !s.opts.Queue.Submit(job) {
		log.Warn("review queue full, rejecting delivery", "repo", pr.FullName(), "pr", pr.Number)
		s.writeError(w, http.StatusServiceUnavailable, msgQueueFull)
		return
	}

	log.Info("queued pull request review", "repo", pr.FullName(), "pr", pr.Number, "action", pr.Action)
	writeJSON(w, http.StatusOK, types.WebhookAccepted{
		Message:     msgAccepted,
		PullRequest: pr.Number,
		Repository:  pr.FullName(),
		Action:      pr.Action,
	})
}

func (s *Server) payloadError(w http.ResponseWriter, log logging.Logger, err error) {
	if webhook.IsParseError(err) {
		log.Warn("rejected malformed payload", "error", err.Error())
		s.writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	log.Error(err, "unexpected failure handling webhook")
	s.writeError(w, http.StatusInternalServerError, msgInternal)
}
