package webhook

import "strings"

// EventFilter decides which deliveries are worth a review.
type EventFilter struct {
	actions map[string]struct{}
	ordered []string
}

// NewEventFilter accepts pull_request events whose action is in actions.
func NewEventFilter(actions []string) *EventFilter {
	f := &EventFilter{actions: make(map[string]struct{}, len(actions))}
	for _, a := range actions {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, dup := f.actions[a]; dup {
			continue
		}
		f.actions[a] = struct{}{}
		f.ordered = append(f.ordered, a)
	}
	return f
}

// IsProcessable reports whether the event/action pair triggers a review.
// Everything else is silently ignored by the caller.
func (f *EventFilter) IsProcessable(eventType, action string) bool {
	if eventType != EventPullRequest {
		return false
	}
	_, ok := f.actions[action]
	return ok
}

// Actions returns the configured allow-list.
func (f *EventFilter) Actions() []string {
	return append([]string(nil), f.ordered...)
}
