package types

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WebhookAccepted echoes the pull request that was queued for review.
type WebhookAccepted struct {
	Message     string `json:"message"`
	PullRequest int    `json:"pullRequest"`
	Repository  string `json:"repository"`
	Action      string `json:"action"`
}

type AIServiceStatus struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Model    string `json:"model"`
}

type Services struct {
	GitHub string          `json:"github"`
	AI     AIServiceStatus `json:"ai"`
}

type QueueStatus struct {
	Workers  int   `json:"workers"`
	Queued   int   `json:"queued"`
	Capacity int   `json:"capacity"`
	Running  int64 `json:"running"`
}

type HealthResponse struct {
	Status    string       `json:"status"`
	Services  Services     `json:"services"`
	Queue     *QueueStatus `json:"queue,omitempty"`
	Uptime    float64      `json:"uptime"`
	Timestamp string       `json:"timestamp"`
}

type UnhealthyResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// ServiceInfo is served at the root path.
type ServiceInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}
