package http

import (
	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/telemetry"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version,omitempty"`
	Vocabulary []VocabularyStatus      `json:"vocabulary"`
	Telemetry  *telemetry.HealthStatus `json:"telemetry,omitempty"`
}

// BatchResponse is the response body for POST /api/v1/analyze/batch.
// Results are in request order.
type BatchResponse struct {
	Results []*analysis.Result `json:"results"`
}

// PromptsResponse is the response body for POST /api/v1/prompts.
type PromptsResponse struct {
	ID      string   `json:"id"`
	UserID  string   `json:"user_id,omitempty"`
	Prompts []string `json:"prompts"`
}

// VocabularyStatus describes one keyword vocabulary the engine is using.
type VocabularyStatus struct {
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Keywords int    `json:"keywords"`
}
