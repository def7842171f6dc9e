package models

import "time"

// FeedbackContext ties a feedback entry to the request that produced it.
type FeedbackContext struct {
	Query      string    `json:"query"`
	LayerCount int       `json:"layer_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// FeedbackEntry is one observation of user satisfaction with a chosen
// visualization. Score is on a 0-5 scale. Entries are appended and never
// mutated.
type FeedbackEntry struct {
	VisualizationType VisualizationType `json:"visualization_type"`
	Score             float64           `json:"score"`
	Comments          string            `json:"comments,omitempty"`
	Context           FeedbackContext   `json:"context"`
}
