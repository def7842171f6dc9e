package models

import "time"

// InteractionKind labels a tracked user action.
type InteractionKind string

const (
	InteractionGeneric      InteractionKind = "interaction"
	InteractionExport       InteractionKind = "export"
	InteractionModification InteractionKind = "modification"
)

// InteractionMetrics accumulates implicit engagement signals for one user
// between recommendation and feedback. TimeSpent is in seconds.
type InteractionMetrics struct {
	TimeSpent     float64 `json:"time_spent"`
	Interactions  int     `json:"interactions"`
	Exports       int     `json:"exports"`
	Modifications int     `json:"modifications"`
}

// LearningSignal is one update impulse derived from a feedback event.
// It is computed transiently; only its trace survives in the evidence list.
type LearningSignal struct {
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// EvidenceRecord is the retained trace of one applied learning signal.
type EvidenceRecord struct {
	Context   string    `json:"context"`
	Signal    float64   `json:"signal"`
	Timestamp time.Time `json:"timestamp"`
}

// VisualizationPreference is the learned fitness of one visualization type
// for one user. Score is a time-decayed exponential moving average starting
// at 0.5; Confidence accumulates monotonically toward 1 from 0.
type VisualizationPreference struct {
	Score              float64          `json:"score"`
	Confidence         float64          `json:"confidence"`
	LastUsed           time.Time        `json:"last_used"`
	SuccessRate        float64          `json:"success_rate"`
	FeedbackCount      int              `json:"feedback_count"`
	SuccessCount       int              `json:"success_count"`
	SupportingEvidence []EvidenceRecord `json:"supporting_evidence"`
}

// UserProfile is the per-user learned state, created lazily on first
// feedback and kept for the process lifetime.
type UserProfile struct {
	UserID      string                                         `json:"user_id"`
	Preferences map[VisualizationType]*VisualizationPreference `json:"preferences"`
}
