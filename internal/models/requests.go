package models

// RecommendationRequest is the engine's public entry point payload.
// UserID is optional; when present, learned preferences that pass the
// confidence gate are blended into the ranking.
type RecommendationRequest struct {
	UserID string        `json:"user_id,omitempty"`
	Query  string        `json:"query"`
	Layers []LayerResult `json:"layers"`
}

// RecommendationResponse carries the ranked strategies. NumericField is set
// when the winning strategy renders a specific numeric attribute (ranking
// and proportional-symbol visualizations).
type RecommendationResponse struct {
	RecommendationID string               `json:"recommendation_id"`
	Rankings         []VisualizationScore `json:"rankings"`
	NumericField     string               `json:"numeric_field,omitempty"`
}

// InteractionRequest reports one tracked action or a dwell-time increment.
type InteractionRequest struct {
	Kind    InteractionKind `json:"kind,omitempty"`
	Seconds float64         `json:"seconds,omitempty"`
}

// UserFeedbackRequest submits learner feedback for a user. Rating, when
// present, is an explicit satisfaction value in [0,1].
type UserFeedbackRequest struct {
	VisualizationType VisualizationType `json:"visualization_type"`
	Context           string            `json:"context,omitempty"`
	Rating            *float64          `json:"rating,omitempty"`
}
