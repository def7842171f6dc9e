package learning

import (
	"math"
	"time"

	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

// Implicit-score normalization caps: engagement beyond these levels adds
// nothing further.
const (
	timeSpentCap     = 300.0
	interactionsCap  = 10.0
	exportsCap       = 5.0
	modificationsCap = 10.0
)

// Implicit-score weights. Dwell time is the strongest engagement signal and
// carries the largest share.
const (
	timeSpentWeight     = 0.4
	interactionsWeight  = 0.3
	exportsWeight       = 0.2
	modificationsWeight = 0.1
)

// Signal-confidence parameters: explicit ratings are trusted more than
// inferred engagement, and either is discounted when interaction was thin.
const (
	explicitBaseConfidence = 0.8
	implicitBaseConfidence = 0.6
	explicitRatingWeight   = 0.7
)

// implicitScore folds the interaction metrics into a [0,1] satisfaction
// estimate, normalizing each metric against its cap.
func implicitScore(m models.InteractionMetrics) float64 {
	score := timeSpentWeight*math.Min(1, m.TimeSpent/timeSpentCap) +
		interactionsWeight*math.Min(1, float64(m.Interactions)/interactionsCap) +
		exportsWeight*math.Min(1, float64(m.Exports)/exportsCap) +
		modificationsWeight*math.Min(1, float64(m.Modifications)/modificationsCap)
	return utils.Clamp01(score)
}

// interactionLevel estimates how much engagement backs the signal, weighting
// modifications and exports above plain interactions.
func interactionLevel(m models.InteractionMetrics) float64 {
	raw := float64(m.Interactions) + 2*float64(m.Modifications) + 3*float64(m.Exports)
	return math.Min(1, raw/20)
}

// buildSignal derives the learning impulse from the accumulated metrics and
// an optional explicit rating in [0,1].
func buildSignal(m models.InteractionMetrics, explicitRating *float64, now time.Time) models.LearningSignal {
	implicit := implicitScore(m)

	score := implicit
	base := implicitBaseConfidence
	if explicitRating != nil {
		rating := utils.Clamp01(*explicitRating)
		score = explicitRatingWeight*rating + (1-explicitRatingWeight)*implicit
		base = explicitBaseConfidence
	}

	confidence := base * (0.7 + 0.3*interactionLevel(m))
	return models.LearningSignal{
		Score:      utils.Clamp01(score),
		Confidence: utils.Clamp01(confidence),
		Timestamp:  now,
	}
}
