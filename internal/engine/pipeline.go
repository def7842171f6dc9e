package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/geoinsight/vizrec/internal/analyzer"
	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

// defaultPreferenceBlendWeight bounds how much a learned per-user preference
// moves a raw score. Kept below the feedback-index cap (0.3) so explicit
// per-query feedback dominates per-user priors.
const defaultPreferenceBlendWeight = 0.2

// FeedbackAdjuster nudges a raw score using historical feedback for similar
// queries.
type FeedbackAdjuster interface {
	AdjustScore(score float64, viz models.VisualizationType, query string, layerCount int) float64
}

// PreferenceProvider exposes a user's confidence-gated learned preferences.
type PreferenceProvider interface {
	Preferences(userID string) map[models.VisualizationType]float64
}

// Pipeline orchestrates a recommendation: analyze, score every strategy,
// apply feedback adjustment and preference blending, and sort.
type Pipeline struct {
	logger      *slog.Logger
	analyzer    *analyzer.Analyzer
	scorer      *Scorer
	feedback    FeedbackAdjuster
	preferences PreferenceProvider
	blendWeight float64
}

// NewPipeline constructs a Pipeline. feedback and preferences may be nil,
// which disables the corresponding adjustment stage.
func NewPipeline(logger *slog.Logger, az *analyzer.Analyzer, scorer *Scorer, feedback FeedbackAdjuster, preferences PreferenceProvider) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if az == nil {
		az = analyzer.New(logger)
	}
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	return &Pipeline{
		logger:      logger,
		analyzer:    az,
		scorer:      scorer,
		feedback:    feedback,
		preferences: preferences,
		blendWeight: defaultPreferenceBlendWeight,
	}
}

// Recommend ranks the seven strategies for an anonymous request.
func (p *Pipeline) Recommend(layers []models.LayerResult, query string) []models.VisualizationScore {
	return p.recommend("", layers, query)
}

// RecommendForUser ranks the strategies and blends in the user's learned
// preferences where they pass the confidence gate.
func (p *Pipeline) RecommendForUser(userID string, layers []models.LayerResult, query string) []models.VisualizationScore {
	return p.recommend(userID, layers, query)
}

func (p *Pipeline) recommend(userID string, layers []models.LayerResult, query string) []models.VisualizationScore {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	chars := p.analyzer.Analyze(layers)
	scores := p.scorer.ScoreAll(chars, queryLower, layers)

	if p.feedback != nil {
		for i := range scores {
			scores[i].Score = p.feedback.AdjustScore(scores[i].Score, scores[i].Type, queryLower, len(layers))
		}
	}

	if userID != "" && p.preferences != nil {
		prefs := p.preferences.Preferences(userID)
		for i := range scores {
			pref, ok := prefs[scores[i].Type]
			if !ok {
				continue
			}
			scores[i].Score = scores[i].Score*(1-p.blendWeight) + pref*p.blendWeight
			scores[i].Reasoning = append(scores[i].Reasoning,
				fmt.Sprintf("learned user preference %.2f blended in", pref))
		}
	}

	for i := range scores {
		scores[i].Score = utils.Clamp01(scores[i].Score)
		scores[i].Confidence = utils.Clamp01(scores[i].Confidence)
	}

	// Ties break on type name so identical inputs rank identically.
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Type < scores[j].Type
	})

	p.logger.Debug("recommendation ranked",
		slog.String("query", queryLower),
		slog.Int("layers", len(layers)),
		slog.String("top", string(scores[0].Type)))

	return scores
}
