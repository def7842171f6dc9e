package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/geoinsight/vizrec/internal/cache"
	"github.com/geoinsight/vizrec/internal/engine"
	"github.com/geoinsight/vizrec/internal/feedback"
	"github.com/geoinsight/vizrec/internal/learning"
	"github.com/geoinsight/vizrec/internal/metrics"
	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

// ErrNoLayers is returned when a recommendation request carries no layers.
var ErrNoLayers = errors.New("at least one layer is required")

// RecommenderService orchestrates the scoring pipeline, the community
// feedback index, and the per-user learner behind a single facade.
type RecommenderService struct {
	logger    *slog.Logger
	pipeline  *engine.Pipeline
	index     *feedback.Index
	learner   *learning.Learner
	cache     cache.Provider
	cacheTTL  time.Duration
	latencies *utils.LatencyTracker
}

// NewRecommenderService constructs the service facade. The cache provider is
// optional; pass nil to disable response caching.
func NewRecommenderService(logger *slog.Logger, pipeline *engine.Pipeline, index *feedback.Index, learner *learning.Learner, provider cache.Provider, cacheTTL time.Duration) *RecommenderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommenderService{
		logger:    logger,
		pipeline:  pipeline,
		index:     index,
		learner:   learner,
		cache:     provider,
		cacheTTL:  cacheTTL,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Recommend runs the full pipeline for the request and returns ranked
// strategies. Responses are cached per user, query, and layer fingerprint
// when a cache provider is configured.
func (s *RecommenderService) Recommend(ctx context.Context, req models.RecommendationRequest) (models.RecommendationResponse, error) {
	if len(req.Layers) == 0 {
		return models.RecommendationResponse{}, ErrNoLayers
	}

	key := s.cacheKey(req)
	if cached, ok := s.cachedResponse(ctx, key); ok {
		cached.RecommendationID = uuid.NewString()
		return cached, nil
	}

	start := time.Now()
	var rankings []models.VisualizationScore
	if req.UserID != "" {
		rankings = s.pipeline.RecommendForUser(req.UserID, req.Layers, req.Query)
	} else {
		rankings = s.pipeline.Recommend(req.Layers, req.Query)
	}
	duration := time.Since(start)

	resp := models.RecommendationResponse{
		RecommendationID: uuid.NewString(),
		Rankings:         rankings,
	}

	if len(rankings) > 0 && needsNumericField(rankings[0].Type) {
		field, err := s.resolveNumericField(req.Layers)
		if err != nil {
			metrics.ObserveRecommendation(time.Since(start), metrics.OutcomeError)
			return models.RecommendationResponse{}, err
		}
		resp.NumericField = field
	}

	s.latencies.Observe(duration)
	metrics.ObserveRecommendation(duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("recommendation latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}

	s.storeResponse(ctx, key, resp)
	return resp, nil
}

// AddFeedback records a community feedback entry for future query-similarity
// adjustments.
func (s *RecommenderService) AddFeedback(entry models.FeedbackEntry) {
	if entry.Context.Timestamp.IsZero() {
		entry.Context.Timestamp = time.Now()
	}
	s.index.Add(entry)
	metrics.CountFeedback(metrics.SourceCommunity)
}

// StartTracking begins an interaction session for the user's next
// recommendation.
func (s *RecommenderService) StartTracking(userID string) {
	s.learner.StartTracking(userID)
	metrics.SetTrackedUsers(s.learner.TrackedUsers())
}

// TrackInteraction records one implicit action or dwell-time increment.
func (s *RecommenderService) TrackInteraction(userID string, req models.InteractionRequest) {
	if req.Seconds > 0 {
		s.learner.AddTimeSpent(userID, req.Seconds)
	}
	if req.Kind != "" {
		s.learner.Track(userID, req.Kind)
	}
}

// RecordUserFeedback folds one feedback event into the user's preference
// profile.
func (s *RecommenderService) RecordUserFeedback(userID string, req models.UserFeedbackRequest) {
	s.learner.RecordFeedback(userID, req.VisualizationType, req.Context, req.Rating)
	metrics.CountFeedback(metrics.SourceUser)
}

// Preferences returns the user's confidence-gated preference scores.
func (s *RecommenderService) Preferences(userID string) map[models.VisualizationType]float64 {
	return s.learner.Preferences(userID)
}

// LatencyP95 returns the current p95 recommendation latency.
func (s *RecommenderService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}

func needsNumericField(viz models.VisualizationType) bool {
	return viz == models.VizTopN || viz == models.VizProportional
}

func (s *RecommenderService) resolveNumericField(layers []models.LayerResult) (string, error) {
	var lastErr error
	for _, layer := range layers {
		field, err := engine.RankedNumericField(layer)
		if err == nil {
			return field, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (s *RecommenderService) cacheKey(req models.RecommendationRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n", req.UserID, feedback.NormalizeQuery(req.Query))
	for _, layer := range req.Layers {
		fmt.Fprintf(h, "%s|%s|%d\n", layer.ID, layer.GeometryType, len(layer.Features))
	}
	return "vizrec:rec:" + hex.EncodeToString(h.Sum(nil))
}

func (s *RecommenderService) cachedResponse(ctx context.Context, key string) (models.RecommendationResponse, bool) {
	if s.cache == nil {
		return models.RecommendationResponse{}, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Debug("cache lookup failed", slog.Any("error", err))
		}
		return models.RecommendationResponse{}, false
	}
	var resp models.RecommendationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		s.logger.Debug("cache payload invalid", slog.Any("error", err))
		return models.RecommendationResponse{}, false
	}
	return resp, true
}

func (s *RecommenderService) storeResponse(ctx context.Context, key string, resp models.RecommendationResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Debug("cache store failed", slog.Any("error", err))
	}
}
