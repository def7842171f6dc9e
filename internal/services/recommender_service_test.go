package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geoinsight/vizrec/internal/cache"
	"github.com/geoinsight/vizrec/internal/engine"
	"github.com/geoinsight/vizrec/internal/feedback"
	"github.com/geoinsight/vizrec/internal/learning"
	"github.com/geoinsight/vizrec/internal/models"
)

type memoryProvider struct {
	data map[string][]byte
	sets int
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{data: make(map[string][]byte)}
}

func (m *memoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memoryProvider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memoryProvider) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryProvider) Close() error { return nil }

func incomeLayer(fields []string) models.LayerResult {
	layer := models.LayerResult{
		ID:            "neighborhoods",
		GeometryType:  models.GeometryPolygon,
		NumericFields: fields,
	}
	incomes := []float64{42000, 55000, 61000, 48000, 93000}
	for i, income := range incomes {
		x := float64(i)
		layer.Features = append(layer.Features, models.Feature{
			Geometry: models.Geometry{Type: models.GeometryPolygon, Rings: [][]models.Point{{
				{X: x, Y: 0}, {X: x + 1, Y: 0}, {X: x + 1, Y: 1}, {X: x, Y: 1},
			}}},
			Attributes: map[string]any{"income": income},
		})
	}
	return layer
}

func newService(provider cache.Provider) *RecommenderService {
	index := feedback.NewIndex(nil, nil)
	learner := learning.NewLearner(learning.Config{}, nil)
	pipeline := engine.NewPipeline(nil, nil, nil, index, learner)
	return NewRecommenderService(nil, pipeline, index, learner, provider, time.Minute)
}

func TestRecommendRequiresLayers(t *testing.T) {
	svc := newService(nil)
	_, err := svc.Recommend(context.Background(), models.RecommendationRequest{Query: "show stores"})
	if !errors.Is(err, ErrNoLayers) {
		t.Fatalf("expected ErrNoLayers, got %v", err)
	}
}

func TestRecommendRankingQueryResolvesField(t *testing.T) {
	svc := newService(nil)
	resp, err := svc.Recommend(context.Background(), models.RecommendationRequest{
		Query:  "show top 5 highest income areas",
		Layers: []models.LayerResult{incomeLayer([]string{"income"})},
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if resp.RecommendationID == "" {
		t.Fatalf("expected a recommendation id")
	}
	if len(resp.Rankings) == 0 || resp.Rankings[0].Type != models.VizTopN {
		t.Fatalf("expected ranking to win, got %+v", resp.Rankings)
	}
	if resp.NumericField != "income" {
		t.Fatalf("expected numeric field income, got %q", resp.NumericField)
	}
}

func TestRecommendSurfacesFieldConfigurationErrors(t *testing.T) {
	svc := newService(nil)
	_, err := svc.Recommend(context.Background(), models.RecommendationRequest{
		Query:  "top 5 highest income areas",
		Layers: []models.LayerResult{incomeLayer(nil)},
	})
	if !errors.Is(err, engine.ErrMissingLayerConfig) {
		t.Fatalf("expected missing layer config error, got %v", err)
	}
}

func TestRecommendUsesCache(t *testing.T) {
	provider := newMemoryProvider()
	svc := newService(provider)
	req := models.RecommendationRequest{
		Query:  "show top 5 highest income areas",
		Layers: []models.LayerResult{incomeLayer([]string{"income"})},
	}

	first, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("first recommend: %v", err)
	}
	if provider.sets != 1 {
		t.Fatalf("expected one cache store, got %d", provider.sets)
	}

	second, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("second recommend: %v", err)
	}
	if provider.sets != 1 {
		t.Fatalf("cache hit should not store again, got %d sets", provider.sets)
	}
	if second.RecommendationID == first.RecommendationID {
		t.Fatalf("cached responses should carry fresh recommendation ids")
	}
	if len(second.Rankings) != len(first.Rankings) || second.Rankings[0].Type != first.Rankings[0].Type {
		t.Fatalf("cached rankings diverged: %+v vs %+v", second.Rankings, first.Rankings)
	}
}

func TestUserFeedbackUpdatesPreferences(t *testing.T) {
	svc := newService(nil)
	rating := 1.0

	for i := 0; i < 20; i++ {
		svc.StartTracking("u1")
		svc.TrackInteraction("u1", models.InteractionRequest{Seconds: 300})
		svc.TrackInteraction("u1", models.InteractionRequest{Kind: models.InteractionExport})
		svc.RecordUserFeedback("u1", models.UserFeedbackRequest{
			VisualizationType: models.VizHotspot,
			Context:           "crime hotspots",
			Rating:            &rating,
		})
	}

	prefs := svc.Preferences("u1")
	if score, ok := prefs[models.VizHotspot]; !ok || score <= 0.5 {
		t.Fatalf("expected a learned hotspot preference, got %v", prefs)
	}
}

func TestAddFeedbackInfluencesScores(t *testing.T) {
	svc := newService(nil)
	layers := []models.LayerResult{incomeLayer([]string{"income"})}

	baseline, err := svc.Recommend(context.Background(), models.RecommendationRequest{
		Query: "compare nike vs adidas", Layers: layers,
	})
	if err != nil {
		t.Fatalf("baseline recommend: %v", err)
	}
	var before float64
	for _, s := range baseline.Rankings {
		if s.Type == models.VizCorrelation {
			before = s.Score
		}
	}

	for i := 0; i < 3; i++ {
		svc.AddFeedback(models.FeedbackEntry{
			VisualizationType: models.VizCorrelation,
			Score:             5,
			Context: models.FeedbackContext{
				Query:      "compare nike vs adidas",
				LayerCount: 1,
				Timestamp:  time.Now(),
			},
		})
	}

	adjusted, err := svc.Recommend(context.Background(), models.RecommendationRequest{
		Query: "compare nike vs adidas", Layers: layers,
	})
	if err != nil {
		t.Fatalf("adjusted recommend: %v", err)
	}
	var after float64
	for _, s := range adjusted.Rankings {
		if s.Type == models.VizCorrelation {
			after = s.Score
		}
	}
	if after <= before {
		t.Fatalf("positive feedback should raise the score: %f <= %f", after, before)
	}
}
