package feedback

import (
	"math"
	"testing"
	"time"

	"github.com/geoinsight/vizrec/internal/models"
)

func entry(viz models.VisualizationType, score float64, query string, layerCount int, ts time.Time) models.FeedbackEntry {
	return models.FeedbackEntry{
		VisualizationType: viz,
		Score:             score,
		Context: models.FeedbackContext{
			Query:      query,
			LayerCount: layerCount,
			Timestamp:  ts,
		},
	}
}

func TestNormalizeQuery(t *testing.T) {
	got := NormalizeQuery("  Compare   NIKE vs Adidas ")
	if got != "compare nike vs adidas" {
		t.Fatalf("unexpected normalization %q", got)
	}
}

func TestRelevantExactAndSimilar(t *testing.T) {
	idx := NewIndex(nil, nil)
	now := time.Now()

	idx.Add(entry(models.VizCorrelation, 5, "compare nike vs adidas", 2, now.Add(-time.Hour)))
	idx.Add(entry(models.VizCorrelation, 4, "compare nike vs adidas stores", 2, now))
	idx.Add(entry(models.VizHotspot, 2, "crime hotspots downtown", 1, now))

	relevant := idx.Relevant("compare nike vs adidas", 2)
	if len(relevant) != 2 {
		t.Fatalf("expected exact plus similar match, got %d", len(relevant))
	}
	// Sorted most recent first.
	if relevant[0].Score != 4 {
		t.Fatalf("expected the newer entry first, got score %f", relevant[0].Score)
	}
}

func TestRelevantLayerCountWindow(t *testing.T) {
	idx := NewIndex(nil, nil)
	now := time.Now()

	idx.Add(entry(models.VizPoint, 5, "store locations", 1, now))
	idx.Add(entry(models.VizPoint, 1, "store locations", 6, now))

	relevant := idx.Relevant("store locations", 2)
	if len(relevant) != 1 {
		t.Fatalf("expected the distant layer count to be filtered, got %d", len(relevant))
	}
	if relevant[0].Score != 5 {
		t.Fatalf("unexpected surviving entry %f", relevant[0].Score)
	}
}

func TestAdjustScorePassthrough(t *testing.T) {
	idx := NewIndex(nil, nil)
	if got := idx.AdjustScore(0.84, models.VizCorrelation, "compare nike vs adidas", 2); got != 0.84 {
		t.Fatalf("no feedback should leave the score unchanged, got %f", got)
	}
}

func TestAdjustScoreBlending(t *testing.T) {
	idx := NewIndex(nil, nil)
	now := time.Now()
	idx.Add(entry(models.VizCorrelation, 5, "compare nike vs adidas", 2, now.Add(-time.Minute)))
	idx.Add(entry(models.VizCorrelation, 5, "compare nike vs adidas", 2, now))

	// Two perfect ratings: weight 0.2, blend toward 1.0.
	got := idx.AdjustScore(0.84, models.VizCorrelation, "compare nike vs adidas", 2)
	want := 0.84*0.8 + 1.0*0.2
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestAdjustScoreWeightCap(t *testing.T) {
	// Influence grows with the match count but saturates at 0.3.
	cases := []struct {
		entries int
		weight  float64
	}{
		{1, 0.1},
		{5, 0.3},
		{50, 0.3},
	}
	for _, tc := range cases {
		idx := NewIndex(nil, nil)
		now := time.Now()
		for i := 0; i < tc.entries; i++ {
			idx.Add(entry(models.VizHotspot, 0, "crime hotspots", 1, now))
		}

		got := idx.AdjustScore(1.0, models.VizHotspot, "crime hotspots", 1)
		want := 1.0 - tc.weight
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("%d entries: expected %f, got %f", tc.entries, want, got)
		}
	}
}

func TestAdjustScoreIgnoresOtherTypes(t *testing.T) {
	idx := NewIndex(nil, nil)
	idx.Add(entry(models.VizPoint, 0, "store locations", 1, time.Now()))

	if got := idx.AdjustScore(0.5, models.VizHotspot, "store locations", 1); got != 0.5 {
		t.Fatalf("feedback for another type should not apply, got %f", got)
	}
}

func TestJaccardThreshold(t *testing.T) {
	idx := NewIndex(nil, nil, WithSimilarityThreshold(0.9))
	now := time.Now()
	idx.Add(entry(models.VizCorrelation, 5, "compare nike vs adidas stores", 2, now))

	if got := idx.Relevant("compare nike vs adidas", 2); len(got) != 0 {
		t.Fatalf("a raised threshold should reject the near match, got %d", len(got))
	}
}

func TestLRUStoreEviction(t *testing.T) {
	store, err := NewLRUStore(2)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	store.Append("a", models.FeedbackEntry{Score: 1})
	store.Append("b", models.FeedbackEntry{Score: 2})
	store.Append("c", models.FeedbackEntry{Score: 3})

	if len(store.Entries("a")) != 0 {
		t.Fatalf("oldest query should have been evicted")
	}
	if len(store.Keys()) != 2 {
		t.Fatalf("expected two retained queries, got %d", len(store.Keys()))
	}
}
