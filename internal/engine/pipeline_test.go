package engine

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/geoinsight/vizrec/internal/models"
)

type fakeAdjuster struct {
	boosted models.VisualizationType
	delta   float64
}

func (f fakeAdjuster) AdjustScore(score float64, viz models.VisualizationType, _ string, _ int) float64 {
	if viz == f.boosted {
		return score + f.delta
	}
	return score
}

type fakePreferences struct {
	prefs map[models.VisualizationType]float64
}

func (f fakePreferences) Preferences(string) map[models.VisualizationType]float64 {
	return f.prefs
}

func TestPipelineRanksAllStrategies(t *testing.T) {
	p := NewPipeline(nil, nil, nil, nil, nil)
	layers := []models.LayerResult{incomeAreasLayer()}

	scores := p.Recommend(layers, "Show Top 5 Highest Income Areas")
	if len(scores) != len(models.AllVisualizationTypes) {
		t.Fatalf("expected %d strategies, got %d", len(models.AllVisualizationTypes), len(scores))
	}
	if scores[0].Type != models.VizTopN {
		t.Fatalf("expected ranking to win, got %s", scores[0].Type)
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].Score > scores[i-1].Score {
			t.Fatalf("scores not sorted at %d: %f > %f", i, scores[i].Score, scores[i-1].Score)
		}
	}
}

func TestPipelineDeterministic(t *testing.T) {
	p := NewPipeline(nil, nil, nil, nil, nil)
	layers := []models.LayerResult{incomeAreasLayer()}

	first := p.Recommend(layers, "show the neighborhoods")
	second := p.Recommend(layers, "show the neighborhoods")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different rankings:\n%v\n%v", first, second)
	}
}

func TestPipelineAppliesFeedbackAdjustment(t *testing.T) {
	adjuster := fakeAdjuster{boosted: models.VizHotspot, delta: 0.5}
	p := NewPipeline(nil, nil, nil, adjuster, nil)
	layers := []models.LayerResult{incomeAreasLayer()}

	baseline := NewPipeline(nil, nil, nil, nil, nil).Recommend(layers, "show the neighborhoods")
	adjusted := p.Recommend(layers, "show the neighborhoods")

	var base, got float64
	for _, s := range baseline {
		if s.Type == models.VizHotspot {
			base = s.Score
		}
	}
	for _, s := range adjusted {
		if s.Type == models.VizHotspot {
			got = s.Score
		}
	}
	if math.Abs(got-(base+0.5)) > 1e-9 {
		t.Fatalf("expected hotspot %f, got %f", base+0.5, got)
	}
}

func TestPipelineBlendsUserPreferences(t *testing.T) {
	prefs := fakePreferences{prefs: map[models.VisualizationType]float64{models.VizThreeD: 1.0}}
	p := NewPipeline(nil, nil, nil, nil, prefs)
	layers := []models.LayerResult{incomeAreasLayer()}

	anonymous := p.Recommend(layers, "show the neighborhoods")
	personalized := p.RecommendForUser("u1", layers, "show the neighborhoods")

	var raw, blended float64
	var reasoning []string
	for _, s := range anonymous {
		if s.Type == models.VizThreeD {
			raw = s.Score
		}
	}
	for _, s := range personalized {
		if s.Type == models.VizThreeD {
			blended = s.Score
			reasoning = s.Reasoning
		}
	}

	want := raw*0.8 + 1.0*0.2
	if math.Abs(blended-want) > 1e-9 {
		t.Fatalf("expected blended score %f, got %f", want, blended)
	}
	found := false
	for _, reason := range reasoning {
		if strings.Contains(reason, "learned user preference") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a preference reason, got %v", reasoning)
	}
}
