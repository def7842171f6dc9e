package engine

import (
	"fmt"
	"math"

	"github.com/geoinsight/vizrec/internal/analyzer"
	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

// hotspotDensityThreshold is the points-per-area level above which a layer
// set counts as dense. Heuristic, tuned for projected map units.
const hotspotDensityThreshold = 0.001

// clusteringThreshold is the clustering coefficient above which the data is
// considered spatially grouped.
const clusteringThreshold = 0.6

// strongCorrelationThreshold marks a field pair worth visualizing directly.
const strongCorrelationThreshold = 0.6

// Scorer evaluates the seven visualization strategies. Scoring functions
// never fail; absent data simply produces lower scores with shorter
// reasoning trails.
type Scorer struct {
	keywords *KeywordPack
}

// NewScorer constructs a Scorer; a nil pack falls back to the defaults.
func NewScorer(pack *KeywordPack) *Scorer {
	if pack == nil {
		pack = DefaultKeywordPack()
	}
	return &Scorer{keywords: pack}
}

// ScoreAll scores every strategy against the characteristics, the
// lower-cased query, and the raw layers.
func (s *Scorer) ScoreAll(chars models.DataCharacteristics, queryLower string, layers []models.LayerResult) []models.VisualizationScore {
	scores := make([]models.VisualizationScore, 0, len(models.AllVisualizationTypes))
	for _, viz := range models.AllVisualizationTypes {
		scores = append(scores, s.Score(viz, chars, queryLower, layers))
	}
	return scores
}

// Score evaluates a single strategy.
func (s *Scorer) Score(viz models.VisualizationType, chars models.DataCharacteristics, queryLower string, layers []models.LayerResult) models.VisualizationScore {
	switch viz {
	case models.VizSingle:
		return s.scoreSingle(queryLower, layers)
	case models.VizPoint:
		return s.scorePoint(queryLower, layers)
	case models.VizCorrelation:
		return s.scoreCorrelation(chars, queryLower, layers)
	case models.VizThreeD:
		return s.scoreThreeD(chars, queryLower, layers)
	case models.VizTopN:
		return s.scoreTopN(queryLower, layers)
	case models.VizHotspot:
		return s.scoreHotspot(chars, queryLower, layers)
	case models.VizProportional:
		return s.scoreProportional(queryLower, layers)
	default:
		return models.VisualizationScore{Type: viz, Reasoning: []string{}}
	}
}

// scoreSingle favors plain rendering: +0.3 for display keywords, +0.3 for a
// single layer, +0.2 for attribute-light data; measurement language
// subtracts 0.2. Boost 1.3x when a display keyword meets a single layer.
func (s *Scorer) scoreSingle(queryLower string, layers []models.LayerResult) models.VisualizationScore {
	t := newTrail(models.VizSingle)

	kw, kwHit := matchKeyword(queryLower, s.keywords.Single)
	if kwHit {
		t.add(0.3, 0.25, fmt.Sprintf("display keyword %q", kw))
	}
	if m, hit := matchKeyword(queryLower, s.keywords.Proportional); hit {
		t.add(-0.2, 0.1, fmt.Sprintf("scaling keyword %q points away from plain rendering", m))
	} else if m, hit := matchKeyword(queryLower, s.keywords.Measurement); hit {
		t.add(-0.2, 0.1, fmt.Sprintf("measurement keyword %q points away from plain rendering", m))
	}

	singleLayer := len(layers) == 1
	if singleLayer {
		t.add(0.3, 0.2, "single layer in result set")
	}
	if !hasNumericFields(layers) {
		t.add(0.2, 0.15, "no numeric attributes available for thematic styling")
	}

	if kwHit && singleLayer {
		t.boost(1.3, 0.15, "display request over a single layer")
	}
	return t.result()
}

// scorePoint favors plotting individual locations: +0.3 for location or
// business keywords, +0.3 for point geometry, +0.1 when at least ten
// locations exist. Boost 1.3x for keyword plus point geometry.
func (s *Scorer) scorePoint(queryLower string, layers []models.LayerResult) models.VisualizationScore {
	t := newTrail(models.VizPoint)

	kw, kwHit := matchKeyword(queryLower, s.keywords.Point)
	if kwHit {
		t.add(0.3, 0.25, fmt.Sprintf("location keyword %q", kw))
	}

	pointGeometry := hasGeometry(layers, models.GeometryPoint)
	if pointGeometry {
		t.add(0.3, 0.2, "point geometry present")
	}
	if countFeatures(layers, models.GeometryPoint) >= 10 {
		t.add(0.1, 0.1, "enough individual locations to plot")
	}

	if kwHit && pointGeometry {
		t.boost(1.3, 0.15, "location request over point data")
	}
	return t.result()
}

// scoreCorrelation favors comparing variables: +0.4 for comparison
// keywords, +0.2 for multiple layers, +0.3 for a strong field correlation,
// +0.1 for cross-layer statistical relationships. Boost 1.4x when a keyword
// meets either structural signal.
func (s *Scorer) scoreCorrelation(chars models.DataCharacteristics, queryLower string, layers []models.LayerResult) models.VisualizationScore {
	t := newTrail(models.VizCorrelation)

	kw, kwHit := matchKeyword(queryLower, s.keywords.Correlation)
	if kwHit {
		t.add(0.4, 0.25, fmt.Sprintf("comparison keyword %q", kw))
	}

	multiLayer := len(layers) >= 2
	if multiLayer {
		t.add(0.2, 0.2, "multiple layers available for comparison")
	}

	strongCorr := false
	for _, corr := range chars.Attributes.Correlations {
		if math.Abs(corr.Strength) >= strongCorrelationThreshold {
			strongCorr = true
			t.add(0.3, 0.2, fmt.Sprintf("strong correlation between %s and %s (r=%.2f)", corr.Field1, corr.Field2, corr.Strength))
			break
		}
	}
	for _, rel := range chars.Relationships.Statistical {
		if math.Abs(rel.Strength) >= 0.5 {
			t.add(0.1, 0.1, fmt.Sprintf("cross-layer association between %s and %s", rel.LayerA, rel.LayerB))
			break
		}
	}

	if kwHit && (multiLayer || strongCorr) {
		t.boost(1.4, 0.15, "comparison request over comparable data")
	}
	return t.result()
}

// scoreThreeD favors extrusion: +0.4 for elevation keywords, +0.3 for
// polygons with numeric attributes, +0.1 for a right-skewed value
// distribution. Boost 1.4x for keyword plus extrudable polygons.
func (s *Scorer) scoreThreeD(chars models.DataCharacteristics, queryLower string, layers []models.LayerResult) models.VisualizationScore {
	t := newTrail(models.VizThreeD)

	kw, kwHit := matchKeyword(queryLower, s.keywords.ThreeD)
	if kwHit {
		t.add(0.4, 0.25, fmt.Sprintf("elevation keyword %q", kw))
	}

	extrudable := hasGeometry(layers, models.GeometryPolygon) && hasNumericFields(layers)
	if extrudable {
		t.add(0.3, 0.2, "polygons with numeric attributes can be extruded")
	}
	if chars.Spatial.Distribution == models.DistributionRightSkewed {
		t.add(0.1, 0.1, "right-skewed values produce distinct extrusion heights")
	}

	if kwHit && extrudable {
		t.boost(1.4, 0.15, "elevation request over extrudable data")
	}
	return t.result()
}

// scoreTopN favors ranked subsets: +0.4 for an explicit "top N" phrase,
// +0.2 for ranking vocabulary, +0.3 for a rankable numeric field, +0.1 for
// area features. Boost 1.5x when an explicit phrase meets a numeric field.
func (s *Scorer) scoreTopN(queryLower string, layers []models.LayerResult) models.VisualizationScore {
	t := newTrail(models.VizTopN)

	phrase, phraseHit := matchTopN(queryLower)
	if phraseHit {
		t.add(0.4, 0.3, fmt.Sprintf("top N ranking phrase %q", phrase))
	}
	if kw, hit := matchKeyword(queryLower, s.keywords.TopN); hit {
		t.add(0.2, 0.15, fmt.Sprintf("ranking keyword %q", kw))
	}

	numeric := hasNumericFields(layers)
	if numeric {
		t.add(0.3, 0.2, "numeric field available for ranking")
	}
	if hasGeometry(layers, models.GeometryPolygon) {
		t.add(0.1, 0.1, "area features rank cleanly by attribute")
	}

	if phraseHit && numeric {
		t.boost(1.5, 0.15, "explicit ranking request over rankable data")
	}
	return t.result()
}

// scoreHotspot favors density surfaces: +0.4 for concentration keywords,
// +0.3 for high clustering, +0.2 for high density, +0.1 for point geometry.
// Boost 1.4x when a keyword meets observed clustering.
func (s *Scorer) scoreHotspot(chars models.DataCharacteristics, queryLower string, layers []models.LayerResult) models.VisualizationScore {
	t := newTrail(models.VizHotspot)

	kw, kwHit := matchKeyword(queryLower, s.keywords.Hotspot)
	if kwHit {
		t.add(0.4, 0.25, fmt.Sprintf("concentration keyword %q", kw))
	}

	clustered := chars.Spatial.Clustering > clusteringThreshold
	if clustered {
		t.add(0.3, 0.2, fmt.Sprintf("high spatial clustering (%.2f)", chars.Spatial.Clustering))
	}
	if chars.Spatial.Density > hotspotDensityThreshold {
		t.add(0.2, 0.15, "high point density")
	}
	if hasGeometry(layers, models.GeometryPoint) {
		t.add(0.1, 0.1, "point geometry suits density rendering")
	}

	if kwHit && clustered {
		t.boost(1.4, 0.15, "concentration request over clustered data")
	}
	return t.result()
}

// scoreProportional favors size-scaled symbols: +0.4 for scaling keywords,
// +0.2 for measurement vocabulary, +0.3 for a numeric field to scale by.
// Boost 1.3x when a scaling keyword meets a numeric field.
func (s *Scorer) scoreProportional(queryLower string, layers []models.LayerResult) models.VisualizationScore {
	t := newTrail(models.VizProportional)

	kw, kwHit := matchKeyword(queryLower, s.keywords.Proportional)
	if kwHit {
		t.add(0.4, 0.25, fmt.Sprintf("scaling keyword %q", kw))
	}
	if m, hit := matchKeyword(queryLower, s.keywords.Measurement); hit {
		t.add(0.2, 0.15, fmt.Sprintf("measurement keyword %q", m))
	}

	numeric := hasNumericFields(layers)
	if numeric {
		t.add(0.3, 0.2, "numeric field available for symbol scaling")
	}

	if kwHit && numeric {
		t.boost(1.3, 0.15, "scaling request over measurable data")
	}
	return t.result()
}

// trail accumulates score, confidence, and the reasoning strings for one
// strategy evaluation. Confidence tracks the count and weight of matched
// signals independently of the score.
type trail struct {
	viz        models.VisualizationType
	score      float64
	confidence float64
	reasons    []string
}

func newTrail(viz models.VisualizationType) *trail {
	return &trail{viz: viz, reasons: []string{}}
}

func (t *trail) add(scoreDelta, confDelta float64, reason string) {
	t.score += scoreDelta
	t.confidence += confDelta
	t.reasons = append(t.reasons, reason)
}

func (t *trail) boost(factor, confDelta float64, reason string) {
	t.score *= factor
	t.confidence += confDelta
	t.reasons = append(t.reasons, reason)
}

func (t *trail) result() models.VisualizationScore {
	return models.VisualizationScore{
		Type:       t.viz,
		Score:      utils.Clamp01(t.score),
		Confidence: utils.Clamp01(t.confidence),
		Reasoning:  t.reasons,
	}
}

func hasNumericFields(layers []models.LayerResult) bool {
	for _, layer := range layers {
		if len(analyzer.UsableNumericFields(layer)) > 0 {
			return true
		}
	}
	return false
}

func hasGeometry(layers []models.LayerResult, geom models.GeometryType) bool {
	for _, layer := range layers {
		if layer.GeometryType == geom {
			return true
		}
	}
	return false
}

func countFeatures(layers []models.LayerResult, geom models.GeometryType) int {
	count := 0
	for _, layer := range layers {
		if layer.GeometryType == geom {
			count += len(layer.Features)
		}
	}
	return count
}
