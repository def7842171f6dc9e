package analyzer

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

// relationships evaluates every unordered layer pair. A pair that cannot
// produce an estimate is omitted so one bad pairing never aborts the whole
// analysis.
func (a *Analyzer) relationships(layers []models.LayerResult) models.Relationships {
	var rel models.Relationships
	for i := 0; i < len(layers); i++ {
		for j := i + 1; j < len(layers); j++ {
			if r, ok := spatialRelationship(layers[i], layers[j]); ok {
				rel.Spatial = append(rel.Spatial, r)
			} else {
				a.logger.Debug("spatial relationship skipped",
					slog.String("layer_a", layers[i].ID), slog.String("layer_b", layers[j].ID))
			}
			if r, ok := statisticalRelationship(layers[i], layers[j]); ok {
				rel.Statistical = append(rel.Statistical, r)
			}
		}
	}
	return rel
}

// spatialRelationship estimates spatial association as the bounding-box
// intersection area over the smaller box's area.
func spatialRelationship(a, b models.LayerResult) (models.LayerRelationship, bool) {
	aMinX, aMinY, aMaxX, aMaxY, okA := boundingBox(representativePoints(a))
	bMinX, bMinY, bMaxX, bMaxY, okB := boundingBox(representativePoints(b))
	if !okA || !okB {
		return models.LayerRelationship{}, false
	}

	areaA := (aMaxX - aMinX) * (aMaxY - aMinY)
	areaB := (bMaxX - bMinX) * (bMaxY - bMinY)
	smaller := math.Min(areaA, areaB)
	if smaller <= 0 {
		return models.LayerRelationship{}, false
	}

	overlapX := math.Min(aMaxX, bMaxX) - math.Max(aMinX, bMinX)
	overlapY := math.Min(aMaxY, bMaxY) - math.Max(aMinY, bMinY)
	strength := 0.0
	if overlapX > 0 && overlapY > 0 {
		strength = utils.Clamp01(overlapX * overlapY / smaller)
	}

	return models.LayerRelationship{
		Kind:     models.RelationshipSpatial,
		LayerA:   a.ID,
		LayerB:   b.ID,
		Strength: strength,
		Detail:   "bounding-box overlap ratio",
	}, true
}

// statisticalRelationship correlates the first numeric field name the two
// layers share, aligned to the shorter value series.
func statisticalRelationship(a, b models.LayerResult) (models.LayerRelationship, bool) {
	shared := ""
	fieldsB := UsableNumericFields(b)
	for _, fa := range UsableNumericFields(a) {
		for _, fb := range fieldsB {
			if fa == fb {
				shared = fa
				break
			}
		}
		if shared != "" {
			break
		}
	}
	if shared == "" {
		return models.LayerRelationship{}, false
	}

	xs := numericValues(a, shared)
	ys := numericValues(b, shared)
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 3 {
		return models.LayerRelationship{}, false
	}

	r := stat.Correlation(xs[:n], ys[:n], nil)
	if math.IsNaN(r) {
		return models.LayerRelationship{}, false
	}

	return models.LayerRelationship{
		Kind:     models.RelationshipStatistical,
		LayerA:   a.ID,
		LayerB:   b.ID,
		Strength: utils.Clamp(r, -1, 1),
		Detail:   "cross-layer correlation on " + shared,
	}, true
}
