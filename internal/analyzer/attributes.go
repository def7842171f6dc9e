package analyzer

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

// renderingOnlyFields are attribute names that exist for the map renderer,
// not for analysis, and are excluded even when declared numeric.
var renderingOnlyFields = map[string]struct{}{
	"objectid":      {},
	"fid":           {},
	"shape_area":    {},
	"shape_length":  {},
	"shape__area":   {},
	"shape__length": {},
}

// attributePatterns fills per-field distributions and intra-layer pairwise
// correlations. Numeric fields come strictly from the layer's declared
// configuration; fields that never produce enough finite values are skipped.
func (a *Analyzer) attributePatterns(layers []models.LayerResult, out *models.AttributePatterns) {
	for _, layer := range layers {
		fields := UsableNumericFields(layer)

		for _, field := range fields {
			values := numericValues(layer, field)
			if len(values) < 3 {
				continue
			}
			skew, kurt := standardizedMoments(values)
			out.Distributions[layer.ID+"."+field] = models.FieldDistribution{
				Shape:    shapeFromSkewness(skew),
				Skewness: skew,
				Kurtosis: kurt,
			}
		}

		for i := 0; i < len(fields); i++ {
			for j := i + 1; j < len(fields); j++ {
				xs, ys := alignedPairs(layer, fields[i], fields[j])
				if len(xs) < 3 {
					continue
				}
				r := stat.Correlation(xs, ys, nil)
				if math.IsNaN(r) {
					continue
				}
				out.Correlations = append(out.Correlations, models.FieldCorrelation{
					LayerID:  layer.ID,
					Field1:   fields[i],
					Field2:   fields[j],
					Strength: utils.Clamp(r, -1, 1),
				})
			}
		}
	}
}

// UsableNumericFields returns the layer's declared numeric fields minus
// rendering-only names. A nil declaration yields nil.
func UsableNumericFields(layer models.LayerResult) []string {
	if layer.NumericFields == nil {
		return nil
	}
	fields := make([]string, 0, len(layer.NumericFields))
	for _, field := range layer.NumericFields {
		if _, skip := renderingOnlyFields[strings.ToLower(field)]; skip {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// numericValues collects the finite values of one field across all features.
func numericValues(layer models.LayerResult, field string) []float64 {
	values := make([]float64, 0, len(layer.Features))
	for _, feature := range layer.Features {
		if v, ok := NumericAttribute(feature.Attributes, field); ok {
			values = append(values, v)
		}
	}
	return values
}

// alignedPairs collects per-feature value pairs where both fields are finite.
func alignedPairs(layer models.LayerResult, fieldX, fieldY string) (xs, ys []float64) {
	for _, feature := range layer.Features {
		x, okX := NumericAttribute(feature.Attributes, fieldX)
		y, okY := NumericAttribute(feature.Attributes, fieldY)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func NumericAttribute(attrs map[string]any, field string) (float64, bool) {
	raw, ok := attrs[field]
	if !ok {
		return 0, false
	}
	v, ok := toFloat(raw)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// standardizedMoments returns the classical population skewness and kurtosis
// (third and fourth standardized moments).
func standardizedMoments(values []float64) (skew, kurt float64) {
	mean := stat.Mean(values, nil)
	m2 := stat.MomentAbout(2, values, mean, nil)
	if m2 <= 0 {
		return 0, 0
	}
	sigma := math.Sqrt(m2)
	skew = stat.MomentAbout(3, values, mean, nil) / (m2 * sigma)
	kurt = stat.MomentAbout(4, values, mean, nil) / (m2 * m2)
	return skew, kurt
}
