package analyzer

import (
	"math"

	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

// clusterSampleCap bounds how many points per layer feed the pairwise
// distance estimate.
const clusterSampleCap = 100

// spatialPatterns averages clustering and density across layers that yield
// usable points. Layers with fewer than two points contribute nothing.
func (a *Analyzer) spatialPatterns(layers []models.LayerResult) models.SpatialPatterns {
	patterns := models.SpatialPatterns{
		Distribution: pooledDistribution(layers),
	}

	var clusteringSum, densitySum float64
	contributing := 0
	for _, layer := range layers {
		points := representativePoints(layer)
		if len(points) < 2 {
			continue
		}
		clusteringSum += clusteringCoefficient(points, a.sampleCap)
		densitySum += pointDensity(points)
		contributing++
	}

	if contributing > 0 {
		patterns.Clustering = utils.Clamp01(clusteringSum / float64(contributing))
		patterns.Density = densitySum / float64(contributing)
	}
	return patterns
}

// representativePoints reduces each feature to a single coordinate: points
// directly, polygons via their ring centroid.
func representativePoints(layer models.LayerResult) []models.Point {
	points := make([]models.Point, 0, len(layer.Features))
	for _, feature := range layer.Features {
		if pt, ok := feature.Geometry.RepresentativePoint(); ok {
			points = append(points, pt)
		}
	}
	return points
}

// clusteringCoefficient estimates how tightly points group, as one minus the
// average pairwise distance over the sample's bounding-box diagonal.
func clusteringCoefficient(points []models.Point, sampleCap int) float64 {
	sample := points
	if sampleCap > 0 && len(sample) > sampleCap {
		sample = sample[:sampleCap]
	}

	var total float64
	pairs := 0
	for i := 0; i < len(sample); i++ {
		for j := i + 1; j < len(sample); j++ {
			total += math.Hypot(sample[i].X-sample[j].X, sample[i].Y-sample[j].Y)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}

	minX, minY, maxX, maxY, ok := boundingBox(sample)
	if !ok {
		return 0
	}
	diagonal := math.Hypot(maxX-minX, maxY-minY)
	if diagonal == 0 {
		// All points coincide.
		return 1
	}
	return utils.Clamp01(1 - (total/float64(pairs))/diagonal)
}

// pointDensity is point count over bounding-box area. A degenerate box
// (collinear or coincident points) yields zero.
func pointDensity(points []models.Point) float64 {
	minX, minY, maxX, maxY, ok := boundingBox(points)
	if !ok {
		return 0
	}
	area := (maxX - minX) * (maxY - minY)
	if area <= 0 {
		return 0
	}
	return float64(len(points)) / area
}

// pooledDistribution buckets the skewness of all numeric attribute values
// pooled across every layer.
func pooledDistribution(layers []models.LayerResult) models.DistributionShape {
	var pooled []float64
	for _, layer := range layers {
		for _, field := range UsableNumericFields(layer) {
			pooled = append(pooled, numericValues(layer, field)...)
		}
	}
	if len(pooled) < 3 {
		return models.DistributionUnknown
	}
	skew, _ := standardizedMoments(pooled)
	return shapeFromSkewness(skew)
}

func shapeFromSkewness(skew float64) models.DistributionShape {
	switch {
	case math.Abs(skew) < 0.5:
		return models.DistributionNormal
	case skew > 0:
		return models.DistributionRightSkewed
	case skew < 0:
		return models.DistributionLeftSkewed
	default:
		return models.DistributionUnknown
	}
}

func boundingBox(points []models.Point) (minX, minY, maxX, maxY float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, pt := range points[1:] {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	return minX, minY, maxX, maxY, true
}
