// Package analyzer derives statistical and spatial characteristics from
// queried map layers. It never fails: layers that cannot contribute to a
// statistic are omitted from it rather than zeroed or reported as errors.
package analyzer

import (
	"log/slog"

	"github.com/geoinsight/vizrec/internal/models"
)

// Analyzer computes DataCharacteristics for a set of layers.
type Analyzer struct {
	logger *slog.Logger
	// sampleCap bounds the pairwise-distance sample used by the clustering
	// estimate. Taking the first N points biases large layers toward their
	// storage order; acceptable for an interactive heuristic.
	sampleCap int
}

// New constructs an Analyzer.
func New(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, sampleCap: clusterSampleCap}
}

// Analyze computes characteristics fresh for every call; nothing is cached
// across calls.
func (a *Analyzer) Analyze(layers []models.LayerResult) models.DataCharacteristics {
	chars := models.DataCharacteristics{
		Attributes: models.AttributePatterns{
			Distributions: make(map[string]models.FieldDistribution),
		},
	}

	chars.Spatial = a.spatialPatterns(layers)
	a.attributePatterns(layers, &chars.Attributes)
	chars.Relationships = a.relationships(layers)

	return chars
}
