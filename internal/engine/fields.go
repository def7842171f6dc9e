package engine

import (
	"errors"
	"fmt"

	"github.com/geoinsight/vizrec/internal/analyzer"
	"github.com/geoinsight/vizrec/internal/models"
)

// Configuration errors raised when a field-driven visualization (ranking,
// proportional symbols) cannot resolve a numeric field. They surface to the
// caller, who is expected to skip or fix the layer configuration; they are
// never retried.
var (
	ErrMissingLayerConfig        = errors.New("no field configuration for layer")
	ErrNoNumericFieldsConfigured = errors.New("no usable numeric fields configured")
	ErrFieldsNotInAttributes     = errors.New("configured numeric fields not present in feature attributes")
)

// RankedNumericField resolves the numeric field a field-driven strategy
// should render for the layer. Unlike the analyzer, which degrades to
// omission, this helper fails loudly: it runs at the point of decision, not
// of description.
func RankedNumericField(layer models.LayerResult) (string, error) {
	if layer.NumericFields == nil {
		return "", fmt.Errorf("layer %s: %w", layer.ID, ErrMissingLayerConfig)
	}

	fields := analyzer.UsableNumericFields(layer)
	if len(fields) == 0 {
		return "", fmt.Errorf("layer %s: %w", layer.ID, ErrNoNumericFieldsConfigured)
	}

	sample := sampleAttributes(layer)
	for _, field := range fields {
		if _, ok := analyzer.NumericAttribute(sample, field); ok {
			return field, nil
		}
	}
	return "", fmt.Errorf("layer %s: %w", layer.ID, ErrFieldsNotInAttributes)
}

// sampleAttributes returns the first populated attribute map in the layer.
func sampleAttributes(layer models.LayerResult) map[string]any {
	for _, feature := range layer.Features {
		if len(feature.Attributes) > 0 {
			return feature.Attributes
		}
	}
	return nil
}
