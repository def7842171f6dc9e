package models

// DistributionShape buckets the pooled attribute skewness.
type DistributionShape string

const (
	DistributionNormal      DistributionShape = "normal"
	DistributionLeftSkewed  DistributionShape = "left-skewed"
	DistributionRightSkewed DistributionShape = "right-skewed"
	DistributionUnknown     DistributionShape = "unknown"
)

// SpatialPatterns summarises the spatial shape of the analysed layers.
// Clustering is in [0,1]; Density is points per bounding-box area unit.
type SpatialPatterns struct {
	Clustering   float64           `json:"clustering"`
	Density      float64           `json:"density"`
	Distribution DistributionShape `json:"distribution"`
}

// FieldCorrelation is a Pearson correlation between two numeric fields of
// the same layer. Strength is in [-1,1].
type FieldCorrelation struct {
	LayerID  string  `json:"layer_id"`
	Field1   string  `json:"field1"`
	Field2   string  `json:"field2"`
	Strength float64 `json:"strength"`
}

// FieldDistribution describes the distribution of a single numeric field
// using the classical population moments.
type FieldDistribution struct {
	Shape    DistributionShape `json:"shape"`
	Skewness float64           `json:"skewness"`
	Kurtosis float64           `json:"kurtosis"`
}

// AttributePatterns groups the per-field statistics across all layers.
// Distributions is keyed by "layerID.fieldName".
type AttributePatterns struct {
	Correlations  []FieldCorrelation           `json:"correlations"`
	Distributions map[string]FieldDistribution `json:"distributions"`
}

// RelationshipKind distinguishes how two layers relate.
type RelationshipKind string

const (
	RelationshipSpatial     RelationshipKind = "spatial"
	RelationshipStatistical RelationshipKind = "statistical"
)

// LayerRelationship records an estimated association between two layers.
type LayerRelationship struct {
	Kind     RelationshipKind `json:"kind"`
	LayerA   string           `json:"layer_a"`
	LayerB   string           `json:"layer_b"`
	Strength float64          `json:"strength"`
	Detail   string           `json:"detail,omitempty"`
}

// Relationships holds the pairwise layer associations that could be computed.
// Pairs that fail to produce an estimate are omitted rather than reported.
type Relationships struct {
	Spatial     []LayerRelationship `json:"spatial"`
	Statistical []LayerRelationship `json:"statistical"`
}

// DataCharacteristics is the analyzer output consumed by the scorer. It is
// recomputed on every recommendation call and never cached across calls.
type DataCharacteristics struct {
	Spatial       SpatialPatterns   `json:"spatial"`
	Attributes    AttributePatterns `json:"attributes"`
	Relationships Relationships     `json:"relationships"`
}
