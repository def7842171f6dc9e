package models

// VisualizationType enumerates the seven candidate strategies.
type VisualizationType string

const (
	VizSingle       VisualizationType = "single"
	VizPoint        VisualizationType = "point"
	VizCorrelation  VisualizationType = "correlation"
	VizThreeD       VisualizationType = "3d"
	VizTopN         VisualizationType = "topN"
	VizHotspot      VisualizationType = "hotspot"
	VizProportional VisualizationType = "proportional"
)

// AllVisualizationTypes lists every strategy in scoring order.
var AllVisualizationTypes = []VisualizationType{
	VizSingle,
	VizPoint,
	VizCorrelation,
	VizThreeD,
	VizTopN,
	VizHotspot,
	VizProportional,
}

// VisualizationScore is one candidate strategy's fitness for the current
// request. Score and Confidence are clamped to [0,1] before they leave the
// engine; Reasoning is the ordered trail of matched signals so the UI can
// justify the ranking.
type VisualizationScore struct {
	Type       VisualizationType `json:"type"`
	Score      float64           `json:"score"`
	Confidence float64           `json:"confidence"`
	Reasoning  []string          `json:"reasoning"`
}
