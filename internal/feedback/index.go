// Package feedback keeps the query-keyed history of user satisfaction and
// uses it to nudge raw visualization scores for similar future queries.
package feedback

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

const (
	// defaultSimilarityThreshold is the minimum Jaccard word overlap for
	// one query's feedback to apply to another.
	defaultSimilarityThreshold = 0.7
	// defaultLayerCountWindow admits feedback recorded within this many
	// layers of the current request.
	defaultLayerCountWindow = 2
	// maxFeedbackWeight bounds feedback influence regardless of history.
	maxFeedbackWeight = 0.3
	// weightPerEntry is the influence each matching entry contributes.
	weightPerEntry = 0.1
	// ratingScale is the feedback score ceiling (entries are rated 0-5).
	ratingScale = 5.0
)

// Index retrieves feedback for the same or lexically similar past queries
// and blends it into raw scores.
type Index struct {
	store               Store
	logger              *slog.Logger
	similarityThreshold float64
	layerCountWindow    int
}

// Option adjusts index construction.
type Option func(*Index)

// WithSimilarityThreshold overrides the Jaccard cut-off.
func WithSimilarityThreshold(threshold float64) Option {
	return func(i *Index) { i.similarityThreshold = threshold }
}

// WithLayerCountWindow overrides the layer-count admission window.
func WithLayerCountWindow(window int) Option {
	return func(i *Index) { i.layerCountWindow = window }
}

// NewIndex constructs an Index over the given store. A nil store gets an
// LRU-backed default.
func NewIndex(store Store, logger *slog.Logger, opts ...Option) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store, _ = NewLRUStore(0)
	}
	idx := &Index{
		store:               store,
		logger:              logger,
		similarityThreshold: defaultSimilarityThreshold,
		layerCountWindow:    defaultLayerCountWindow,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Add appends a feedback entry under its normalized query key.
func (i *Index) Add(entry models.FeedbackEntry) {
	key := NormalizeQuery(entry.Context.Query)
	i.store.Append(key, entry)
	i.logger.Debug("feedback recorded",
		slog.String("query", key),
		slog.String("visualization", string(entry.VisualizationType)),
		slog.Float64("score", entry.Score))
}

// Relevant returns feedback for the exact query plus any query whose word
// overlap clears the similarity threshold, filtered to entries recorded
// with a comparable layer count and sorted most recent first.
func (i *Index) Relevant(query string, layerCount int) []models.FeedbackEntry {
	key := NormalizeQuery(query)

	candidates := append([]models.FeedbackEntry(nil), i.store.Entries(key)...)
	for _, other := range i.store.Keys() {
		if other == key {
			continue
		}
		if jaccard(key, other) > i.similarityThreshold {
			candidates = append(candidates, i.store.Entries(other)...)
		}
	}

	relevant := candidates[:0]
	for _, entry := range candidates {
		if absInt(entry.Context.LayerCount-layerCount) <= i.layerCountWindow {
			relevant = append(relevant, entry)
		}
	}

	sort.SliceStable(relevant, func(a, b int) bool {
		return relevant[a].Context.Timestamp.After(relevant[b].Context.Timestamp)
	})
	return relevant
}

// AdjustScore blends historical satisfaction into a raw score. With no
// matching feedback for the type the score passes through unchanged; with
// history, influence grows with the match count but never exceeds
// maxFeedbackWeight.
func (i *Index) AdjustScore(score float64, viz models.VisualizationType, query string, layerCount int) float64 {
	var sum float64
	matches := 0
	for _, entry := range i.Relevant(query, layerCount) {
		if entry.VisualizationType == viz {
			sum += entry.Score
			matches++
		}
	}
	if matches == 0 {
		return score
	}

	avg := sum / float64(matches)
	weight := math.Min(maxFeedbackWeight, weightPerEntry*float64(matches))
	return utils.Clamp01(score*(1-weight) + (avg/ratingScale)*weight)
}

// NormalizeQuery lower-cases, trims, and collapses whitespace so lexical
// variants of the same query share a key.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// jaccard computes word-set overlap between two normalized queries.
func jaccard(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1
	}
	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
