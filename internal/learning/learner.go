// Package learning maintains per-user visualization preferences updated
// online from implicit interaction signals and optional explicit ratings.
// State lives only in process memory; a restart forgets everything.
package learning

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/geoinsight/vizrec/internal/models"
	"github.com/geoinsight/vizrec/internal/utils"
)

const (
	// DefaultLearningRate scales every preference update.
	DefaultLearningRate = 0.1
	// DefaultTimeDecayFactor down-weights updates per day since the
	// preference was last used.
	DefaultTimeDecayFactor = 0.95
	// DefaultConfidenceThreshold gates preference exposure to callers.
	DefaultConfidenceThreshold = 0.7
	// DefaultEvidenceLimit bounds the retained evidence per preference.
	DefaultEvidenceLimit = 10

	// initialPreferenceScore is the neutral starting estimate.
	initialPreferenceScore = 0.5
	// successScoreFloor is the signal level counted as a success.
	successScoreFloor = 0.5
)

// Config tunes the learner; zero values fall back to the defaults.
type Config struct {
	LearningRate        float64
	TimeDecayFactor     float64
	ConfidenceThreshold float64
	EvidenceLimit       int
}

// Learner owns every user's profile and interaction tracker. All methods
// are safe for concurrent use.
type Learner struct {
	mu       sync.Mutex
	cfg      Config
	profiles map[string]*models.UserProfile
	trackers map[string]*models.InteractionMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewLearner constructs a Learner.
func NewLearner(cfg Config, logger *slog.Logger) *Learner {
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultLearningRate
	}
	if cfg.TimeDecayFactor <= 0 {
		cfg.TimeDecayFactor = DefaultTimeDecayFactor
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.EvidenceLimit <= 0 {
		cfg.EvidenceLimit = DefaultEvidenceLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Learner{
		cfg:      cfg,
		profiles: make(map[string]*models.UserProfile),
		trackers: make(map[string]*models.InteractionMetrics),
		logger:   logger,
		now:      time.Now,
	}
}

// StartTracking resets the user's interaction accumulator for a new
// recommendation session.
func (l *Learner) StartTracking(userID string) {
	if userID == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trackers[userID] = &models.InteractionMetrics{}
}

// TrackedUsers reports how many users currently have an open session.
func (l *Learner) TrackedUsers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.trackers)
}

// Track records one user action of the given kind.
func (l *Learner) Track(userID string, kind models.InteractionKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tracker, ok := l.trackers[userID]
	if !ok {
		return
	}
	switch kind {
	case models.InteractionExport:
		tracker.Exports++
	case models.InteractionModification:
		tracker.Modifications++
	default:
		tracker.Interactions++
	}
}

// AddTimeSpent accumulates dwell time in seconds.
func (l *Learner) AddTimeSpent(userID string, seconds float64) {
	if seconds <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if tracker, ok := l.trackers[userID]; ok {
		tracker.TimeSpent += seconds
	}
}

// RecordFeedback consumes the user's accumulated interaction metrics,
// derives the learning signal (blended with the explicit rating when one is
// given), updates the preference for the visualization type, and resets the
// tracker. A user with no tracker is a silent no-op.
func (l *Learner) RecordFeedback(userID string, viz models.VisualizationType, context string, explicitRating *float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tracker, ok := l.trackers[userID]
	if !ok {
		l.logger.Debug("feedback without interaction tracker dropped", slog.String("user", userID))
		return
	}

	now := l.now()
	signal := buildSignal(*tracker, explicitRating, now)
	l.trackers[userID] = &models.InteractionMetrics{}

	profile, ok := l.profiles[userID]
	if !ok {
		profile = &models.UserProfile{
			UserID:      userID,
			Preferences: make(map[models.VisualizationType]*models.VisualizationPreference),
		}
		l.profiles[userID] = profile
	}

	pref, ok := profile.Preferences[viz]
	if !ok {
		pref = &models.VisualizationPreference{Score: initialPreferenceScore}
		profile.Preferences[viz] = pref
	}

	l.applySignal(pref, signal, context, now)

	l.logger.Debug("preference updated",
		slog.String("user", userID),
		slog.String("visualization", string(viz)),
		slog.Float64("score", pref.Score),
		slog.Float64("confidence", pref.Confidence))
}

// applySignal runs the time-decayed exponential moving average update:
//
//	timeWeight    = decay^(daysSinceLastUse)
//	score        += rate * signalConfidence * timeWeight * (signal - score)
//	confidence    = min(1, confidence + signalConfidence * rate * timeWeight)
func (l *Learner) applySignal(pref *models.VisualizationPreference, signal models.LearningSignal, context string, now time.Time) {
	age := utils.AgeInDays(pref.LastUsed, now)
	timeWeight := 1.0
	if age > 0 {
		timeWeight = math.Pow(l.cfg.TimeDecayFactor, age)
	}

	pref.Score = utils.Clamp01(pref.Score + l.cfg.LearningRate*signal.Confidence*timeWeight*(signal.Score-pref.Score))
	pref.Confidence = utils.Clamp01(pref.Confidence + signal.Confidence*l.cfg.LearningRate*timeWeight)
	pref.LastUsed = now

	pref.FeedbackCount++
	if signal.Score >= successScoreFloor {
		pref.SuccessCount++
	}
	pref.SuccessRate = float64(pref.SuccessCount) / float64(pref.FeedbackCount)

	pref.SupportingEvidence = append(pref.SupportingEvidence, models.EvidenceRecord{
		Context:   context,
		Signal:    signal.Score,
		Timestamp: signal.Timestamp,
	})
	if excess := len(pref.SupportingEvidence) - l.cfg.EvidenceLimit; excess > 0 {
		pref.SupportingEvidence = append(pref.SupportingEvidence[:0:0], pref.SupportingEvidence[excess:]...)
	}
}

// Preferences returns the user's learned scores for every visualization
// type whose confidence clears the threshold.
func (l *Learner) Preferences(userID string) map[models.VisualizationType]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, ok := l.profiles[userID]
	if !ok {
		return nil
	}
	prefs := make(map[models.VisualizationType]float64)
	for viz, pref := range profile.Preferences {
		if pref.Confidence >= l.cfg.ConfidenceThreshold {
			prefs[viz] = pref.Score
		}
	}
	return prefs
}

// Profile returns a deep copy of the user's profile for inspection.
func (l *Learner) Profile(userID string) (models.UserProfile, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, ok := l.profiles[userID]
	if !ok {
		return models.UserProfile{}, false
	}
	copied := models.UserProfile{
		UserID:      profile.UserID,
		Preferences: make(map[models.VisualizationType]*models.VisualizationPreference, len(profile.Preferences)),
	}
	for viz, pref := range profile.Preferences {
		p := *pref
		p.SupportingEvidence = append([]models.EvidenceRecord(nil), pref.SupportingEvidence...)
		copied.Preferences[viz] = &p
	}
	return copied, true
}
