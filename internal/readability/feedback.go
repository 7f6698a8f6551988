package readability

import (
	"errors"
	"fmt"
	"math"
)

// Defaults for the feedback indicator.
const (
	DefaultThreshold = 12.0
	DefaultHighColor = "#D9534F"
	DefaultLowColor  = "#5CB85C"
)

// Feedback is the result of one recomputation, ready for display.
// Grade is zero when Available is false.
type Feedback struct {
	Available bool    `json:"available"`
	Grade     float64 `json:"grade"`
	Label     string  `json:"label"`
	Color     string  `json:"color"`
	Stats     Stats   `json:"stats"`
}

// Display receives every recomputed Feedback.
type Display interface {
	Show(Feedback)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(Feedback)

// Show calls f(fb).
func (f DisplayFunc) Show(fb Feedback) { f(fb) }

// TriggerConfig configures the feedback indicator.
type TriggerConfig struct {
	Threshold float64
	HighColor string
	LowColor  string
}

// ErrInvalidThreshold is returned for a threshold that is not a positive grade.
var ErrInvalidThreshold = errors.New("readability threshold must be positive")

// ValidateThreshold checks a threshold taken from user input. NewTrigger reads
// zero as unset, so flags must be validated before they reach it.
func ValidateThreshold(threshold float64) error {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Trigger recomputes the combined readability of the consent and study
// information texts whenever either changes.
type Trigger struct {
	scorer  *Scorer
	display Display
	cfg     TriggerConfig
}

// NewTrigger creates a Trigger. A nil scorer uses NewScorer(); empty config
// fields fall back to the defaults.
func NewTrigger(scorer *Scorer, cfg TriggerConfig) *Trigger {
	if scorer == nil {
		scorer = NewScorer()
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.HighColor == "" {
		cfg.HighColor = DefaultHighColor
	}
	if cfg.LowColor == "" {
		cfg.LowColor = DefaultLowColor
	}
	return &Trigger{scorer: scorer, cfg: cfg}
}

// Attach sets the display notified on each change. Passing nil detaches it.
func (t *Trigger) Attach(d Display) {
	t.display = d
}

// Changed scores the current values of both fields and notifies the attached
// display. Both values must be the live ones; nothing is cached between calls.
func (t *Trigger) Changed(consent, studyInfo string) Feedback {
	fb := t.Evaluate(Combine(consent, studyInfo))
	if t.display != nil {
		t.display.Show(fb)
	}
	return fb
}

// Evaluate scores a single text and returns its Feedback without notifying
// the display.
func (t *Trigger) Evaluate(text string) Feedback {
	stats, err := t.scorer.Analyze(text)
	if errors.Is(err, ErrInsufficientText) {
		return Feedback{
			Label: BandUnavailable,
			Color: t.cfg.LowColor,
			Stats: stats,
		}
	}

	fb := Feedback{
		Available: true,
		Grade:     stats.GradeLevel,
		Label:     Band(stats.GradeLevel),
		Color:     t.cfg.LowColor,
		Stats:     stats,
	}
	if stats.GradeLevel >= t.cfg.Threshold {
		fb.Color = t.cfg.HighColor
	}
	return fb
}

// Threshold returns the grade level at which the high color is used.
func (t *Trigger) Threshold() float64 {
	return t.cfg.Threshold
}

// Combine joins the consent and study information texts for scoring.
func Combine(consent, studyInfo string) string {
	return consent + " " + studyInfo
}
