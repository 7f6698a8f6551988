package readability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formState stands in for the two live input fields of a form.
type formState struct {
	consent   string
	studyInfo string
	reads     int
}

func (f *formState) study() string {
	f.reads++
	return f.studyInfo
}

func TestTrigger_ChangedUsesCurrentValues(t *testing.T) {
	var shown []Feedback
	trigger := NewTrigger(nil, TriggerConfig{})
	trigger.Attach(DisplayFunc(func(fb Feedback) { shown = append(shown, fb) }))

	form := &formState{studyInfo: "It ran fast."}

	form.consent = "The cat sat."
	first := trigger.Changed(form.consent, form.study())

	// Study info changes between two consent edits; the second recomputation
	// must see the new value.
	form.studyInfo = "The committee will evaluate participant eligibility."
	form.consent = "The dog sat."
	second := trigger.Changed(form.consent, form.study())

	assert.Equal(t, 2, form.reads)
	require.Len(t, shown, 2)
	assert.Equal(t, first, shown[0])
	assert.Equal(t, second, shown[1])

	want := trigger.Evaluate(Combine("The dog sat.", "The committee will evaluate participant eligibility."))
	assert.Equal(t, want, second)
	assert.NotEqual(t, first.Stats, second.Stats)
}

func TestTrigger_ChangedMatchesCombinedText(t *testing.T) {
	trigger := NewTrigger(NewScorer(), TriggerConfig{})

	fb := trigger.Changed("The cat sat.", "It ran fast.")
	require.True(t, fb.Available)
	assert.InDelta(t, -2.62, fb.Grade, 1e-9)
	assert.Equal(t, BandKindergarten, fb.Label)
	assert.Equal(t, DefaultLowColor, fb.Color)
	assert.Equal(t, 2, fb.Stats.Sentences)
	assert.Equal(t, 6, fb.Stats.Words)
}

func TestTrigger_ColorThreshold(t *testing.T) {
	trigger := NewTrigger(nil, TriggerConfig{HighColor: "red", LowColor: "green"})

	high := trigger.Changed("Participants will complete a questionnaire.", "")
	require.True(t, high.Available)
	assert.InDelta(t, 12.32, high.Grade, 1e-9)
	assert.Equal(t, "College", high.Label)
	assert.Equal(t, "red", high.Color)

	low := trigger.Changed("We will ask you about your sleep.", "Each visit takes about an hour.")
	require.True(t, low.Available)
	assert.Equal(t, "2-3 grade", low.Label)
	assert.Equal(t, "green", low.Color)
}

func TestTrigger_CustomThreshold(t *testing.T) {
	trigger := NewTrigger(nil, TriggerConfig{Threshold: 2})
	assert.Equal(t, 2.0, trigger.Threshold())

	fb := trigger.Changed("We will ask you about your sleep.", "Each visit takes about an hour.")
	assert.Equal(t, DefaultHighColor, fb.Color)
}

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		wantErr   bool
	}{
		{name: "default", threshold: DefaultThreshold},
		{name: "fractional", threshold: 8.5},
		{name: "zero", threshold: 0, wantErr: true},
		{name: "negative", threshold: -3, wantErr: true},
		{name: "nan", threshold: math.NaN(), wantErr: true},
		{name: "infinite", threshold: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreshold(tt.threshold)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidThreshold)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTrigger_InsufficientText(t *testing.T) {
	var shown []Feedback
	trigger := NewTrigger(nil, TriggerConfig{})
	trigger.Attach(DisplayFunc(func(fb Feedback) { shown = append(shown, fb) }))

	fb := trigger.Changed("", "")
	assert.False(t, fb.Available)
	assert.Equal(t, BandUnavailable, fb.Label)
	assert.Zero(t, fb.Grade)
	assert.Equal(t, DefaultLowColor, fb.Color)
	require.Len(t, shown, 1)

	trigger.Attach(nil)
	trigger.Changed("The cat sat.", "")
	assert.Len(t, shown, 1)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, "a b", Combine("a", "b"))
	assert.Equal(t, " ", Combine("", ""))
}
