package physique_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzimmer/physique"
)

func TestAnalysisPrompt(t *testing.T) {
	a := assert.New(t)
	d := newDefaults(t)
	profile, prefs := d.Profile, d.Preferences
	profile.Height = 182.5

	prompt, err := physique.AnalysisPrompt(&profile, &prefs)
	require.NoError(t, err)
	a.Contains(prompt, "expert fitness coach and physique analyst")
	a.Contains(prompt, "- Sex: Male")
	a.Contains(prompt, "- Age: 25")
	a.Contains(prompt, "- Height: 182.5 cm")
	a.Contains(prompt, "- Weight: 75 kg")
	a.Contains(prompt, "- Activity Level: Moderately Active")
	a.Contains(prompt, "- Goal: muscle gain")
	a.Contains(prompt, "- Available Equipment: gym")
	a.Contains(prompt, "- Time per workout: 45-60 min")
	a.Contains(prompt, "chest, abs, arms, back, and legs")
	a.Contains(prompt, "pose analysis")

	prefs.EnablePose = false
	prompt, err = physique.AnalysisPrompt(&profile, &prefs)
	require.NoError(t, err)
	a.NotContains(prompt, "pose analysis")
	a.Contains(prompt, "Do not include any markdown formatting")
}

func TestPlansPrompt(t *testing.T) {
	a := assert.New(t)
	d := newDefaults(t)
	prefs := d.Preferences
	prefs.Goal = physique.GoalRecomposition

	prompt, err := physique.PlansPrompt(newReport(), &d.Profile, &prefs)
	require.NoError(t, err)
	a.Contains(prompt, "expert fitness coach and nutritionist")
	a.Contains(prompt, "\"postureNotes\": \"slight anterior pelvic tilt\"")
	a.Contains(prompt, "\n  \"muscleAnalysis\": {")
	a.Contains(prompt, "- Goal: recomposition")
	a.Contains(prompt, "7-day schedule, including rest days")
	a.Contains(prompt, "4-5 sample meals")
}
