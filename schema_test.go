package physique_test

import (
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzimmer/physique"
)

func TestAnalysisSchema(t *testing.T) {
	a := assert.New(t)
	schema := physique.AnalysisSchema()
	a.Equal(genai.TypeObject, schema.Type)
	a.ElementsMatch([]string{"muscleAnalysis", "physiqueRating", "postureNotes"}, schema.Required)

	muscles := schema.Properties["muscleAnalysis"]
	a.ElementsMatch([]string{"chest", "abs", "arms", "back", "legs"}, muscles.Required)
	a.Len(muscles.Properties, 5)
	for name, group := range muscles.Properties {
		a.ElementsMatch([]string{"score", "strengths", "weaknesses", "symmetryNotes"}, group.Required, name)
		a.Equal(genai.TypeNumber, group.Properties["score"].Type, name)
	}
}

func TestPlansSchema(t *testing.T) {
	a := assert.New(t)
	schema := physique.PlansSchema()
	a.ElementsMatch([]string{"workoutPlan", "mealGuide"}, schema.Required)

	plan := schema.Properties["workoutPlan"].Properties["plan"]
	a.Equal(genai.TypeArray, plan.Type)
	a.Contains(plan.Items.Required, "progressiveOverloadTip")
	a.Equal(genai.TypeArray, plan.Items.Properties["exercises"].Type)

	meal := schema.Properties["mealGuide"]
	a.ElementsMatch([]string{"dailyCalorieTarget", "macros", "meals", "mealSwaps"}, meal.Required)
	a.Equal(genai.TypeString, meal.Properties["mealSwaps"].Items.Type)
}

func TestConform(t *testing.T) {
	report := newReport()
	tests := []struct {
		name   string
		schema *genai.Schema
		raw    string
		path   string
	}{
		{
			name:   "valid report",
			schema: physique.AnalysisSchema(),
			raw:    mustJSON(t, report),
		},
		{
			name:   "valid plans",
			schema: physique.PlansSchema(),
			raw:    mustJSON(t, newPlans()),
		},
		{
			name:   "missing muscle group",
			schema: physique.AnalysisSchema(),
			raw:    `{"muscleAnalysis":{"chest":{},"abs":{},"arms":{},"back":{}},"physiqueRating":{"overallScore":5,"summary":""},"postureNotes":""}`,
			path:   "$.muscleAnalysis",
		},
		{
			name:   "score is a string",
			schema: physique.AnalysisSchema(),
			raw: `{"muscleAnalysis":{
				"chest":{"score":"7","strengths":"","weaknesses":"","symmetryNotes":""},
				"abs":{"score":7,"strengths":"","weaknesses":"","symmetryNotes":""},
				"arms":{"score":7,"strengths":"","weaknesses":"","symmetryNotes":""},
				"back":{"score":7,"strengths":"","weaknesses":"","symmetryNotes":""},
				"legs":{"score":7,"strengths":"","weaknesses":"","symmetryNotes":""}},
				"physiqueRating":{"overallScore":5,"summary":""},"postureNotes":""}`,
			path: "$.muscleAnalysis.chest.score",
		},
		{
			name:   "array element",
			schema: physique.PlansSchema(),
			raw:    `{"workoutPlan":{"plan":[{"dayOfWeek":"Monday"}]},"mealGuide":{}}`,
			path:   "$.mealGuide",
		},
		{
			name:   "not json",
			schema: physique.PlansSchema(),
			raw:    `plans`,
			path:   "$",
		},
		{
			name:   "null field",
			schema: physique.AnalysisSchema(),
			raw:    `{"muscleAnalysis":null,"physiqueRating":{"overallScore":5,"summary":""},"postureNotes":""}`,
			path:   "$.muscleAnalysis",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := physique.Conform(tt.schema, []byte(tt.raw))
			if tt.path == "" {
				require.NoError(t, err)
				return
			}
			var se *physique.ShapeError
			require.True(t, errors.As(err, &se), "expected a shape error, got %v", err)
			assert.Equal(t, tt.path, se.Path)
		})
	}
}

func TestConformArrayItems(t *testing.T) {
	raw := `{"workoutPlan":{"plan":[{"dayOfWeek":"Monday","targetMuscle":"Legs","warmup":"","exercises":[{"name":"Squat"}],"cooldown":"","progressiveOverloadTip":""}]},
		"mealGuide":{"dailyCalorieTarget":2000,"macros":{"protein":"","carbs":"","fats":""},"meals":[],"mealSwaps":[]}}`
	err := physique.Conform(physique.PlansSchema(), []byte(raw))
	var se *physique.ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "$.workoutPlan.plan[0].exercises[0]", se.Path)
	assert.Contains(t, se.Reason, "missing required field")
}
