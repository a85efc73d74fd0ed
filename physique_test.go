package physique_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"github.com/bzimmer/physique"
)

// pngHeader is enough for content sniffing to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type call struct {
	schema *genai.Schema
	parts  []genai.Part
}

type fakeGenerator struct {
	mu        sync.Mutex
	calls     []call
	responses []string
	errs      []error
}

func (f *fakeGenerator) Generate(_ context.Context, schema *genai.Schema, parts ...genai.Part) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.calls)
	f.calls = append(f.calls, call{schema: schema, parts: parts})
	if n < len(f.errs) && f.errs[n] != nil {
		return "", f.errs[n]
	}
	if n >= len(f.responses) {
		return "", fmt.Errorf("unexpected call %d", n)
	}
	return f.responses[n], nil
}

func detail(score float64) physique.MuscleDetail {
	return physique.MuscleDetail{
		Score:         score,
		Strengths:     "solid base",
		Weaknesses:    "lagging detail",
		SymmetryNotes: "balanced",
	}
}

func newReport() *physique.Report {
	return &physique.Report{
		MuscleAnalysis: physique.MuscleAnalysis{
			Chest: detail(7),
			Abs:   detail(5),
			Arms:  detail(8),
			Back:  detail(6),
			Legs:  detail(4),
		},
		PhysiqueRating: physique.PhysiqueRating{OverallScore: 6.5, Summary: "athletic"},
		PostureNotes:   "slight anterior pelvic tilt",
	}
}

func newPlans() *physique.Plans {
	return &physique.Plans{
		WorkoutPlan: physique.WorkoutPlan{Plan: []physique.DailyWorkout{
			{
				DayOfWeek:    "Monday",
				TargetMuscle: "Legs",
				Warmup:       "5 min bike",
				Exercises: []physique.Exercise{
					{Name: "Squat", Sets: "4", Reps: "8", Rest: "120s"},
				},
				Cooldown:               "stretch",
				ProgressiveOverloadTip: "add 2.5kg weekly",
			},
			{
				DayOfWeek:              "Tuesday",
				TargetMuscle:           "Rest",
				Warmup:                 "",
				Exercises:              []physique.Exercise{},
				Cooldown:               "",
				ProgressiveOverloadTip: "",
			},
		}},
		MealGuide: physique.MealGuide{
			DailyCalorieTarget: 2600,
			Macros:             physique.Macros{Protein: "180g", Carbs: "300g", Fats: "70g"},
			Meals: []physique.Meal{
				{Name: "Oats", Ingredients: []string{"oats", "milk"}, Notes: "pre workout"},
			},
			MealSwaps: []string{"rice for potatoes"},
		},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func newDefaults(t *testing.T) *physique.Defaults {
	t.Helper()
	d, err := physique.EmbeddedDefaults()
	require.NoError(t, err)
	return d
}

func newAccounts(t *testing.T) *physique.Accounts {
	t.Helper()
	return physique.NewAccounts(physique.NewFileStore(t.TempDir()), newDefaults(t))
}

func signup(t *testing.T, accounts *physique.Accounts, email string) *physique.Account {
	t.Helper()
	acct, err := accounts.Signup(context.Background(), &physique.SignupRequest{
		FullName: "Jane Q Lifter",
		Username: "jane",
		Email:    email,
		Age:      31,
		Sex:      physique.SexFemale,
		Goal:     physique.GoalFatLoss,
		Password: "hunter2",
	})
	require.NoError(t, err)
	return acct
}

func pngImage(name string) *physique.Image {
	return &physique.Image{Name: name, MIMEType: "image/png", Data: pngHeader}
}

func textOf(parts []genai.Part) string {
	var sb strings.Builder
	for _, p := range parts {
		if s, ok := p.(genai.Text); ok {
			sb.WriteString(string(s))
		}
	}
	return sb.String()
}
