package physique_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzimmer/physique"
)

func TestRun(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	accounts := newAccounts(t)
	acct := signup(t, accounts, "jane@example.com")

	gen := &fakeGenerator{responses: []string{
		"```json\n" + mustJSON(t, newReport()) + "\n```",
		mustJSON(t, newPlans()),
	}}
	analyzer := physique.NewAnalyzer(gen, accounts)

	prefs := *acct.Preferences
	prefs.Experience = physique.Advanced
	profile := *acct.Profile
	profile.Weight = 68

	item, err := analyzer.Run(ctx, acct.Email, []*physique.Image{pngImage("front.png"), pngImage("side.png")}, &prefs, &profile)
	require.NoError(t, err)
	a.NotEmpty(item.ID)
	a.False(item.Date.IsZero())
	a.Equal(8.0, item.Report.MuscleAnalysis.Arms.Score)
	a.Len(item.WorkoutPlan.Plan, 2)
	a.Equal(2600.0, item.MealGuide.DailyCalorieTarget)

	// analysis is sent the photos ahead of the prompt, plans get text only
	require.Len(t, gen.calls, 2)
	first := gen.calls[0]
	require.Len(t, first.parts, 3)
	blob, ok := first.parts[0].(genai.Blob)
	require.True(t, ok)
	a.Equal("image/png", blob.MIMEType)
	a.Contains(textOf(first.parts), "- Weight: 68 kg")
	a.Contains(textOf(first.parts), "- Experience Level: advanced")
	a.Contains(first.schema.Properties, "muscleAnalysis")

	second := gen.calls[1]
	require.Len(t, second.parts, 1)
	a.Contains(textOf(second.parts), "slight anterior pelvic tilt")
	a.Contains(second.schema.Properties, "workoutPlan")

	// submitted values are stored
	stored, err := accounts.Preferences(ctx, acct.Email)
	require.NoError(t, err)
	a.Equal(physique.Advanced, stored.Experience)
	storedProfile, err := accounts.Profile(ctx, acct.Email)
	require.NoError(t, err)
	a.Equal(68.0, storedProfile.Weight)

	history, err := accounts.History(ctx, acct.Email)
	require.NoError(t, err)
	require.Len(t, history, 1)
	a.Equal(item.ID, history[0].ID)
}

func TestRunNewestFirst(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts(t)
	acct := signup(t, accounts, "jane@example.com")

	var ids []string
	for i := 0; i < 3; i++ {
		gen := &fakeGenerator{responses: []string{mustJSON(t, newReport()), mustJSON(t, newPlans())}}
		item, err := physique.NewAnalyzer(gen, accounts).Run(ctx, acct.Email, []*physique.Image{pngImage("a.png")}, acct.Preferences, acct.Profile)
		require.NoError(t, err)
		ids = append([]string{item.ID}, ids...)
	}

	history, err := accounts.History(ctx, acct.Email)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := range ids {
		assert.Equal(t, ids[i], history[i].ID)
	}
}

func TestRunFailures(t *testing.T) {
	boom := errors.New("quota exceeded")
	tests := []struct {
		name  string
		gen   func(t *testing.T) *fakeGenerator
		calls int
	}{
		{
			name:  "analysis rejected",
			gen:   func(t *testing.T) *fakeGenerator { return &fakeGenerator{errs: []error{boom}} },
			calls: 1,
		},
		{
			name: "plans rejected",
			gen: func(t *testing.T) *fakeGenerator {
				return &fakeGenerator{responses: []string{mustJSON(t, newReport())}, errs: []error{nil, boom}}
			},
			calls: 2,
		},
		{
			name: "analysis missing a muscle group",
			gen: func(t *testing.T) *fakeGenerator {
				return &fakeGenerator{responses: []string{`{"muscleAnalysis":{"chest":{}},"physiqueRating":{},"postureNotes":""}`}}
			},
			calls: 1,
		},
		{
			name: "plans not json",
			gen: func(t *testing.T) *fakeGenerator {
				return &fakeGenerator{responses: []string{mustJSON(t, newReport()), "Here is your plan!"}}
			},
			calls: 2,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			accounts := newAccounts(t)
			acct := signup(t, accounts, "jane@example.com")
			gen := tt.gen(t)

			_, err := physique.NewAnalyzer(gen, accounts).Run(ctx, acct.Email, []*physique.Image{pngImage("a.png")}, acct.Preferences, acct.Profile)
			var re *physique.RemoteError
			require.True(t, errors.As(err, &re), "expected a remote error, got %v", err)
			assert.Len(t, gen.calls, tt.calls)

			history, err := accounts.History(ctx, acct.Email)
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

func TestRunValidation(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	accounts := newAccounts(t)
	acct := signup(t, accounts, "jane@example.com")
	gen := &fakeGenerator{}
	analyzer := physique.NewAnalyzer(gen, accounts)

	_, err := analyzer.Run(ctx, acct.Email, nil, acct.Preferences, acct.Profile)
	a.ErrorIs(err, physique.ErrNoImages)

	four := []*physique.Image{pngImage("1.png"), pngImage("2.png"), pngImage("3.png"), pngImage("4.png")}
	_, err = analyzer.Run(ctx, acct.Email, four, acct.Preferences, acct.Profile)
	a.ErrorIs(err, physique.ErrTooManyImages)

	gif := &physique.Image{Name: "a.gif", MIMEType: "image/gif", Data: []byte("GIF89a")}
	_, err = analyzer.Run(ctx, acct.Email, []*physique.Image{gif}, acct.Preferences, acct.Profile)
	a.ErrorIs(err, physique.ErrUnsupportedImage)

	prefs := *acct.Preferences
	prefs.Goal = "bulk"
	_, err = analyzer.Run(ctx, acct.Email, []*physique.Image{pngImage("a.png")}, &prefs, acct.Profile)
	var ve *physique.ValidationError
	a.True(errors.As(err, &ve))

	a.Empty(gen.calls)
}
