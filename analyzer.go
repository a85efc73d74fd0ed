package physique

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RemoteError reports a failed request to the generative model
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Analyzer runs the physique analysis and plan generation for a user
type Analyzer struct {
	generator Generator
	accounts  *Accounts
	now       func() time.Time
}

func NewAnalyzer(generator Generator, accounts *Accounts) *Analyzer {
	return &Analyzer{generator: generator, accounts: accounts, now: time.Now}
}

// Analyze sends the photos and the user details for a physique analysis
func (a *Analyzer) Analyze(ctx context.Context, images []*Image, prefs *Preferences, profile *Profile) (*Report, error) {
	prompt, err := AnalysisPrompt(profile, prefs)
	if err != nil {
		return nil, err
	}
	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, img.part())
	}
	parts = append(parts, genai.Text(prompt))

	schema := AnalysisSchema()
	raw, err := a.generator.Generate(ctx, schema, parts...)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := decode(schema, raw, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Plans generates a workout plan and meal guide conditioned on report
func (a *Analyzer) Plans(ctx context.Context, report *Report, prefs *Preferences, profile *Profile) (*Plans, error) {
	prompt, err := PlansPrompt(report, profile, prefs)
	if err != nil {
		return nil, err
	}
	schema := PlansSchema()
	raw, err := a.generator.Generate(ctx, schema, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	var plans Plans
	if err := decode(schema, raw, &plans); err != nil {
		return nil, err
	}
	return &plans, nil
}

// Run stores the submitted preferences and profile, analyzes the photos,
// generates plans from the analysis and records the result in the history
func (a *Analyzer) Run(ctx context.Context, email string, images []*Image, prefs *Preferences, profile *Profile) (*HistoryItem, error) {
	if err := CheckImages(images); err != nil {
		return nil, err
	}
	if err := a.accounts.SavePreferences(ctx, email, prefs); err != nil {
		return nil, err
	}
	if err := a.accounts.SaveProfile(ctx, email, profile); err != nil {
		return nil, err
	}

	start := a.now()
	report, err := a.Analyze(ctx, images, prefs, profile)
	if err != nil {
		return nil, &RemoteError{Op: "physique analysis", Err: err}
	}
	log.Info().
		Str("email", email).
		Int("images", len(images)).
		Float64("overall", report.PhysiqueRating.OverallScore).
		Dur("elapsed", a.now().Sub(start)).
		Msg("analysis")

	plans, err := a.Plans(ctx, report, prefs, profile)
	if err != nil {
		return nil, &RemoteError{Op: "plan generation", Err: err}
	}
	log.Info().
		Str("email", email).
		Int("days", len(plans.WorkoutPlan.Plan)).
		Int("meals", len(plans.MealGuide.Meals)).
		Dur("elapsed", a.now().Sub(start)).
		Msg("plans")

	item := &HistoryItem{
		ID:          uuid.NewString(),
		Date:        a.now().UTC(),
		Report:      *report,
		WorkoutPlan: plans.WorkoutPlan,
		MealGuide:   plans.MealGuide,
	}
	if err := a.accounts.AppendHistory(ctx, email, item); err != nil {
		return nil, err
	}
	return item, nil
}
