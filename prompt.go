package physique

import (
	"encoding/json"
	"strings"
	"text/template"
)

const personal = `User Personal Details:
- Sex: {{.Profile.Sex}}
- Age: {{.Profile.Age}}
- Height: {{.Profile.Height}} cm
- Weight: {{.Profile.Weight}} kg
- Activity Level: {{.Profile.ActivityLevel}}`

var analysisPrompt = template.Must(template.New("analysis").Parse(
	`You are an expert fitness coach and physique analyst. Analyze the following images of a person's physique.

` + personal + `

User Preferences:
- Goal: {{.Preferences.Goal}}
- Experience Level: {{.Preferences.Experience}}
- Available Equipment: {{.Preferences.Equipment}}
- Time per workout: {{.Preferences.Time}}

Instructions:
{{if .Preferences.EnablePose}}- Please pay special attention to posture and alignment as the user has requested pose analysis.{{end}}

Based on the images and their preferences, provide a detailed analysis. Evaluate their muscle development, symmetry, and potential areas for improvement for the following groups: chest, abs, arms, back, and legs. Also, provide an overall physique score and a summary, along with any notes on their posture.

Return the analysis as a JSON object that conforms to the provided schema. Do not include any markdown formatting (e.g., ` + "```json" + `).`))

var plansPrompt = template.Must(template.New("plans").Parse(
	`You are an expert fitness coach and nutritionist. Based on the following physique analysis and user preferences, create a personalized weekly workout plan and a daily meal guide.

Physique Analysis:
{{.Analysis}}

` + personal + `
- Goal: {{.Preferences.Goal}}

User Preferences:
- Experience Level: {{.Preferences.Experience}}
- Available Equipment: {{.Preferences.Equipment}}
- Time per workout: {{.Preferences.Time}}

The workout plan should be a 7-day schedule, including rest days. It should target the user's weak points identified in the analysis while maintaining their strengths. Each workout day should include a warm-up, specific exercises (with sets, reps, and rest periods), a cooldown, and a practical tip for progressive overload.

The meal guide should include a daily calorie target, macronutrient breakdown (protein, carbs, fats), 4-5 sample meals for one day with ingredients, and some simple meal swap ideas for variety. The plan should be aligned with the user's primary goal.

Return the plans as a single JSON object that conforms to the provided schema. Do not include any markdown formatting (e.g., ` + "```json" + `).`))

// AnalysisPrompt builds the instructions sent with the physique photos
func AnalysisPrompt(profile *Profile, prefs *Preferences) (string, error) {
	var sb strings.Builder
	err := analysisPrompt.Execute(&sb, map[string]any{
		"Profile":     profile,
		"Preferences": prefs,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// PlansPrompt builds the instructions for plan generation conditioned on report
func PlansPrompt(report *Report, profile *Profile, prefs *Preferences) (string, error) {
	analysis, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	err = plansPrompt.Execute(&sb, map[string]any{
		"Analysis":    string(analysis),
		"Profile":     profile,
		"Preferences": prefs,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
