package physique

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/generative-ai-go/genai"
)

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func arrayOf(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

func str(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func number(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: description}
}

func muscleDetailSchema() *genai.Schema {
	return object(
		[]string{"score", "strengths", "weaknesses", "symmetryNotes"},
		map[string]*genai.Schema{
			"score":         number("Score from 1 to 10 for the muscle group."),
			"strengths":     str("Observed strengths for this muscle group."),
			"weaknesses":    str("Observed weaknesses or areas for improvement."),
			"symmetryNotes": str("Notes on muscular symmetry."),
		})
}

// AnalysisSchema describes the physique analysis report
func AnalysisSchema() *genai.Schema {
	return object(
		[]string{"muscleAnalysis", "physiqueRating", "postureNotes"},
		map[string]*genai.Schema{
			"muscleAnalysis": object(
				[]string{"chest", "abs", "arms", "back", "legs"},
				map[string]*genai.Schema{
					"chest": muscleDetailSchema(),
					"abs":   muscleDetailSchema(),
					"arms":  muscleDetailSchema(),
					"back":  muscleDetailSchema(),
					"legs":  muscleDetailSchema(),
				}),
			"physiqueRating": object(
				[]string{"overallScore", "summary"},
				map[string]*genai.Schema{
					"overallScore": number("Overall physique score from 1 to 10."),
					"summary":      str("A concise summary of the overall physique."),
				}),
			"postureNotes": str("Observations and suggestions regarding posture."),
		})
}

func workoutPlanSchema() *genai.Schema {
	exercise := object(
		[]string{"name", "sets", "reps", "rest"},
		map[string]*genai.Schema{
			"name": str(""),
			"sets": str(""),
			"reps": str(""),
			"rest": str(""),
		})
	day := object(
		[]string{"dayOfWeek", "targetMuscle", "warmup", "exercises", "cooldown", "progressiveOverloadTip"},
		map[string]*genai.Schema{
			"dayOfWeek":              str(""),
			"targetMuscle":           str(""),
			"warmup":                 str(""),
			"exercises":              arrayOf(exercise),
			"cooldown":               str(""),
			"progressiveOverloadTip": str(""),
		})
	return object([]string{"plan"}, map[string]*genai.Schema{"plan": arrayOf(day)})
}

func mealGuideSchema() *genai.Schema {
	meal := object(
		[]string{"name", "ingredients", "notes"},
		map[string]*genai.Schema{
			"name":        str(""),
			"ingredients": arrayOf(str("")),
			"notes":       str(""),
		})
	return object(
		[]string{"dailyCalorieTarget", "macros", "meals", "mealSwaps"},
		map[string]*genai.Schema{
			"dailyCalorieTarget": number(""),
			"macros": object(
				[]string{"protein", "carbs", "fats"},
				map[string]*genai.Schema{
					"protein": str(""),
					"carbs":   str(""),
					"fats":    str(""),
				}),
			"meals":     arrayOf(meal),
			"mealSwaps": arrayOf(str("")),
		})
}

// PlansSchema describes the combined workout plan and meal guide
func PlansSchema() *genai.Schema {
	return object(
		[]string{"workoutPlan", "mealGuide"},
		map[string]*genai.Schema{
			"workoutPlan": workoutPlanSchema(),
			"mealGuide":   mealGuideSchema(),
		})
}

// ShapeError reports where a response departs from its schema
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("response does not match schema at %s: %s", e.Path, e.Reason)
}

// Conform checks that the JSON document raw satisfies the type and required
// constraints of schema
func Conform(schema *genai.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &ShapeError{Path: "$", Reason: err.Error()}
	}
	return conform(schema, v, "$")
}

func conform(schema *genai.Schema, v any, path string) error {
	if schema == nil {
		return nil
	}
	if v == nil {
		if schema.Nullable {
			return nil
		}
		return &ShapeError{Path: path, Reason: "null value"}
	}
	switch schema.Type {
	case genai.TypeObject:
		m, ok := v.(map[string]any)
		if !ok {
			return &ShapeError{Path: path, Reason: fmt.Sprintf("expected object, got %T", v)}
		}
		for _, name := range schema.Required {
			if _, ok := m[name]; !ok {
				return &ShapeError{Path: path, Reason: fmt.Sprintf("missing required field %q", name)}
			}
		}
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			val, ok := m[name]
			if !ok {
				continue
			}
			if err := conform(schema.Properties[name], val, path+"."+name); err != nil {
				return err
			}
		}
	case genai.TypeArray:
		items, ok := v.([]any)
		if !ok {
			return &ShapeError{Path: path, Reason: fmt.Sprintf("expected array, got %T", v)}
		}
		for i, item := range items {
			if err := conform(schema.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case genai.TypeString:
		if _, ok := v.(string); !ok {
			return &ShapeError{Path: path, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
	case genai.TypeNumber:
		if _, ok := v.(float64); !ok {
			return &ShapeError{Path: path, Reason: fmt.Sprintf("expected number, got %T", v)}
		}
	case genai.TypeInteger:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return &ShapeError{Path: path, Reason: fmt.Sprintf("expected integer, got %v", v)}
		}
	case genai.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return &ShapeError{Path: path, Reason: fmt.Sprintf("expected boolean, got %T", v)}
		}
	}
	return nil
}
