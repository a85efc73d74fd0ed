package physique

import (
	"fmt"
	"time"
)

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
	SexOther  Sex = "Other"
)

type ActivityLevel string

const (
	Sedentary        ActivityLevel = "Sedentary"
	LightlyActive    ActivityLevel = "Lightly Active"
	ModeratelyActive ActivityLevel = "Moderately Active"
	VeryActive       ActivityLevel = "Very Active"
)

type Goal string

const (
	GoalFatLoss       Goal = "fat loss"
	GoalMuscleGain    Goal = "muscle gain"
	GoalRecomposition Goal = "recomposition"
)

type Experience string

const (
	Beginner     Experience = "beginner"
	Intermediate Experience = "intermediate"
	Advanced     Experience = "advanced"
)

type Equipment string

const (
	EquipmentHome    Equipment = "home"
	EquipmentGym     Equipment = "gym"
	EquipmentMinimal Equipment = "minimal equipment"
)

type Duration string

const (
	Duration20to30 Duration = "20-30 min"
	Duration30to45 Duration = "30-45 min"
	Duration45to60 Duration = "45-60 min"
	Duration60Plus Duration = "60+ min"
)

func oneOf[T comparable](v T, valid ...T) bool {
	for _, x := range valid {
		if v == x {
			return true
		}
	}
	return false
}

// Profile holds the identity and biometric details of a user
type Profile struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	Avatar        string        `json:"avatar,omitempty"`
	Age           int           `json:"age"`
	Sex           Sex           `json:"sex"`
	Height        float64       `json:"height"`
	Weight        float64       `json:"weight"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

func (p *Profile) Validate() error {
	switch {
	case p.Age <= 0:
		return validationError("age must be positive")
	case p.Height <= 0:
		return validationError("height must be positive")
	case p.Weight <= 0:
		return validationError("weight must be positive")
	case !oneOf(p.Sex, SexMale, SexFemale, SexOther):
		return validationError("unknown sex %q", p.Sex)
	case !oneOf(p.ActivityLevel, Sedentary, LightlyActive, ModeratelyActive, VeryActive):
		return validationError("unknown activity level %q", p.ActivityLevel)
	}
	return nil
}

// Preferences configure the analysis and the generated plans
type Preferences struct {
	Goal          Goal       `json:"goal"`
	Experience    Experience `json:"experience"`
	Equipment     Equipment  `json:"equipment"`
	Time          Duration   `json:"time"`
	EnablePose    bool       `json:"enablePose"`
	ShowLandmarks bool       `json:"showLandmarks"`
}

func (p *Preferences) Validate() error {
	switch {
	case !oneOf(p.Goal, GoalFatLoss, GoalMuscleGain, GoalRecomposition):
		return validationError("unknown goal %q", p.Goal)
	case !oneOf(p.Experience, Beginner, Intermediate, Advanced):
		return validationError("unknown experience %q", p.Experience)
	case !oneOf(p.Equipment, EquipmentHome, EquipmentGym, EquipmentMinimal):
		return validationError("unknown equipment %q", p.Equipment)
	case !oneOf(p.Time, Duration20to30, Duration30to45, Duration45to60, Duration60Plus):
		return validationError("unknown time %q", p.Time)
	}
	return nil
}

type MuscleDetail struct {
	Score         float64 `json:"score"`
	Strengths     string  `json:"strengths"`
	Weaknesses    string  `json:"weaknesses"`
	SymmetryNotes string  `json:"symmetryNotes"`
}

type MuscleAnalysis struct {
	Chest MuscleDetail `json:"chest"`
	Abs   MuscleDetail `json:"abs"`
	Arms  MuscleDetail `json:"arms"`
	Back  MuscleDetail `json:"back"`
	Legs  MuscleDetail `json:"legs"`
}

// MuscleGroup pairs a group name with its detail
type MuscleGroup struct {
	Name   string
	Detail MuscleDetail
}

// Groups returns the five muscle groups in display order
func (m *MuscleAnalysis) Groups() []MuscleGroup {
	return []MuscleGroup{
		{Name: "chest", Detail: m.Chest},
		{Name: "abs", Detail: m.Abs},
		{Name: "arms", Detail: m.Arms},
		{Name: "back", Detail: m.Back},
		{Name: "legs", Detail: m.Legs},
	}
}

type PhysiqueRating struct {
	OverallScore float64 `json:"overallScore"`
	Summary      string  `json:"summary"`
}

type Report struct {
	MuscleAnalysis MuscleAnalysis `json:"muscleAnalysis"`
	PhysiqueRating PhysiqueRating `json:"physiqueRating"`
	PostureNotes   string         `json:"postureNotes"`
}

type Exercise struct {
	Name string `json:"name"`
	Sets string `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest"`
}

type DailyWorkout struct {
	DayOfWeek              string     `json:"dayOfWeek"`
	TargetMuscle           string     `json:"targetMuscle"`
	Warmup                 string     `json:"warmup"`
	Exercises              []Exercise `json:"exercises"`
	Cooldown               string     `json:"cooldown"`
	ProgressiveOverloadTip string     `json:"progressiveOverloadTip"`
}

type WorkoutPlan struct {
	Plan []DailyWorkout `json:"plan"`
}

type Meal struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Notes       string   `json:"notes"`
}

type Macros struct {
	Protein string `json:"protein"`
	Carbs   string `json:"carbs"`
	Fats    string `json:"fats"`
}

type MealGuide struct {
	DailyCalorieTarget float64  `json:"dailyCalorieTarget"`
	Macros             Macros   `json:"macros"`
	Meals              []Meal   `json:"meals"`
	MealSwaps          []string `json:"mealSwaps"`
}

// Plans is the response of the plan generation request
type Plans struct {
	WorkoutPlan WorkoutPlan `json:"workoutPlan"`
	MealGuide   MealGuide   `json:"mealGuide"`
}

// HistoryItem bundles the results of one analysis run
type HistoryItem struct {
	ID          string      `json:"id"`
	Date        time.Time   `json:"date"`
	Report      Report      `json:"report"`
	WorkoutPlan WorkoutPlan `json:"workoutPlan"`
	MealGuide   MealGuide   `json:"mealGuide"`
}

type Provider string

const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
)

// Credentials are stored alongside the profile of every account
type Credentials struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Provider     Provider  `json:"provider"`
	Created      time.Time `json:"created"`
}

// Defaults seed new accounts
type Defaults struct {
	Profile     Profile     `json:"profile"`
	Preferences Preferences `json:"preferences"`
}

// ValidationError reports user input that cannot be accepted
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
