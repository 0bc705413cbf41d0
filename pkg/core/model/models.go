package model

import "time"

// Gender values as they appear in the students sheet
const (
	GenderMale   = "М"
	GenderFemale = "Ж"
)

// StudentRecord represents one housing applicant as submitted
// Flag fields are 0/1; Distance is the raw distance to campus
type StudentRecord struct {
	Name        string
	Gender      string
	Institute   string
	SVO         int
	ChAES       int
	Disability  int
	Smoking     int
	Distance    float64
	LargeFamily int
}

// WeightProfile holds the per-criterion multipliers and base score for one institute
type WeightProfile struct {
	Institute      string
	InstituteScore float64
	SVO            float64
	ChAES          float64
	Disability     float64
	Smoking        float64
	Distance       float64
	LargeFamily    float64
}

// WeightTable maps institute names to their weight profiles
// It must contain an entry for the designated default institute
type WeightTable map[string]WeightProfile

// ScoredStudent is a student with the computed score breakdown
type ScoredStudent struct {
	Student            StudentRecord
	NormalizedDistance float64

	// Per-criterion contributions, as written to the results sheet
	InstituteScore   float64
	SVOScore         float64
	ChAESScore       float64
	DisabilityScore  float64
	SmokingScore     float64
	DistanceScore    float64
	LargeFamilyScore float64

	TotalScore float64
	Priority   bool

	// DefaultWeights is set when the student's institute was not found in the
	// weight table and the default profile was used instead
	DefaultWeights bool
}

// RunSummary is the persisted record of one distribution run
type RunSummary struct {
	RunID      string
	ComputedAt time.Time
	Students   int
	Priority   int
	Skipped    int

	// Saved is false for dry runs
	Saved bool
}

// RowError describes why a single input row failed validation
type RowError struct {
	Index  int    // zero-based position in the input roster
	Name   string // student name, if available
	Field  string
	Reason string
}

// DistributionResult is the ordered roster produced by one computation
type DistributionResult struct {
	RunID      string
	Students   []ScoredStudent
	Count      int
	ComputedAt time.Time

	// Skipped lists rows rejected during validation, populated only when the
	// engine runs in skip mode
	Skipped []RowError
}
