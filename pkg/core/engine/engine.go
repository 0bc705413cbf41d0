// Package engine implements the campus distribution scoring and ranking
// pipeline: weight profile resolution, attribute normalization, score
// calculation, priority classification and deterministic ranking.
//
// The engine is pure: it holds no state, performs no I/O and never logs.
// Given the same roster and weight table it always produces the same ordering
// and the same scores.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
)

// DistanceNorm is the reference scale the raw distance is divided by.
// Distances above it yield normalized values greater than 1, which is
// accepted domain behavior (no clamping).
const DistanceNorm = 500.0

// DefaultInstitute is the weight table key used for students whose institute
// has no dedicated profile.
const DefaultInstitute = "Other"

// InvalidRowPolicy controls what happens when input rows fail validation.
type InvalidRowPolicy int

const (
	// RejectBatch fails the whole computation, returning every offending row.
	RejectBatch InvalidRowPolicy = iota
	// SkipRows ranks the valid remainder and reports offending rows in the result.
	SkipRows
)

// Config holds the per-computation settings passed explicitly into Compute.
type Config struct {
	// DefaultInstitute is the fallback key in the weight table.
	// Empty means DefaultInstitute ("Other").
	DefaultInstitute string

	// InvalidRows selects the failure mode for rows that do not validate.
	InvalidRows InvalidRowPolicy
}

// Compute runs the full pipeline over a roster snapshot and returns the
// ranked distribution.
//
// It fails with *ConfigurationError when the default weight profile is absent
// from the table, and with *ValidationErrors when rows are invalid and the
// policy is RejectBatch. An empty roster is not an error: the result simply
// has Count 0.
func Compute(students []model.StudentRecord, table model.WeightTable, cfg Config) (*model.DistributionResult, error) {
	defaultKey := cfg.DefaultInstitute
	if defaultKey == "" {
		defaultKey = DefaultInstitute
	}

	// The default profile is the sole fatal precondition; check it before
	// touching any row so a bad table never produces a partial result.
	if _, ok := table[defaultKey]; !ok {
		return nil, &ConfigurationError{
			Reason: "default weight profile " + defaultKey + " missing from weight table",
		}
	}

	scored := make([]model.ScoredStudent, 0, len(students))
	var invalid []model.RowError

	for i, student := range students {
		rowErrs := validateRecord(i, student)
		if len(rowErrs) > 0 {
			invalid = append(invalid, rowErrs...)
			continue
		}

		profile, usedDefault, err := Resolve(table, student.Institute, defaultKey)
		if err != nil {
			// Unreachable after the precondition check above, but the
			// resolver keeps its own contract.
			return nil, err
		}

		entry := scoreStudent(student, profile)
		entry.DefaultWeights = usedDefault
		scored = append(scored, entry)
	}

	if len(invalid) > 0 && cfg.InvalidRows == RejectBatch {
		return nil, &ValidationErrors{Rows: invalid}
	}

	rank(scored)

	return &model.DistributionResult{
		RunID:      uuid.New().String(),
		Students:   scored,
		Count:      len(scored),
		ComputedAt: time.Now().UTC(),
		Skipped:    invalid,
	}, nil
}
