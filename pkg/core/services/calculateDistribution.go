package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/internal/config"
	"github.com/ntsvetkov/campus-manager/pkg/core/engine"
	"github.com/ntsvetkov/campus-manager/pkg/core/model"
	"github.com/ntsvetkov/campus-manager/pkg/db"
)

// CalculateStore defines the database operations needed for a distribution run
type CalculateStore interface {
	GetStudents(ctx context.Context) ([]db.StudentRow, error)
	GetWeights(ctx context.Context) ([]db.WeightRow, error)
	WriteRanking(ctx context.Context, students []model.ScoredStudent) error
}

// CalculateResult contains the outcome of one distribution run
type CalculateResult struct {
	Distribution *model.DistributionResult

	// UnknownInstitutes lists the distinct institute names that fell back to
	// the default weight profile, in first-seen order
	UnknownInstitutes []string

	// Saved reports whether the ranking was written to the results tab
	Saved bool
}

// CalculateDistribution runs the full pipeline: fetch the roster and weight
// table, score and rank every student, and save the ranking to the results
// tab. If dryRun is true the ranking is computed but not saved.
func CalculateDistribution(
	ctx context.Context,
	database CalculateStore,
	cfg *config.Config,
	logger *zap.Logger,
	dryRun bool,
) (*CalculateResult, error) {
	logger.Info("Starting campus distribution calculation", zap.Bool("dry_run", dryRun))

	// Step 1: fetch the student roster
	logger.Debug("Fetching students")
	studentRows, err := database.GetStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}
	logger.Debug("Found students", zap.Int("count", len(studentRows)))

	// Step 2: fetch the weight table
	logger.Debug("Fetching institute weights")
	weightRows, err := database.GetWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch institute weights: %w", err)
	}
	logger.Debug("Found weight rows", zap.Int("count", len(weightRows)))

	table, nameless := buildWeightTable(weightRows)
	if nameless > 0 {
		logger.Warn("Skipped weight rows without an institute name", zap.Int("count", nameless))
	}

	// Step 3: run the engine
	students := make([]model.StudentRecord, len(studentRows))
	for i, row := range studentRows {
		students[i] = toStudentRecord(row)
	}

	engineCfg := engine.Config{
		DefaultInstitute: cfg.DefaultInstitute,
		InvalidRows:      invalidRowPolicy(cfg.InvalidRows),
	}

	result, err := engine.Compute(students, table, engineCfg)
	if err != nil {
		return nil, fmt.Errorf("distribution calculation failed: %w", err)
	}

	for _, skipped := range result.Skipped {
		logger.Warn("Skipped invalid student row",
			zap.Int("row", skipped.Index),
			zap.String("name", skipped.Name),
			zap.String("field", skipped.Field),
			zap.String("reason", skipped.Reason))
	}

	// An unrecognized institute is expected (it resolves to the default
	// profile) but worth surfacing once per name
	unknown := collectUnknownInstitutes(result.Students)
	for _, name := range unknown {
		logger.Warn("Institute not in weight table, default profile used",
			zap.String("institute", name))
	}

	logTopStudents(logger, result.Students)
	logger.Info("Ranked students",
		zap.String("run_id", result.RunID),
		zap.Int("count", result.Count),
		zap.Int("priority", countPriority(result.Students)),
		zap.Int("skipped", len(result.Skipped)))

	// Step 4: save the ranking
	saved := false
	if dryRun {
		logger.Info("Dry run, ranking not saved")
	} else {
		logger.Debug("Saving ranking to results tab")
		if err := database.WriteRanking(ctx, result.Students); err != nil {
			return nil, fmt.Errorf("failed to save ranking: %w", err)
		}
		saved = true
		logger.Info("Ranking saved", zap.Int("count", result.Count))
	}

	return &CalculateResult{
		Distribution:      result,
		UnknownInstitutes: unknown,
		Saved:             saved,
	}, nil
}

// logTopStudents logs the head of the ranking, mirroring what administrators
// check first in the results tab
func logTopStudents(logger *zap.Logger, students []model.ScoredStudent) {
	top := students
	if len(top) > 3 {
		top = top[:3]
	}
	for i, s := range top {
		logger.Info("Top ranked student",
			zap.Int("rank", i+1),
			zap.String("name", s.Student.Name),
			zap.Float64("total_score", s.TotalScore),
			zap.Bool("priority", s.Priority))
	}
}

func countPriority(students []model.ScoredStudent) int {
	count := 0
	for _, s := range students {
		if s.Priority {
			count++
		}
	}
	return count
}

func collectUnknownInstitutes(students []model.ScoredStudent) []string {
	seen := make(map[string]bool)
	var unknown []string
	for _, s := range students {
		if s.DefaultWeights && !seen[s.Student.Institute] {
			seen[s.Student.Institute] = true
			unknown = append(unknown, s.Student.Institute)
		}
	}
	return unknown
}

func invalidRowPolicy(policy string) engine.InvalidRowPolicy {
	if policy == config.InvalidRowsSkip {
		return engine.SkipRows
	}
	return engine.RejectBatch
}
