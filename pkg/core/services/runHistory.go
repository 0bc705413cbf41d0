package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
)

// RunRecorder persists distribution run summaries
type RunRecorder interface {
	InsertRun(ctx context.Context, run model.RunSummary) error
}

// RecordRun saves a summary of a completed distribution run to the history
// store. The spreadsheet only ever holds the latest ranking, so this is the
// record of when runs happened and what they produced.
func RecordRun(ctx context.Context, recorder RunRecorder, logger *zap.Logger, result *CalculateResult) error {
	summary := model.RunSummary{
		RunID:      result.Distribution.RunID,
		ComputedAt: result.Distribution.ComputedAt,
		Students:   result.Distribution.Count,
		Priority:   countPriority(result.Distribution.Students),
		Skipped:    len(result.Distribution.Skipped),
		Saved:      result.Saved,
	}

	if err := recorder.InsertRun(ctx, summary); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	logger.Info("Run recorded",
		zap.String("run_id", summary.RunID),
		zap.Int("students", summary.Students),
		zap.Bool("saved", summary.Saved))
	return nil
}
