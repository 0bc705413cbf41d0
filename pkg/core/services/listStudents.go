package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
	"github.com/ntsvetkov/campus-manager/pkg/db"
)

// StudentLister defines the database operations needed for listing students
type StudentLister interface {
	GetStudents(ctx context.Context) ([]db.StudentRow, error)
}

// ListStudents retrieves the current student roster
func ListStudents(ctx context.Context, database StudentLister, logger *zap.Logger) ([]model.StudentRecord, error) {
	logger.Debug("Fetching students")

	rows, err := database.GetStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}

	students := make([]model.StudentRecord, len(rows))
	for i, row := range rows {
		students[i] = toStudentRecord(row)
	}

	logger.Info("Students fetched", zap.Int("count", len(students)))
	return students, nil
}
