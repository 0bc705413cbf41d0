package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/pkg/db"
)

var validate = validator.New()

// Submission is an intake payload for a new student, as posted by the housing
// application form webhook or entered through the CLI
type Submission struct {
	Name        string  `json:"name" validate:"required"`
	Gender      string  `json:"gender" validate:"required"`
	Institute   string  `json:"institute" validate:"required"`
	SVO         int     `json:"svo" validate:"min=0,max=1"`
	ChAES       int     `json:"chaes" validate:"min=0,max=1"`
	Disability  int     `json:"disability" validate:"min=0,max=1"`
	Smoking     int     `json:"smoking" validate:"min=0,max=1"`
	Distance    float64 `json:"distance" validate:"gte=0"`
	LargeFamily int     `json:"large_family" validate:"min=0,max=1"`
}

// StudentAppender defines the database operations needed for student intake
type StudentAppender interface {
	AppendStudent(ctx context.Context, row db.StudentRow) error
}

// SubmitStudent validates an intake payload and appends it to the students
// tab. It returns the submission ID assigned to the accepted payload.
func SubmitStudent(ctx context.Context, database StudentAppender, logger *zap.Logger, submission Submission) (string, error) {
	if err := validate.Struct(submission); err != nil {
		return "", fmt.Errorf("submission validation failed: %w", err)
	}

	submissionID := uuid.New().String()
	logger.Info("Processing student submission",
		zap.String("submission_id", submissionID),
		zap.String("name", submission.Name),
		zap.String("institute", submission.Institute))

	row := db.StudentRow{
		Name:        submission.Name,
		Gender:      submission.Gender,
		Institute:   submission.Institute,
		SVO:         submission.SVO,
		ChAES:       submission.ChAES,
		Disability:  submission.Disability,
		Smoking:     submission.Smoking,
		Distance:    submission.Distance,
		LargeFamily: submission.LargeFamily,
	}

	if err := database.AppendStudent(ctx, row); err != nil {
		return "", fmt.Errorf("failed to save student: %w", err)
	}

	logger.Info("Student saved", zap.String("submission_id", submissionID))
	return submissionID, nil
}
