package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/pkg/db"
)

// mockStudentAppender implements StudentAppender for testing
type mockStudentAppender struct {
	appended []db.StudentRow
	err      error
}

func (m *mockStudentAppender) AppendStudent(ctx context.Context, row db.StudentRow) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, row)
	return nil
}

func validSubmission() Submission {
	return Submission{
		Name:      "Иванов И.И.",
		Gender:    "М",
		Institute: "ИПМКН",
		SVO:       1,
		Distance:  120,
	}
}

func TestSubmitStudent_Success(t *testing.T) {
	store := &mockStudentAppender{}

	id, err := SubmitStudent(context.Background(), store, zap.NewNop(), validSubmission())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, store.appended, 1)
	assert.Equal(t, "Иванов И.И.", store.appended[0].Name)
	assert.Equal(t, "ИПМКН", store.appended[0].Institute)
	assert.Equal(t, 1, store.appended[0].SVO)
	assert.Equal(t, 120.0, store.appended[0].Distance)
}

func TestSubmitStudent_MissingRequiredFields(t *testing.T) {
	store := &mockStudentAppender{}

	for _, mutate := range []func(*Submission){
		func(s *Submission) { s.Name = "" },
		func(s *Submission) { s.Gender = "" },
		func(s *Submission) { s.Institute = "" },
	} {
		submission := validSubmission()
		mutate(&submission)

		_, err := SubmitStudent(context.Background(), store, zap.NewNop(), submission)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	}

	assert.Empty(t, store.appended)
}

func TestSubmitStudent_OutOfRangeValues(t *testing.T) {
	store := &mockStudentAppender{}

	submission := validSubmission()
	submission.SVO = 2
	_, err := SubmitStudent(context.Background(), store, zap.NewNop(), submission)
	require.Error(t, err)

	submission = validSubmission()
	submission.Distance = -10
	_, err = SubmitStudent(context.Background(), store, zap.NewNop(), submission)
	require.Error(t, err)

	assert.Empty(t, store.appended)
}

func TestSubmitStudent_StoreError(t *testing.T) {
	store := &mockStudentAppender{err: errors.New("sheet unavailable")}

	_, err := SubmitStudent(context.Background(), store, zap.NewNop(), validSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save student")
}
