// Package db provides typed access to the campus spreadsheet tabs.
package db

import (
	"context"
	"fmt"
	"math"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
	"github.com/ntsvetkov/campus-manager/pkg/sheetstable"
)

// Values written to the priority column of the results tab
const (
	priorityYes = "Да"
	priorityNo  = "Нет"
)

// SheetsClient defines the sheet operations the store needs
type SheetsClient interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
	AppendRows(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error
	UpdateValues(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error
	ClearRange(ctx context.Context, spreadsheetID, sheetRange string) error
}

// Tabs names the three worksheets of the campus spreadsheet
type Tabs struct {
	Students string
	Weights  string
	Results  string
}

// DB reads and writes campus data in a single spreadsheet
type DB struct {
	client        SheetsClient
	spreadsheetID string
	tabs          Tabs
}

// NewDB creates a store over the given spreadsheet
func NewDB(client SheetsClient, spreadsheetID string, tabs Tabs) *DB {
	return &DB{
		client:        client,
		spreadsheetID: spreadsheetID,
		tabs:          tabs,
	}
}

// GetStudents retrieves all rows of the students tab
func (db *DB) GetStudents(ctx context.Context) ([]StudentRow, error) {
	values, err := db.client.GetValues(ctx, db.spreadsheetID, db.tabs.Students)
	if err != nil {
		return nil, fmt.Errorf("failed to read students tab: %w", err)
	}
	if len(values) == 0 {
		return []StudentRow{}, nil
	}

	var rows []StudentRow
	if err := sheetstable.Decode(values, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode students tab: %w", err)
	}
	return rows, nil
}

// GetWeights retrieves all rows of the institute weights tab
func (db *DB) GetWeights(ctx context.Context) ([]WeightRow, error) {
	values, err := db.client.GetValues(ctx, db.spreadsheetID, db.tabs.Weights)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights tab: %w", err)
	}
	if len(values) == 0 {
		return []WeightRow{}, nil
	}

	var rows []WeightRow
	if err := sheetstable.Decode(values, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode weights tab: %w", err)
	}
	return rows, nil
}

// AppendStudent adds a student row after the current last row of the students tab
func (db *DB) AppendStudent(ctx context.Context, row StudentRow) error {
	values, err := sheetstable.Encode([]StudentRow{row})
	if err != nil {
		return fmt.Errorf("failed to encode student row: %w", err)
	}
	if err := db.client.AppendRows(ctx, db.spreadsheetID, db.tabs.Students, values); err != nil {
		return fmt.Errorf("failed to append student row: %w", err)
	}
	return nil
}

// WriteRanking replaces the results tab with the ranked roster.
// Scores are rounded to two decimals for presentation.
func (db *DB) WriteRanking(ctx context.Context, students []model.ScoredStudent) error {
	headers, err := sheetstable.Headers(ResultRow{})
	if err != nil {
		return fmt.Errorf("failed to build results header: %w", err)
	}

	resultRows := make([]ResultRow, len(students))
	for i, s := range students {
		resultRows[i] = toResultRow(s)
	}

	rows, err := sheetstable.Encode(resultRows)
	if err != nil {
		return fmt.Errorf("failed to encode result rows: %w", err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	values := append([][]interface{}{headerRow}, rows...)

	if err := db.client.ClearRange(ctx, db.spreadsheetID, db.tabs.Results); err != nil {
		return fmt.Errorf("failed to clear results tab: %w", err)
	}
	if err := db.client.UpdateValues(ctx, db.spreadsheetID, db.tabs.Results, values); err != nil {
		return fmt.Errorf("failed to write results tab: %w", err)
	}
	return nil
}

// toResultRow converts a scored student into its presentation form
func toResultRow(s model.ScoredStudent) ResultRow {
	priority := priorityNo
	if s.Priority {
		priority = priorityYes
	}

	return ResultRow{
		Name:             s.Student.Name,
		Gender:           s.Student.Gender,
		InstituteScore:   s.InstituteScore,
		SVOScore:         s.SVOScore,
		ChAESScore:       s.ChAESScore,
		DisabilityScore:  s.DisabilityScore,
		SmokingScore:     s.SmokingScore,
		DistanceScore:    round2(s.DistanceScore),
		LargeFamilyScore: s.LargeFamilyScore,
		TotalScore:       round2(s.TotalScore),
		Priority:         priority,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
