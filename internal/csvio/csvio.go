// Package csvio imports student rosters from CSV files and exports
// rankings to them, using the same column headers as the spreadsheet tabs.
package csvio

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
	"github.com/ntsvetkov/campus-manager/pkg/db"
)

type studentCSVRow struct {
	Name        string  `csv:"ФИО"`
	Gender      string  `csv:"Пол"`
	Institute   string  `csv:"Институт"`
	SVO         int     `csv:"СВО"`
	ChAES       int     `csv:"ЧАЭС"`
	Disability  int     `csv:"Инвалидность"`
	Smoking     int     `csv:"Курение"`
	Distance    float64 `csv:"Расстояние"`
	LargeFamily int     `csv:"Многодетная семья"`
}

type rankingCSVRow struct {
	Rank        int    `csv:"Место"`
	Name        string `csv:"ФИО"`
	Gender      string `csv:"Пол"`
	Institute   string `csv:"Институт"`
	TotalScore  string `csv:"Общий балл"`
	Priority    string `csv:"Приоритет"`
	SVO         int    `csv:"СВО"`
	ChAES       int    `csv:"ЧАЭС"`
	Disability  int    `csv:"Инвалидность"`
	Smoking     int    `csv:"Курение"`
	Distance    string `csv:"Расстояние"`
	LargeFamily int    `csv:"Многодетная семья"`
}

// ReadStudents parses a student roster from CSV
func ReadStudents(reader io.Reader) ([]db.StudentRow, error) {
	var rows []studentCSVRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse student roster: %w", err)
	}

	students := make([]db.StudentRow, 0, len(rows))
	for _, row := range rows {
		students = append(students, db.StudentRow{
			Name:        row.Name,
			Gender:      row.Gender,
			Institute:   row.Institute,
			SVO:         row.SVO,
			ChAES:       row.ChAES,
			Disability:  row.Disability,
			Smoking:     row.Smoking,
			Distance:    row.Distance,
			LargeFamily: row.LargeFamily,
		})
	}
	return students, nil
}

// ReadStudentsFile parses a student roster from a CSV file on disk
func ReadStudentsFile(path string) ([]db.StudentRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer file.Close()

	return ReadStudents(file)
}

// WriteRanking writes a ranked roster as CSV, scores rounded to two decimals
func WriteRanking(writer io.Writer, students []model.ScoredStudent) error {
	rows := make([]rankingCSVRow, 0, len(students))
	for i, student := range students {
		priority := "Нет"
		if student.Priority {
			priority = "Да"
		}
		rows = append(rows, rankingCSVRow{
			Rank:        i + 1,
			Name:        student.Student.Name,
			Gender:      student.Student.Gender,
			Institute:   student.Student.Institute,
			TotalScore:  fmt.Sprintf("%.2f", student.TotalScore),
			Priority:    priority,
			SVO:         student.Student.SVO,
			ChAES:       student.Student.ChAES,
			Disability:  student.Student.Disability,
			Smoking:     student.Student.Smoking,
			Distance:    fmt.Sprintf("%.2f", student.Student.Distance),
			LargeFamily: student.Student.LargeFamily,
		})
	}

	if err := gocsv.Marshal(&rows, writer); err != nil {
		return fmt.Errorf("failed to write ranking: %w", err)
	}
	return nil
}

// WriteRankingFile writes a ranked roster to a CSV file on disk
func WriteRankingFile(path string, students []model.ScoredStudent) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	return WriteRanking(file, students)
}
