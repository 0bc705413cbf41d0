package services

import (
	"github.com/ntsvetkov/campus-manager/pkg/core/model"
	"github.com/ntsvetkov/campus-manager/pkg/db"
)

// toStudentRecord converts a sheet row into the engine's input shape
func toStudentRecord(row db.StudentRow) model.StudentRecord {
	return model.StudentRecord{
		Name:        row.Name,
		Gender:      row.Gender,
		Institute:   row.Institute,
		SVO:         row.SVO,
		ChAES:       row.ChAES,
		Disability:  row.Disability,
		Smoking:     row.Smoking,
		Distance:    row.Distance,
		LargeFamily: row.LargeFamily,
	}
}

// buildWeightTable indexes weight rows by institute name. Rows without an
// institute name cannot be addressed and are skipped; the count of such rows
// is returned for the caller to report.
func buildWeightTable(rows []db.WeightRow) (model.WeightTable, int) {
	table := make(model.WeightTable, len(rows))
	nameless := 0

	for _, row := range rows {
		if row.Institute == "" {
			nameless++
			continue
		}
		table[row.Institute] = model.WeightProfile{
			Institute:      row.Institute,
			InstituteScore: row.InstituteScore,
			SVO:            row.SVO,
			ChAES:          row.ChAES,
			Disability:     row.Disability,
			Smoking:        row.Smoking,
			Distance:       row.Distance,
			LargeFamily:    row.LargeFamily,
		}
	}

	return table, nameless
}
