package engine

import (
	"fmt"
	"strings"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
)

// NormalizeDistance converts a raw distance into its scoring contribution.
// The result is intentionally not clamped: a student living beyond the
// reference scale scores proportionally more on the distance term.
func NormalizeDistance(distance float64) float64 {
	return distance / DistanceNorm
}

// validateRecord checks a single student row against the domain constraints.
// All violations for the row are reported, not just the first one.
func validateRecord(index int, s model.StudentRecord) []model.RowError {
	var errs []model.RowError

	add := func(field, reason string) {
		errs = append(errs, model.RowError{
			Index:  index,
			Name:   s.Name,
			Field:  field,
			Reason: reason,
		})
	}

	if strings.TrimSpace(s.Name) == "" {
		add("name", "student name is empty")
	}
	if strings.TrimSpace(s.Institute) == "" {
		add("institute", "institute name is empty")
	}
	if s.Distance < 0 {
		add("distance", fmt.Sprintf("distance must be non-negative, got %v", s.Distance))
	}

	for _, flag := range []struct {
		field string
		value int
	}{
		{"svo", s.SVO},
		{"chaes", s.ChAES},
		{"disability", s.Disability},
		{"smoking", s.Smoking},
		{"large_family", s.LargeFamily},
	} {
		if flag.value != 0 && flag.value != 1 {
			add(flag.field, fmt.Sprintf("flag must be 0 or 1, got %d", flag.value))
		}
	}

	return errs
}
