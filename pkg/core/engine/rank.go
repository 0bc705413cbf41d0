package engine

import (
	"sort"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
)

// rank orders students in place: the priority tier sorts entirely before the
// regular tier, within a tier higher totals come first, and equal totals keep
// their input order. A single stable sort covers all three levels.
func rank(students []model.ScoredStudent) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Priority != students[j].Priority {
			return students[i].Priority
		}
		return students[i].TotalScore > students[j].TotalScore
	})
}
