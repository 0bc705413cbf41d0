package engine

import "github.com/ntsvetkov/campus-manager/pkg/core/model"

// IsPriority reports whether the student belongs to the priority tier.
// Priority reflects an administrative entitlement and does not depend on
// scoring weights.
func IsPriority(s model.StudentRecord) bool {
	return s.SVO != 0 || s.ChAES != 0 || s.Disability != 0
}

// scoreStudent computes the weighted score breakdown for a validated student.
// Terms are accumulated in a fixed order so that float64 totals are
// bit-identical across runs.
func scoreStudent(s model.StudentRecord, w model.WeightProfile) model.ScoredStudent {
	normalizedDistance := NormalizeDistance(s.Distance)

	entry := model.ScoredStudent{
		Student:            s,
		NormalizedDistance: normalizedDistance,
		InstituteScore:     w.InstituteScore,
		SVOScore:           float64(s.SVO) * w.SVO,
		ChAESScore:         float64(s.ChAES) * w.ChAES,
		DisabilityScore:    float64(s.Disability) * w.Disability,
		SmokingScore:       float64(s.Smoking) * w.Smoking,
		DistanceScore:      normalizedDistance * w.Distance,
		LargeFamilyScore:   float64(s.LargeFamily) * w.LargeFamily,
		Priority:           IsPriority(s),
	}

	total := entry.InstituteScore
	total += entry.SVOScore
	total += entry.ChAESScore
	total += entry.DisabilityScore
	total += entry.SmokingScore
	total += entry.DistanceScore
	total += entry.LargeFamilyScore
	entry.TotalScore = total

	return entry
}
