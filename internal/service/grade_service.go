package service

import (
	"math"

	"github.com/hqanh/scoresheet/internal/model"
)

// Letter grades, ordered from best to worst.
const (
	GradeAPlus = "A+"
	GradeA     = "A"
	GradeB     = "B"
	GradeC     = "C"
	GradeD     = "D"
	GradeF     = "F"
)

// GradeResult carries the derived fields of a student record.
type GradeResult struct {
	Total      int
	Percentage float64
	Grade      string
}

// GradeService computes the derived fields from a mark sheet. It is pure:
// no side effects, and every finite input maps to a result. Callers are
// responsible for clamping marks to [0,100] beforehand.
type GradeService interface {
	Compute(marks model.Marks) GradeResult
}

type gradeServiceImpl struct{}

func NewGradeService() GradeService {
	return &gradeServiceImpl{}
}

func (s *gradeServiceImpl) Compute(marks model.Marks) GradeResult {
	total := marks.Sum()
	pct := roundTo2(float64(total) / model.NumSubjects)
	return GradeResult{
		Total:      total,
		Percentage: pct,
		Grade:      letterFor(pct),
	}
}

// letterFor classifies a percentage, first match wins. Thresholds are
// inclusive: exactly 90.00 is an A+, exactly 35.00 is a D.
func letterFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return GradeAPlus
	case percentage >= 80:
		return GradeA
	case percentage >= 70:
		return GradeB
	case percentage >= 55:
		return GradeC
	case percentage >= 35:
		return GradeD
	default:
		return GradeF
	}
}

// roundTo2 rounds half up to two decimal places. math.Round is
// half-away-from-zero, which is half-up for the non-negative values here.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
