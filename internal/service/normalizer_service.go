package service

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hqanh/scoresheet/internal/dto"
	"github.com/hqanh/scoresheet/internal/model"
)

// DefaultExamName is assigned when a record arrives without an exam
// context, so it stays queryable instead of landing in a nameless bucket.
const DefaultExamName = "Standard Exam"

// NormalizerService is the consistency boundary of the record set: every
// new or edited student, whether typed in by hand or extracted from a
// photo, passes through Normalize before it may reach the store. It never
// rejects input; malformed fields are absorbed into defaults.
type NormalizerService interface {
	Normalize(in dto.StudentInput) model.Student
}

type normalizerServiceImpl struct {
	gradeSvc GradeService
}

func NewNormalizerService(gradeSvc GradeService) NormalizerService {
	return &normalizerServiceImpl{gradeSvc: gradeSvc}
}

func (s *normalizerServiceImpl) Normalize(in dto.StudentInput) model.Student {
	st := model.Student{
		ID:        in.ID,
		Name:      in.Name,
		RollNo:    in.RollNo,
		ClassName: in.ClassName,
		ExamName:  in.ExamName,
		Marks:     marksFromInput(in.Marks),
	}
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.ExamName == "" {
		st.ExamName = DefaultExamName
	}

	res := s.gradeSvc.Compute(st.Marks)
	st.Total = res.Total
	st.Percentage = res.Percentage
	st.Grade = res.Grade
	return st
}

func marksFromInput(raw map[string]any) model.Marks {
	return model.Marks{
		Math:     coerceScore(raw["math"]),
		Science:  coerceScore(raw["science"]),
		English:  coerceScore(raw["english"]),
		History:  coerceScore(raw["history"]),
		Computer: coerceScore(raw["computer"]),
	}
}

// coerceScore turns whatever a form or an AI response supplied into a
// valid score. Absent or unparseable values become 0; out-of-range values
// clamp to [0,100].
func coerceScore(v any) int {
	var score int
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		score = n
	case int64:
		score = int(n)
	case float64:
		score = int(n + 0.5)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		score = int(f + 0.5)
	default:
		return 0
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
