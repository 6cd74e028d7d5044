package service

import (
	"testing"

	"github.com/hqanh/scoresheet/internal/dto"
	"github.com/hqanh/scoresheet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNormalizer() NormalizerService {
	return NewNormalizerService(NewGradeService())
}

func TestNormalizeFillsDefaults(t *testing.T) {
	svc := newNormalizer()

	st := svc.Normalize(dto.StudentInput{})

	assert.NotEmpty(t, st.ID, "a missing id must be generated")
	assert.Equal(t, "", st.Name)
	assert.Equal(t, "", st.RollNo)
	assert.Equal(t, "", st.ClassName)
	assert.Equal(t, DefaultExamName, st.ExamName)
	assert.Equal(t, model.Marks{}, st.Marks)
	assert.Equal(t, 0, st.Total)
	assert.Equal(t, 0.0, st.Percentage)
	assert.Equal(t, GradeF, st.Grade)
}

func TestNormalizePreservesExistingID(t *testing.T) {
	svc := newNormalizer()

	st := svc.Normalize(dto.StudentInput{ID: "rec-42", Name: "Amina"})
	assert.Equal(t, "rec-42", st.ID)
}

func TestNormalizePartialMarks(t *testing.T) {
	svc := newNormalizer()

	// An extraction response missing history and computer.
	st := svc.Normalize(dto.StudentInput{
		Name:     "Joel",
		ExamName: "Midterm",
		Marks: map[string]any{
			"math":    float64(80),
			"science": float64(70),
			"english": float64(60),
		},
	})

	assert.Equal(t, model.Marks{Math: 80, Science: 70, English: 60, History: 0, Computer: 0}, st.Marks)
	assert.Equal(t, 210, st.Total)
	assert.Equal(t, 42.00, st.Percentage)
	assert.Equal(t, GradeD, st.Grade)
}

func TestNormalizeCoercesMalformedMarks(t *testing.T) {
	svc := newNormalizer()

	tests := []struct {
		name string
		raw  map[string]any
		want model.Marks
	}{
		{
			name: "non numeric values become zero",
			raw:  map[string]any{"math": "abc", "science": true, "english": nil, "history": []any{1}, "computer": map[string]any{}},
			want: model.Marks{},
		},
		{
			name: "numeric strings are accepted",
			raw:  map[string]any{"math": "88", "science": " 72 "},
			want: model.Marks{Math: 88, Science: 72},
		},
		{
			name: "out of range values clamp",
			raw:  map[string]any{"math": float64(150), "science": float64(-10)},
			want: model.Marks{Math: 100, Science: 0},
		},
		{
			name: "unknown subjects are ignored",
			raw:  map[string]any{"math": float64(50), "geography": float64(99)},
			want: model.Marks{Math: 50},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := svc.Normalize(dto.StudentInput{Marks: tt.raw})
			assert.Equal(t, tt.want, st.Marks)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	svc := newNormalizer()

	first := svc.Normalize(dto.StudentInput{
		Name:     "Sara",
		RollNo:   "2024-001",
		ExamName: "Finals",
		Marks:    map[string]any{"math": float64(95), "science": float64(92), "english": float64(88), "history": float64(90), "computer": float64(85)},
	})
	require.Equal(t, 450, first.Total)
	require.Equal(t, 90.00, first.Percentage)
	require.Equal(t, GradeAPlus, first.Grade)

	second := svc.Normalize(dto.StudentInput{
		ID:        first.ID,
		Name:      first.Name,
		RollNo:    first.RollNo,
		ClassName: first.ClassName,
		ExamName:  first.ExamName,
		Marks: map[string]any{
			"math":     first.Marks.Math,
			"science":  first.Marks.Science,
			"english":  first.Marks.English,
			"history":  first.Marks.History,
			"computer": first.Marks.Computer,
		},
	})
	assert.Equal(t, first, second)
}
