package store

import (
	"context"
	"testing"

	"github.com/hqanh/scoresheet/internal/model"
	"github.com/hqanh/scoresheet/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func student(id, name, rollNo, examName string) model.Student {
	return model.Student{
		ID:       id,
		Name:     name,
		RollNo:   rollNo,
		ExamName: examName,
		Marks:    model.Marks{Math: 50, Science: 50, English: 50, History: 50, Computer: 50},
		Total:    250, Percentage: 50, Grade: "F",
	}
}

func TestAddUpdateDeleteStudent(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryKV())

	st, err := s.AddStudent(ctx, student("s1", "Amina", "001", "Finals"))
	require.NoError(t, err)

	got, err := s.GetStudent("s1")
	require.NoError(t, err)
	assert.Equal(t, st, got)

	st.Name = "Amina O"
	_, err = s.UpdateStudent(ctx, "s1", st)
	require.NoError(t, err)
	got, _ = s.GetStudent("s1")
	assert.Equal(t, "Amina O", got.Name)

	_, err = s.UpdateStudent(ctx, "missing", st)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteStudent(ctx, "s1"))
	_, err = s.GetStudent("s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteStudent(ctx, "s1"), ErrNotFound)
}

func TestFindByRollAndExam(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryKV())

	// Stored with stray whitespace, looked up clean.
	_, err := s.AddStudent(ctx, student("s1", "Sara", " 2024-001 ", "Finals"))
	require.NoError(t, err)
	_, err = s.AddStudent(ctx, student("s2", "Sara's twin", "2024-001", "Midterm"))
	require.NoError(t, err)

	got, err := s.FindByRollAndExam("2024-001", "Finals")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	// Case-insensitive on the roll number.
	_, err = s.AddStudent(ctx, student("s3", "Joel", "AB-17", "Finals"))
	require.NoError(t, err)
	got, err = s.FindByRollAndExam("ab-17", "Finals")
	require.NoError(t, err)
	assert.Equal(t, "s3", got.ID)

	// Exam name match is exact; a miss is a normal negative result.
	_, err = s.FindByRollAndExam("2024-001", "finals")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByRollAndExam("9999", "Finals")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExamCascades(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryKV())

	finals, err := s.AddExam(ctx, "Finals")
	require.NoError(t, err)
	_, err = s.AddExam(ctx, "Midterm")
	require.NoError(t, err)

	for _, st := range []model.Student{
		student("s1", "A", "001", "Finals"),
		student("s2", "B", "002", "Finals"),
		student("s3", "C", "003", "Midterm"),
	} {
		_, err := s.AddStudent(ctx, st)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteExam(ctx, finals.ID))

	// Exactly the two Finals students are gone, the Midterm one remains.
	assert.Empty(t, s.ListByExam("Finals"))
	remaining := s.ListByExam("Midterm")
	require.Len(t, remaining, 1)
	assert.Equal(t, "s3", remaining[0].ID)

	exams := s.ListExams()
	require.Len(t, exams, 1)
	assert.Equal(t, "Midterm", exams[0].Name)

	assert.ErrorIs(t, s.DeleteExam(ctx, finals.ID), ErrNotFound)
}

func TestDuplicateExamNamesArePermitted(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryKV())

	first, err := s.AddExam(ctx, "Finals")
	require.NoError(t, err)
	second, err := s.AddExam(ctx, "Finals")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, s.ListExams(), 2)
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	s := New(kv)
	_, err := s.AddExam(ctx, "Finals")
	require.NoError(t, err)
	_, err = s.AddStudent(ctx, student("s1", "Amina", "001", "Finals"))
	require.NoError(t, err)

	// A new store over the same storage sees the flushed snapshots.
	reloaded := New(kv)
	assert.Len(t, reloaded.ListExams(), 1)
	assert.Len(t, reloaded.ListByExam("Finals"), 1)
}

func TestCorruptSnapshotLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.StudentKey, []byte("{{{ not json")))
	require.NoError(t, kv.Set(ctx, storage.ExamKey, []byte("also broken")))

	s := New(kv)
	assert.Empty(t, s.ListExams())
	assert.Empty(t, s.ListByExam("Finals"))
}

func TestReadsDoNotChangeSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryKV())
	_, err := s.AddExam(ctx, "Finals")
	require.NoError(t, err)
	_, err = s.AddStudent(ctx, student("s1", "Amina", "001", "Finals"))
	require.NoError(t, err)

	beforeStudents, beforeExams, err := s.Snapshot()
	require.NoError(t, err)

	s.ListExams()
	s.ListByExam("Finals")
	_, _ = s.FindByRollAndExam("001", "Finals")
	_, _ = s.GetStudent("s1")

	afterStudents, afterExams, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, beforeStudents, afterStudents)
	assert.Equal(t, beforeExams, afterExams)
}
