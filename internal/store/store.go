// Package store owns the student and exam collections. Nothing outside it
// holds a mutable reference to either; all reads hand out copies. Every
// mutation is atomic with respect to every other mutation and flushes the
// affected collection(s) to the snapshot storage before returning.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hqanh/scoresheet/internal/model"
	"github.com/hqanh/scoresheet/internal/storage"
	"github.com/rs/zerolog/log"
)

// ErrNotFound reports a lookup that matched nothing. It is a normal
// negative result, not a fault; handlers render it as "no such record".
var ErrNotFound = errors.New("record not found")

type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	students []model.Student
	exams    []model.Exam
}

// New restores both collections from the snapshot storage. An absent or
// corrupt snapshot degrades to an empty collection; startup never fails
// on bad data.
func New(kv storage.KV) *Store {
	s := &Store{kv: kv}
	s.students = loadCollection[model.Student](kv, storage.StudentKey)
	s.exams = loadCollection[model.Exam](kv, storage.ExamKey)
	log.Info().Int("students", len(s.students)).Int("exams", len(s.exams)).Msg("Record store loaded")
	return s
}

func loadCollection[T any](kv storage.KV, key string) []T {
	raw, err := kv.Get(context.Background(), key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Snapshot read failed, starting empty")
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Snapshot is corrupt, starting empty")
		return nil
	}
	return out
}

// AddStudent appends a record that already passed through the normalizer.
func (s *Store) AddStudent(ctx context.Context, st model.Student) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = append(s.students, st)
	if err := s.flushStudents(ctx); err != nil {
		return st, err
	}
	return st, nil
}

// UpdateStudent replaces the record with the matching id.
func (s *Store) UpdateStudent(ctx context.Context, id string, st model.Student) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.students {
		if s.students[i].ID == id {
			st.ID = id
			s.students[i] = st
			if err := s.flushStudents(ctx); err != nil {
				return st, err
			}
			return st, nil
		}
	}
	return model.Student{}, ErrNotFound
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.students {
		if s.students[i].ID == id {
			s.students = append(s.students[:i], s.students[i+1:]...)
			return s.flushStudents(ctx)
		}
	}
	return ErrNotFound
}

func (s *Store) GetStudent(id string) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.students {
		if st.ID == id {
			return st, nil
		}
	}
	return model.Student{}, ErrNotFound
}

// ListByExam returns the students filed in the named exam folder.
func (s *Store) ListByExam(examName string) []model.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Student
	for _, st := range s.students {
		if st.ExamName == examName {
			out = append(out, st)
		}
	}
	return out
}

// FindByRollAndExam returns at most one record. The roll number match is
// whitespace-trimmed and case-insensitive; the exam name match is exact.
// Roll numbers are assumed unique within an exam, not globally.
func (s *Store) FindByRollAndExam(rollNo, examName string) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := strings.ToLower(strings.TrimSpace(rollNo))
	for _, st := range s.students {
		if st.ExamName == examName && strings.ToLower(strings.TrimSpace(st.RollNo)) == want {
			return st, nil
		}
	}
	return model.Student{}, ErrNotFound
}

// AddExam creates a new exam folder. Name uniqueness is a data-entry
// convention, not enforced here.
func (s *Store) AddExam(ctx context.Context, name string) (model.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exam := model.Exam{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	s.exams = append(s.exams, exam)
	if err := s.flushExams(ctx); err != nil {
		return exam, err
	}
	return exam, nil
}

func (s *Store) ListExams() []model.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Exam, len(s.exams))
	copy(out, s.exams)
	return out
}

// DeleteExam removes the exam and, in the same critical section, every
// student whose ExamName equals the deleted exam's name. Callers never
// observe the exam gone with its students still present, or the reverse.
func (s *Store) DeleteExam(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.exams {
		if s.exams[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}
	name := s.exams[idx].Name

	s.exams = append(s.exams[:idx], s.exams[idx+1:]...)
	kept := s.students[:0]
	for _, st := range s.students {
		if st.ExamName != name {
			kept = append(kept, st)
		}
	}
	s.students = kept

	if err := s.flushStudents(ctx); err != nil {
		return err
	}
	return s.flushExams(ctx)
}

// Snapshot serializes both collections, for state comparison in tests and
// diagnostics. The order is stable: insertion order is preserved by every
// mutation.
func (s *Store) Snapshot() ([]byte, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := json.Marshal(s.students)
	if err != nil {
		return nil, nil, err
	}
	exams, err := json.Marshal(s.exams)
	if err != nil {
		return nil, nil, err
	}
	return students, exams, nil
}

func (s *Store) flushStudents(ctx context.Context) error {
	raw, err := json.Marshal(s.students)
	if err != nil {
		return fmt.Errorf("marshal students: %w", err)
	}
	if err := s.kv.Set(ctx, storage.StudentKey, raw); err != nil {
		log.Error().Err(err).Msg("Student snapshot flush failed")
		return fmt.Errorf("flush students: %w", err)
	}
	return nil
}

func (s *Store) flushExams(ctx context.Context) error {
	raw, err := json.Marshal(s.exams)
	if err != nil {
		return fmt.Errorf("marshal exams: %w", err)
	}
	if err := s.kv.Set(ctx, storage.ExamKey, raw); err != nil {
		log.Error().Err(err).Msg("Exam snapshot flush failed")
		return fmt.Errorf("flush exams: %w", err)
	}
	return nil
}
