package model

import "time"

// Exam is a folder grouping the students that sat one exam. Students
// reference it by name, not id. Exams are immutable after creation;
// deleting one cascades to every student whose ExamName matches.
type Exam struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
