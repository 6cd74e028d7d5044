package model

// SubjectKeys is the closed set of subjects a mark sheet carries. Every
// Marks value has all five populated; an unknown subject on input is
// ignored.
var SubjectKeys = []string{"math", "science", "english", "history", "computer"}

// NumSubjects is the divisor for the percentage computation.
const NumSubjects = 5

// Marks holds one integer score per subject, each in [0,100].
type Marks struct {
	Math     int `json:"math"`
	Science  int `json:"science"`
	English  int `json:"english"`
	History  int `json:"history"`
	Computer int `json:"computer"`
}

// Sum returns the raw total across all subjects.
func (m Marks) Sum() int {
	return m.Math + m.Science + m.English + m.History + m.Computer
}

// Student is a single exam record. Total, Percentage and Grade are derived
// from Marks and are recomputed on every write path; they are never edited
// independently.
type Student struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RollNo     string  `json:"roll_no"`
	ClassName  string  `json:"class_name"`
	ExamName   string  `json:"exam_name"`
	Marks      Marks   `json:"marks"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}
