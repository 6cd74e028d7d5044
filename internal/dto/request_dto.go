package dto

// StudentInput is a partial student record. Every field may be absent:
// the entry form posts whatever the operator filled in, and the
// extraction pipeline yields whatever the sheet legibly carried. The
// normalizer is the component that turns this into a complete record.
//
// Marks is a loose map on purpose. AI output and hand-typed forms both
// produce values of uncertain type; unknown subjects are dropped and
// non-numeric scores coerce to zero rather than failing the request.
type StudentInput struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	RollNo    string         `json:"roll_no"`
	ClassName string         `json:"class_name"`
	ExamName  string         `json:"exam_name"`
	Marks     map[string]any `json:"marks"`
}

// CreateExamRequest creates a new exam folder.
type CreateExamRequest struct {
	Name string `json:"name" binding:"required"`
}

// LoginRequest carries the fixed operator credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
