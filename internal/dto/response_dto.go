package dto

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MarksResponse struct {
	Math     int `json:"math"`
	Science  int `json:"science"`
	English  int `json:"english"`
	History  int `json:"history"`
	Computer int `json:"computer"`
}

type StudentResponse struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	RollNo     string        `json:"roll_no"`
	ClassName  string        `json:"class_name"`
	ExamName   string        `json:"exam_name"`
	Marks      MarksResponse `json:"marks"`
	Total      int           `json:"total"`
	Percentage float64       `json:"percentage"`
	Grade      string        `json:"grade"`
}

type ExamResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ExtractionResponse returns the normalized candidate record produced
// from a photographed sheet. It has not been written to the store; the
// operator reviews it and saves through the ordinary student endpoint.
type ExtractionResponse struct {
	Candidate StudentResponse `json:"candidate"`
}
