package dto

import "time"

// RecordResponse is the assembled export record for one (program, student)
// pair: the approved algorithm, the approved code and its captured output.
type RecordResponse struct {
	ProgramID   string    `json:"program_id"`
	StudentID   string    `json:"student_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Algorithm   string    `json:"algorithm"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	Output      string    `json:"output"`
	ApprovedAt  time.Time `json:"approved_at"`
}
