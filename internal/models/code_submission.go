package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodeSubmission is one student's source-code attempt for a program, created
// only after an algorithm draft for the pair has been approved. Same
// append-only rules as AlgorithmSubmission.
type CodeSubmission struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID string    `gorm:"type:uuid;not null;index:idx_code_pair" json:"program_id"`
	StudentID string    `gorm:"type:uuid;not null;index:idx_code_pair" json:"student_id"`
	Code      string    `gorm:"type:text;not null" json:"code"`
	Language  string    `gorm:"size:32;not null" json:"language"`
	Output    *string   `gorm:"type:text" json:"output"`
	Status    string    `gorm:"size:32;not null;default:pending" json:"status"`
	Feedback  string    `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (s *CodeSubmission) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsApproved reports whether a reviewer accepted the code.
func (s CodeSubmission) IsApproved() bool {
	return s.Status == ReviewStatusApproved
}

// IsPending reports whether the code still awaits review.
func (s CodeSubmission) IsPending() bool {
	return s.Status == ReviewStatusPending
}

// CapturedOutput returns the stored execution output, or empty when none was
// captured alongside the submission.
func (s CodeSubmission) CapturedOutput() string {
	if s.Output == nil {
		return ""
	}
	return *s.Output
}
