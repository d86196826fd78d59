package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlgorithmSubmission is one student's pseudocode draft for a program.
// Rows are append-only: a resubmission inserts a new row and reviewers only
// ever mutate status and feedback on an existing one.
type AlgorithmSubmission struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID string    `gorm:"type:uuid;not null;index:idx_algo_pair" json:"program_id"`
	StudentID string    `gorm:"type:uuid;not null;index:idx_algo_pair" json:"student_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Status    string    `gorm:"size:32;not null;default:pending" json:"status"`
	Feedback  string    `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (s *AlgorithmSubmission) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsApproved reports whether a reviewer accepted the draft.
func (s AlgorithmSubmission) IsApproved() bool {
	return s.Status == ReviewStatusApproved
}

// IsPending reports whether the draft still awaits review.
func (s AlgorithmSubmission) IsPending() bool {
	return s.Status == ReviewStatusPending
}
