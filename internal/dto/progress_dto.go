package dto

import (
	"time"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// PairProgressResponse is the derived status for a single (program, student)
// pair, together with the latest row of each submission kind so clients can
// show rejection feedback without a second round trip.
type PairProgressResponse struct {
	ProgramID       string                       `json:"program_id"`
	StudentID       string                       `json:"student_id"`
	Status          models.ProgressStatus        `json:"status"`
	LatestAlgorithm *AlgorithmSubmissionResponse `json:"latest_algorithm,omitempty"`
	LatestCode      *CodeSubmissionResponse      `json:"latest_code,omitempty"`
}

// ProgressBoardEntry is one program's derived stage on a student's board.
type ProgressBoardEntry struct {
	ProgramID string                `json:"program_id"`
	Title     string                `json:"title"`
	Status    models.ProgressStatus `json:"status"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ProgressBoardResponse aggregates a student's stage across all programs.
type ProgressBoardResponse struct {
	StudentID   string               `json:"student_id"`
	Entries     []ProgressBoardEntry `json:"entries"`
	Summary     ProgressSummary      `json:"summary"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// ProgressSummary counts board entries per coarse bucket.
type ProgressSummary struct {
	Total         int `json:"total"`
	NotStarted    int `json:"not_started"`
	InReview      int `json:"in_review"`
	Rejected      int `json:"rejected"`
	CodingStage   int `json:"coding_stage"`
	FinalApproved int `json:"final_approved"`
}

// ClassProgressRow is one student's derived status for a single program.
type ClassProgressRow struct {
	StudentID   string                `json:"student_id"`
	StudentName string                `json:"student_name"`
	Status      models.ProgressStatus `json:"status"`
}

// ClassProgressResponse is the teacher-facing matrix for one program.
type ClassProgressResponse struct {
	ProgramID string             `json:"program_id"`
	Title     string             `json:"title"`
	Rows      []ClassProgressRow `json:"rows"`
}
