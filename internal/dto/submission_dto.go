package dto

import (
	"time"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// AlgorithmSubmitRequest describes the payload for submitting an algorithm draft.
type AlgorithmSubmitRequest struct {
	ProgramID string `json:"program_id" validate:"required,uuid4"`
	Content   string `json:"content" validate:"required"`
}

// CodeSubmitRequest describes the payload for submitting source code.
type CodeSubmitRequest struct {
	ProgramID string  `json:"program_id" validate:"required,uuid4"`
	Code      string  `json:"code" validate:"required"`
	Language  string  `json:"language" validate:"required"`
	Output    *string `json:"output"`
}

// ReviewRequest carries a reviewer decision for either submission kind.
type ReviewRequest struct {
	Decision models.ReviewDecision `json:"decision" validate:"required,oneof=approved rejected"`
	Feedback *string               `json:"feedback"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	ProgramID *string `query:"program_id" validate:"omitempty,uuid4"`
	StudentID *string `query:"student_id" validate:"omitempty,uuid4"`
	Status    *string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// AlgorithmSubmissionResponse serializes an algorithm draft row.
type AlgorithmSubmissionResponse struct {
	ID        string    `json:"id"`
	ProgramID string    `json:"program_id"`
	StudentID string    `json:"student_id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CodeSubmissionResponse serializes a code submission row.
type CodeSubmissionResponse struct {
	ID        string    `json:"id"`
	ProgramID string    `json:"program_id"`
	StudentID string    `json:"student_id"`
	Code      string    `json:"code"`
	Language  string    `json:"language"`
	Output    *string   `json:"output"`
	Status    string    `json:"status"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAlgorithmSubmissionResponse converts a model into a DTO.
func NewAlgorithmSubmissionResponse(model models.AlgorithmSubmission) AlgorithmSubmissionResponse {
	return AlgorithmSubmissionResponse{
		ID:        model.ID,
		ProgramID: model.ProgramID,
		StudentID: model.StudentID,
		Content:   model.Content,
		Status:    model.Status,
		Feedback:  model.Feedback,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAlgorithmSubmissionResponseSlice converts models into DTOs.
func NewAlgorithmSubmissionResponseSlice(submissions []models.AlgorithmSubmission) []AlgorithmSubmissionResponse {
	responses := make([]AlgorithmSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewAlgorithmSubmissionResponse(submission))
	}

	return responses
}

// NewCodeSubmissionResponse converts a model into a DTO.
func NewCodeSubmissionResponse(model models.CodeSubmission) CodeSubmissionResponse {
	return CodeSubmissionResponse{
		ID:        model.ID,
		ProgramID: model.ProgramID,
		StudentID: model.StudentID,
		Code:      model.Code,
		Language:  model.Language,
		Output:    model.Output,
		Status:    model.Status,
		Feedback:  model.Feedback,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewCodeSubmissionResponseSlice converts models into DTOs.
func NewCodeSubmissionResponseSlice(submissions []models.CodeSubmission) []CodeSubmissionResponse {
	responses := make([]CodeSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewCodeSubmissionResponse(submission))
	}

	return responses
}
