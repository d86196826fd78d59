package dto

import (
	"time"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// ProgramMetadataPayload carries the typed metadata sub-record over the wire.
type ProgramMetadataPayload struct {
	Difficulty   string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	InputFormat  string `json:"input_format"`
	OutputFormat string `json:"output_format"`
	Constraints  string `json:"constraints"`
	SampleInput  string `json:"sample_input"`
	SampleOutput string `json:"sample_output"`
}

// ProgramCreateRequest describes the payload for publishing a program.
type ProgramCreateRequest struct {
	Title       string                  `json:"title" validate:"required,min=3,max=255"`
	Description string                  `json:"description"`
	ClassroomID *string                 `json:"classroom_id" validate:"omitempty,uuid4"`
	Metadata    *ProgramMetadataPayload `json:"metadata"`
}

// ProgramUpdateRequest describes the metadata edits the owning teacher may make.
type ProgramUpdateRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string                 `json:"description"`
	Status      *string                 `json:"status" validate:"omitempty,oneof=active archived"`
	Metadata    *ProgramMetadataPayload `json:"metadata"`
}

// ProgramFilter describes query string filters for listing programs.
type ProgramFilter struct {
	ClassroomID *string `query:"classroom_id" validate:"omitempty,uuid4"`
	Search      string  `query:"search"`
	Sort        string  `query:"sort"`
	Page        int     `query:"page" validate:"omitempty,gte=1"`
	PageSize    int     `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ProgramResponse is returned to API clients when viewing programs.
type ProgramResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      string                 `json:"status"`
	ClassroomID *string                `json:"classroom_id"`
	CreatedBy   string                 `json:"created_by"`
	Metadata    models.ProgramMetadata `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ProgramListResponse wraps a page of programs with the total row count.
type ProgramListResponse struct {
	Programs []ProgramResponse `json:"programs"`
	Total    int64             `json:"total"`
}

// NewProgramResponse converts a Program model into a DTO.
func NewProgramResponse(model models.Program) ProgramResponse {
	return ProgramResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Status:      model.Status,
		ClassroomID: model.ClassroomID,
		CreatedBy:   model.CreatedBy,
		Metadata:    model.Metadata.Data(),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewProgramResponseSlice converts program models into DTOs.
func NewProgramResponseSlice(programs []models.Program) []ProgramResponse {
	responses := make([]ProgramResponse, 0, len(programs))
	for _, program := range programs {
		responses = append(responses, NewProgramResponse(program))
	}

	return responses
}
