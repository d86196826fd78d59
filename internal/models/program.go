package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Program status values.
const (
	ProgramStatusActive   = "active"
	ProgramStatusArchived = "archived"
)

// ProgramMetadata is the typed metadata sub-record attached to a program.
type ProgramMetadata struct {
	Difficulty   string `json:"difficulty,omitempty"`
	InputFormat  string `json:"input_format,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
	Constraints  string `json:"constraints,omitempty"`
	SampleInput  string `json:"sample_input,omitempty"`
	SampleOutput string `json:"sample_output,omitempty"`
}

// Program represents a published unit of work students complete.
type Program struct {
	ID          string                              `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                              `gorm:"size:255;not null" json:"title"`
	Description string                              `gorm:"type:text" json:"description"`
	Status      string                              `gorm:"size:32;not null;default:active" json:"status"`
	ClassroomID *string                             `gorm:"type:uuid;index" json:"classroom_id"`
	CreatedBy   string                              `gorm:"type:uuid;not null" json:"created_by"`
	Metadata    datatypes.JSONType[ProgramMetadata] `json:"metadata"`
	CreatedAt   time.Time                           `json:"created_at"`
	UpdatedAt   time.Time                           `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (p *Program) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether the teacher identified by id published the program.
func (p Program) OwnedBy(id string) bool {
	return p.CreatedBy == id
}
