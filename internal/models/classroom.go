package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Classroom groups students and the programs published to them.
type Classroom struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	TeacherID string    `gorm:"type:uuid;not null" json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (c *Classroom) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ClassroomMember links a profile to a classroom with the role it holds there.
type ClassroomMember struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ClassroomID string    `gorm:"type:uuid;not null;index" json:"classroom_id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Role        string    `gorm:"size:32;not null;default:student" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (m *ClassroomMember) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
