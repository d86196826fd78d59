package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles recognised by the API. Profile identifiers are the subjects the
// identity provider issues, so the row id doubles as the JWT subject.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Profile mirrors an identity-provider account inside the relational store.
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier when none was provided.
func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// CanReview reports whether the profile may approve or reject submissions.
func (p Profile) CanReview() bool {
	return p.Role == RoleTeacher || p.Role == RoleAdmin
}
