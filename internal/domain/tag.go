package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Tag
var (
	ErrEmptyTagID     = errors.New("tag ID cannot be empty")
	ErrEmptyTagName   = errors.New("tag name cannot be empty")
	ErrTagNameTooLong = errors.New("tag name cannot exceed 50 characters")
)

// Tag is a user-defined label attachable to tasks. Tag names are unique
// across the system.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a new Tag with the given name.
func NewTag(name string) (*Tag, error) {
	tag := &Tag{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTagID
	}

	if t.Name == "" {
		return ErrEmptyTagName
	}

	if len(t.Name) > 50 {
		return ErrTagNameTooLong
	}

	return nil
}
