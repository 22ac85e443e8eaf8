package domain

import (
	"errors"
	"regexp"
	"time"
	"unicode/utf8"
)

// Tag-specific validation errors
var (
	// ErrTagNameEmpty is returned when a tag's name is empty.
	ErrTagNameEmpty = errors.New("tag name cannot be empty")

	// ErrTagNameTooLong is returned when a tag's name exceeds 50 characters.
	ErrTagNameTooLong = errors.New("tag name cannot exceed 50 characters")

	// ErrTagColorInvalid is returned when a tag's color is not a hex color string.
	ErrTagColorInvalid = errors.New("tag color must be a hex color string")
)

const (
	maxTagNameLength = 50

	// DefaultTagColor is the gray assigned to tags created without a color.
	DefaultTagColor = "#808080"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Tag categorizes tasks. Tags relate to tasks many-to-many through task_tags
// rows, which exist only as a side effect of task tag-list updates.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTag creates a new Tag with the given name and color, defaulting the
// color to gray when empty. Returns an error if validation fails.
func NewTag(name, color string) (*Tag, error) {
	now := time.Now().UTC()

	tag := &Tag{
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if tag.Color == "" {
		tag.Color = DefaultTagColor
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
// Returns an error if any field fails validation.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return ErrTagNameEmpty
	}

	if utf8.RuneCountInString(t.Name) > maxTagNameLength {
		return ErrTagNameTooLong
	}

	if !hexColorPattern.MatchString(t.Color) {
		return ErrTagColorInvalid
	}

	return nil
}
