package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/common/validation"

	"github.com/gosimple/slug"
)

// DifficultyCount breaks a problem count down by tier.
type DifficultyCount struct {
	Easy   int `bson:"easy" json:"easy"`
	Medium int `bson:"medium" json:"medium"`
	Hard   int `bson:"hard" json:"hard"`
}

// Topic is a category in the topic tree. A nil ParentTopicID marks a root
// topic.
type Topic struct {
	ID            string  `bson:"_id" json:"id"`
	Name          string  `bson:"name" json:"name"`
	Slug          string  `bson:"slug" json:"slug"`
	Description   string  `bson:"description,omitempty" json:"description,omitempty"`
	Icon          string  `bson:"icon,omitempty" json:"icon,omitempty"`
	ParentTopicID *string `bson:"parent_topic_id" json:"parent_topic_id"`
	Order         int     `bson:"order" json:"order"`

	DifficultyDistribution DifficultyCount `bson:"difficulty_distribution" json:"difficulty_distribution"`
	TotalProblems          int             `bson:"total_problems" json:"total_problems"`
	IsActive               bool            `bson:"is_active" json:"is_active"`
	Tags                   []string        `bson:"tags,omitempty" json:"tags,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Normalize derives the slug from the name when no explicit slug was
// supplied. Re-running it never overwrites an existing slug.
func (t *Topic) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	if t.Slug == "" && t.Name != "" {
		t.Slug = slug.Make(t.Name)
	}
	t.Slug = strings.ToLower(t.Slug)
}

func (t *Topic) Validate() error {
	n := utf8.RuneCountInString(t.Name)
	if n < 2 {
		return common.NewValidationError("name", "topic name must be at least 2 characters")
	}
	if n > 50 {
		return common.NewValidationError("name", "topic name cannot exceed 50 characters")
	}
	if ok, reason := validation.Slug(t.Slug); !ok {
		return common.NewValidationError("slug", reason)
	}
	if utf8.RuneCountInString(t.Description) > 500 {
		return common.NewValidationError("description", "description cannot exceed 500 characters")
	}
	if t.Icon != "" {
		if ok, reason := validation.IconRef(t.Icon); !ok {
			return common.NewValidationError("icon", reason)
		}
	}
	if t.Order < 0 {
		return common.NewValidationError("order", "order cannot be negative")
	}
	if t.DifficultyDistribution.Easy < 0 || t.DifficultyDistribution.Medium < 0 || t.DifficultyDistribution.Hard < 0 {
		return common.NewValidationError("difficulty_distribution", "count cannot be negative")
	}
	if t.TotalProblems < 0 {
		return common.NewValidationError("total_problems", "total problems cannot be negative")
	}
	if len(t.Tags) > 5 {
		return common.NewValidationError("tags", "maximum 5 tags are allowed")
	}
	return nil
}

// IsParent reports whether this is a root topic. Derived, never persisted.
func (t *Topic) IsParent() bool {
	return t.ParentTopicID == nil
}
