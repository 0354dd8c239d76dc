package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionImageChoice    QuestionType = "image_choice"
	QuestionRating         QuestionType = "rating"
	QuestionText           QuestionType = "text"
	QuestionYesNo          QuestionType = "yes_no"
	QuestionRanking        QuestionType = "ranking"
)

// IsChoice reports whether answers to this question type are tallied per
// option in the results.
func (t QuestionType) IsChoice() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionImageChoice, QuestionYesNo:
		return true
	}
	return false
}

type OptionType string

const (
	OptionText    OptionType = "text"
	OptionImage   OptionType = "image"
	OptionNumeric OptionType = "numeric"
)

type Poll struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	// AllowAnonymous is a typed policy flag; polls created without an
	// explicit value default to true.
	AllowAnonymous bool           `json:"allow_anonymous"`
	StartsAt       *time.Time     `json:"starts_at,omitempty"`
	EndsAt         *time.Time     `json:"ends_at,omitempty"`
	Settings       map[string]any `json:"settings,omitempty"`
	Questions      []Question     `json:"questions,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// OpenForVoting checks the activity window. Nil bounds are unbounded and the
// window is inclusive. The returned error wraps ErrPollNotOpen with a
// cause-specific message.
func (p *Poll) OpenForVoting(now time.Time) error {
	if !p.IsActive {
		return fmt.Errorf("%w: poll is not active", ErrPollNotOpen)
	}
	if p.StartsAt != nil && p.StartsAt.After(now) {
		return fmt.Errorf("%w: poll has not started yet", ErrPollNotOpen)
	}
	if p.EndsAt != nil && p.EndsAt.Before(now) {
		return fmt.Errorf("%w: poll has ended", ErrPollNotOpen)
	}
	return nil
}

// Question lookup by id. Sibling order follows the explicit sort order, not
// insertion order.
func (p *Poll) QuestionByID(id uuid.UUID) *Question {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i]
		}
	}
	return nil
}

type Question struct {
	ID            uuid.UUID    `json:"id"`
	PollID        uuid.UUID    `json:"poll_id"`
	Type          QuestionType `json:"type"`
	Title         string       `json:"title"`
	IsRequired    bool         `json:"is_required"`
	AllowMultiple bool         `json:"allow_multiple"`
	SortOrder     int          `json:"sort_order"`
	Options       []Option     `json:"options,omitempty"`
}

type Option struct {
	ID           uuid.UUID  `json:"id"`
	QuestionID   uuid.UUID  `json:"question_id"`
	Type         OptionType `json:"type"`
	TextContent  string     `json:"text_content,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	NumericValue *float64   `json:"numeric_value,omitempty"`
	SortOrder    int        `json:"sort_order"`
	Weight       *float64   `json:"weight,omitempty"`
}

// Label is the display text used in results, falling back to the id for
// image-only options.
func (o *Option) Label() string {
	if o.TextContent != "" {
		return o.TextContent
	}
	return o.ID.String()
}
