package domain

import "time"

// QuestionType enumerates the supported quiz question kinds.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionText     QuestionType = "text"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMultiple, QuestionText:
		return true
	}
	return false
}

// Question is one quiz item attached to a door. A door's questions are
// always replaced as a whole.
type Question struct {
	ID            string       `json:"id" db:"id"`
	DoorID        string       `json:"door_id" db:"door_id"`
	Position      int          `json:"position" db:"position"`
	Type          QuestionType `json:"type" db:"type"`
	Prompt        string       `json:"prompt" db:"prompt"`
	Options       []string     `json:"options,omitempty" db:"-"`
	CorrectAnswer string       `json:"correct_answer,omitempty" db:"correct_answer"`
	AIGenerated   bool         `json:"ai_generated" db:"ai_generated"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}
