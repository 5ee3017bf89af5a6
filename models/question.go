package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// QuestionType determines how a question's answer is derived on resolution
type QuestionType string

const (
	QuestionTypeOverUnder      QuestionType = "over_under"
	QuestionTypeYesNo          QuestionType = "yes_no"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Resolution is the categorical answer of a resolved question and the
// prediction carried by a bet
type Resolution string

const (
	ResolutionOver    Resolution = "over"
	ResolutionUnder   Resolution = "under"
	ResolutionNeutral Resolution = "neutral"
	ResolutionYes     Resolution = "yes"
	ResolutionNo      Resolution = "no"
)

// OptionCount is the fixed number of options of a multiple-choice question
const OptionCount = 4

// ChoiceResolution returns the resolution letter for a zero-based option index
func ChoiceResolution(index int) Resolution {
	return Resolution(string(rune('A' + index)))
}

// Question is a single betting prompt tied to a game and optionally a room
type Question struct {
	ID              int64           `db:"id" json:"id"`
	GameID          int64           `db:"game_id" json:"game_id"`
	RoomID          *int64          `db:"room_id" json:"room_id,omitempty"`
	Type            QuestionType    `db:"question_type" json:"question_type"`
	Prompt          string          `db:"prompt" json:"question"`
	Options         []string        `db:"options" json:"options"`
	CorrectIndex    *int            `db:"correct_index" json:"correct_index,omitempty"`
	Threshold       *float64        `db:"threshold" json:"threshold,omitempty"`
	Multiplier      decimal.Decimal `db:"multiplier" json:"multiplier"`
	EntityType      *string         `db:"entity_type" json:"entity_type,omitempty"`
	EntityID        *int64          `db:"entity_id" json:"entity_id,omitempty"`
	EntityName      *string         `db:"entity_name" json:"entity_name,omitempty"`
	IsFallback      bool            `db:"is_fallback" json:"is_fallback"`
	IsResolved      bool            `db:"is_resolved" json:"is_resolved"`
	Answer          *Resolution     `db:"answer" json:"answer,omitempty"`
	ActualValue     *float64        `db:"actual_value" json:"actual_value,omitempty"`
	BettingDeadline *time.Time      `db:"betting_deadline" json:"betting_deadline,omitempty"`
	ResolvedAt      *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// MarshalJSON hides the designated option of a multiple-choice question
// until the question is resolved
func (q Question) MarshalJSON() ([]byte, error) {
	type plain Question
	if !q.IsResolved {
		q.CorrectIndex = nil
	}
	return json.Marshal(plain(q))
}

// IsOpen checks if the question still accepts resolution
func (q *Question) IsOpen() bool {
	return !q.IsResolved
}

// DeadlinePassed reports whether the betting window closed before now
func (q *Question) DeadlinePassed(now time.Time) bool {
	return q.BettingDeadline != nil && !now.Before(*q.BettingDeadline)
}

// ValidAnswers lists the predictions a bet on this question may carry
func (q *Question) ValidAnswers() []Resolution {
	switch q.Type {
	case QuestionTypeOverUnder:
		return []Resolution{ResolutionOver, ResolutionUnder, ResolutionNeutral}
	case QuestionTypeYesNo:
		return []Resolution{ResolutionYes, ResolutionNo}
	case QuestionTypeMultipleChoice:
		answers := make([]Resolution, len(q.Options))
		for i := range q.Options {
			answers[i] = ChoiceResolution(i)
		}
		return answers
	}
	return nil
}

// AcceptsAnswer checks whether answer is a valid prediction for this question
func (q *Question) AcceptsAnswer(answer Resolution) bool {
	for _, valid := range q.ValidAnswers() {
		if valid == answer {
			return true
		}
	}
	return false
}

// GeneratedQuestion is the structured output of question generation
type GeneratedQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}
