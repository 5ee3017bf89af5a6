package models

import (
	"time"
)

// TimerStopReason explains why a room's question timer ended
type TimerStopReason string

const (
	TimerStopReasonCompleted TimerStopReason = "completed"
	TimerStopReasonCancelled TimerStopReason = "cancelled"
)

// TimerRun represents one execution of a room's question timer
type TimerRun struct {
	ID                 int64            `db:"id" json:"id"`
	RoomID             int64            `db:"room_id" json:"room_id"`
	GameID             int64            `db:"game_id" json:"game_id"`
	StartClock         int              `db:"start_clock" json:"start_clock"`
	FinalClock         *int             `db:"final_clock" json:"final_clock,omitempty"`
	QuestionsGenerated int              `db:"questions_generated" json:"questions_generated"`
	Fallbacks          int              `db:"fallbacks" json:"fallbacks"`
	StopReason         *TimerStopReason `db:"stop_reason" json:"stop_reason,omitempty"`
	ExecutionSummary   map[string]any   `db:"execution_summary" json:"execution_summary"`
	StartedAt          time.Time        `db:"started_at" json:"started_at"`
	FinishedAt         *time.Time       `db:"finished_at" json:"finished_at,omitempty"`
}
