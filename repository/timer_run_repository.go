package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gridiron/database"
	"gridiron/models"

	"github.com/jackc/pgx/v5"
)

// TimerRunRepository records question timer executions. It works outside the
// unit of work because runs span many service transactions.
type TimerRunRepository struct {
	db *database.DB
}

// NewTimerRunRepository creates a new timer run repository
func NewTimerRunRepository(db *database.DB) *TimerRunRepository {
	return &TimerRunRepository{db: db}
}

// Create records the start of a timer run
func (r *TimerRunRepository) Create(ctx context.Context, run *models.TimerRun) error {
	summaryJSON, err := marshalSummary(run.ExecutionSummary)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO timer_runs (room_id, game_id, start_clock, execution_summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, started_at
	`

	err = r.db.QueryRow(ctx, query, run.RoomID, run.GameID, run.StartClock, summaryJSON).
		Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create timer run for room %d: %w", run.RoomID, err)
	}
	return nil
}

// Complete stores the final state of a run and clears the room's started
// flag in the same transaction
func (r *TimerRunRepository) Complete(ctx context.Context, run *models.TimerRun) error {
	summaryJSON, err := marshalSummary(run.ExecutionSummary)
	if err != nil {
		return err
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE timer_runs
			SET final_clock = $1, questions_generated = $2, fallbacks = $3,
			    stop_reason = $4, execution_summary = $5, finished_at = NOW()
			WHERE id = $6
			RETURNING finished_at
		`
		err := tx.QueryRow(ctx, query,
			run.FinalClock,
			run.QuestionsGenerated,
			run.Fallbacks,
			run.StopReason,
			summaryJSON,
			run.ID,
		).Scan(&run.FinishedAt)
		if err != nil {
			return fmt.Errorf("failed to complete timer run %d: %w", run.ID, err)
		}

		if _, err := tx.Exec(ctx, `UPDATE rooms SET started = FALSE, updated_at = NOW() WHERE id = $1`, run.RoomID); err != nil {
			return fmt.Errorf("failed to clear started flag of room %d: %w", run.RoomID, err)
		}
		return nil
	})
}

// GetLatestByRoom returns the most recent run of a room
func (r *TimerRunRepository) GetLatestByRoom(ctx context.Context, roomID int64) (*models.TimerRun, error) {
	query := `
		SELECT id, room_id, game_id, start_clock, final_clock, questions_generated,
		       fallbacks, stop_reason, execution_summary, started_at, finished_at
		FROM timer_runs
		WHERE room_id = $1
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	var run models.TimerRun
	var summaryJSON []byte

	err := r.db.QueryRow(ctx, query, roomID).Scan(
		&run.ID,
		&run.RoomID,
		&run.GameID,
		&run.StartClock,
		&run.FinalClock,
		&run.QuestionsGenerated,
		&run.Fallbacks,
		&run.StopReason,
		&summaryJSON,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest timer run of room %d: %w", roomID, err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}

func marshalSummary(summary map[string]any) ([]byte, error) {
	if summary == nil {
		summary = map[string]any{}
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution summary: %w", err)
	}
	return summaryJSON, nil
}
