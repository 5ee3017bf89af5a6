package repository

import (
	"context"
	"errors"
	"fmt"

	"gridiron/database"
	"gridiron/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// QuestionRepository implements the QuestionRepository interface
type QuestionRepository struct {
	q queryable
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{q: db.Pool}
}

func newQuestionRepositoryWithTx(tx queryable) *QuestionRepository {
	return &QuestionRepository{q: tx}
}

// The multiplier travels as text so NUMERIC keeps its exact value
const questionColumns = `
	id, game_id, room_id, question_type, prompt, options, correct_index,
	threshold, multiplier::text, entity_type, entity_id, entity_name,
	is_fallback, is_resolved, answer, actual_value, betting_deadline,
	resolved_at, created_at, updated_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	var multiplier string
	err := row.Scan(
		&q.ID,
		&q.GameID,
		&q.RoomID,
		&q.Type,
		&q.Prompt,
		&q.Options,
		&q.CorrectIndex,
		&q.Threshold,
		&multiplier,
		&q.EntityType,
		&q.EntityID,
		&q.EntityName,
		&q.IsFallback,
		&q.IsResolved,
		&q.Answer,
		&q.ActualValue,
		&q.BettingDeadline,
		&q.ResolvedAt,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.Multiplier, err = decimal.NewFromString(multiplier)
	if err != nil {
		return nil, fmt.Errorf("invalid multiplier %q: %w", multiplier, err)
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	return &q, nil
}

func (r *QuestionRepository) getOne(ctx context.Context, query string, args ...any) (*models.Question, error) {
	question, err := scanQuestion(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return question, err
}

func (r *QuestionRepository) getMany(ctx context.Context, query string, args ...any) ([]*models.Question, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*models.Question, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return questions, nil
}

// Create inserts a new question
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.Options == nil {
		question.Options = []string{}
	}

	query := `
		INSERT INTO questions (
			game_id, room_id, question_type, prompt, options, correct_index,
			threshold, multiplier, entity_type, entity_id, entity_name,
			is_fallback, betting_deadline
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		question.GameID,
		question.RoomID,
		question.Type,
		question.Prompt,
		question.Options,
		question.CorrectIndex,
		question.Threshold,
		question.Multiplier.String(),
		question.EntityType,
		question.EntityID,
		question.EntityName,
		question.IsFallback,
		question.BettingDeadline,
	).Scan(&question.ID, &question.CreatedAt, &question.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create question for game %d: %w", question.GameID, err)
	}
	return nil
}

// GetByID retrieves a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	question, err := r.getOne(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return question, nil
}

// GetByIDForShare retrieves a question under a share lock
func (r *QuestionRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1 FOR SHARE`

	question, err := r.getOne(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock question %d: %w", id, err)
	}
	return question, nil
}

// Update saves the editable fields of an unresolved question
func (r *QuestionRepository) Update(ctx context.Context, question *models.Question) (bool, error) {
	query := `
		UPDATE questions
		SET prompt = $1, threshold = $2, multiplier = $3::numeric,
		    betting_deadline = $4, updated_at = NOW()
		WHERE id = $5 AND NOT is_resolved
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		question.Prompt,
		question.Threshold,
		question.Multiplier.String(),
		question.BettingDeadline,
		question.ID,
	).Scan(&question.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update question %d: %w", question.ID, err)
	}
	return true, nil
}

// MarkResolved flips an open question to resolved in a single conditional update
func (r *QuestionRepository) MarkResolved(ctx context.Context, id int64, answer models.Resolution, actualValue float64) (*models.Question, error) {
	query := `
		UPDATE questions
		SET is_resolved = TRUE, answer = $1, actual_value = $2,
		    resolved_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND NOT is_resolved
		RETURNING ` + questionColumns

	question, err := r.getOne(ctx, query, answer, actualValue, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve question %d: %w", id, err)
	}
	return question, nil
}

// GetByGame returns the questions of a game
func (r *QuestionRepository) GetByGame(ctx context.Context, gameID int64) ([]*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE game_id = $1 ORDER BY id`

	questions, err := r.getMany(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for game %d: %w", gameID, err)
	}
	return questions, nil
}

// GetByRoom returns the questions generated for a room
func (r *QuestionRepository) GetByRoom(ctx context.Context, roomID int64) ([]*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE room_id = $1 ORDER BY id`

	questions, err := r.getMany(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for room %d: %w", roomID, err)
	}
	return questions, nil
}
