package repository

import (
	"context"
	"errors"
	"fmt"

	"gridiron/database"
	"gridiron/models"
	"gridiron/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint violation
const uniqueViolation = "23505"

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `
	id, username, question_id, user_answer, amount, correct_answer,
	is_correct, outcome, created_at, resolved_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.Username,
		&bet.QuestionID,
		&bet.UserAnswer,
		&bet.Amount,
		&bet.CorrectAnswer,
		&bet.IsCorrect,
		&bet.Outcome,
		&bet.CreatedAt,
		&bet.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *BetRepository) getMany(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bets := make([]*models.Bet, 0)
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a new unsettled bet
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (username, question_id, user_answer, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, bet.Username, bet.QuestionID, bet.UserAnswer, bet.Amount).
		Scan(&bet.ID, &bet.CreatedAt)
	if isUniqueViolation(err) {
		return &service.DomainError{
			Kind:    service.ErrConflict,
			Message: fmt.Sprintf("User %s has already placed a bet on question %d", bet.Username, bet.QuestionID),
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create bet for user %s: %w", bet.Username, err)
	}
	return nil
}

// GetByID retrieves a bet by ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

// GetByUserAndQuestion retrieves a user's bet on a question
func (r *BetRepository) GetByUserAndQuestion(ctx context.Context, username string, questionID int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE username = $1 AND question_id = $2`

	bet, err := scanBet(r.q.QueryRow(ctx, query, username, questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet of %s on question %d: %w", username, questionID, err)
	}
	return bet, nil
}

// GetByUser returns a user's bets, newest first
func (r *BetRepository) GetByUser(ctx context.Context, username string) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE username = $1 ORDER BY created_at DESC, id DESC`

	bets, err := r.getMany(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets of %s: %w", username, err)
	}
	return bets, nil
}

// GetActiveByUser returns a user's unsettled bets, newest first
func (r *BetRepository) GetActiveByUser(ctx context.Context, username string) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + `
		FROM bets
		WHERE username = $1 AND is_correct IS NULL
		ORDER BY created_at DESC, id DESC
	`

	bets, err := r.getMany(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get active bets of %s: %w", username, err)
	}
	return bets, nil
}

// GetByQuestion returns every bet on a question
func (r *BetRepository) GetByQuestion(ctx context.Context, questionID int64) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE question_id = $1 ORDER BY id`

	bets, err := r.getMany(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets on question %d: %w", questionID, err)
	}
	return bets, nil
}

// GetUnsettledByQuestion locks the open bets of a question. Rows are taken
// in username order, the same order settlement locks users in.
func (r *BetRepository) GetUnsettledByQuestion(ctx context.Context, questionID int64) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + `
		FROM bets
		WHERE question_id = $1 AND is_correct IS NULL
		ORDER BY username
		FOR UPDATE
	`

	bets, err := r.getMany(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unsettled bets on question %d: %w", questionID, err)
	}
	return bets, nil
}

// Settle records a bet's result. Settled bets are never overwritten.
func (r *BetRepository) Settle(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets
		SET correct_answer = $1, is_correct = $2, outcome = $3, resolved_at = NOW()
		WHERE id = $4 AND is_correct IS NULL
		RETURNING resolved_at
	`

	err := r.q.QueryRow(ctx, query, bet.CorrectAnswer, bet.IsCorrect, bet.Outcome, bet.ID).Scan(&bet.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("bet %d is missing or already settled", bet.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to settle bet %d: %w", bet.ID, err)
	}
	return nil
}

// GetSummary aggregates a user's bets
func (r *BetRepository) GetSummary(ctx context.Context, username string) (*models.BetSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_correct),
			COUNT(*) FILTER (WHERE NOT is_correct),
			COUNT(*) FILTER (WHERE is_correct IS NULL),
			COALESCE(SUM(amount) FILTER (WHERE is_correct IS NOT NULL), 0),
			COALESCE(SUM(outcome), 0),
			COALESCE(MAX(outcome) FILTER (WHERE is_correct), 0),
			COALESCE(-MIN(outcome) FILTER (WHERE NOT is_correct), 0)
		FROM bets
		WHERE username = $1
	`

	summary := &models.BetSummary{Username: username}
	err := r.q.QueryRow(ctx, query, username).Scan(
		&summary.TotalBets,
		&summary.TotalWins,
		&summary.TotalLosses,
		&summary.OpenBets,
		&summary.TotalWagered,
		&summary.TotalProfit,
		&summary.BiggestWin,
		&summary.BiggestLoss,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize bets of %s: %w", username, err)
	}
	return summary, nil
}
