package repository

import (
	"context"
	"errors"
	"fmt"

	"gridiron/database"
	"gridiron/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// userColumns selects a user together with the balance not reserved by open bets
const userColumns = `
	u.username,
	u.balance,
	u.room_id,
	u.created_at,
	u.updated_at,
	u.balance - COALESCE(
		(SELECT SUM(b.amount)
		 FROM bets b
		 WHERE b.username = u.username
		   AND b.is_correct IS NULL),
		0
	) AS available_balance`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.Username,
		&user.Balance,
		&user.RoomID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.AvailableBalance,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		WHERE u.username = $1
	`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}

	return user, nil
}

// GetByUsernameForUpdate locks a user row for the rest of the transaction
// and then reads it. The read is a separate statement so its snapshot is
// taken after the lock is granted: under READ COMMITTED the available
// balance then reflects every bet committed by the previous lock holder.
func (r *UserRepository) GetByUsernameForUpdate(ctx context.Context, username string) (*models.User, error) {
	var locked string
	err := r.q.QueryRow(ctx, `SELECT username FROM users WHERE username = $1 FOR UPDATE`, username).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", username, err)
	}

	return r.GetByUsername(ctx, username)
}

// Create creates a new user with the initial balance
func (r *UserRepository) Create(ctx context.Context, username string, initialBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (username, balance)
		VALUES ($1, $2)
		RETURNING username, balance, room_id, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, username, initialBalance).Scan(
		&user.Username,
		&user.Balance,
		&user.RoomID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}

	// A new user has no open bets
	user.AvailableBalance = user.Balance

	return &user, nil
}

// UpdateBalance sets a user's balance
func (r *UserRepository) UpdateBalance(ctx context.Context, username string, newBalance int64) error {
	query := `
		UPDATE users
		SET balance = $1, updated_at = NOW()
		WHERE username = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, username)
	if err != nil {
		return fmt.Errorf("failed to update balance for user %s: %w", username, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", username)
	}

	return nil
}

// SetRoom moves a user into a room, or out of any room when roomID is nil
func (r *UserRepository) SetRoom(ctx context.Context, username string, roomID *int64) error {
	query := `
		UPDATE users
		SET room_id = $1, updated_at = NOW()
		WHERE username = $2
	`

	result, err := r.q.Exec(ctx, query, roomID, username)
	if err != nil {
		return fmt.Errorf("failed to set room for user %s: %w", username, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", username)
	}

	return nil
}

// GetByRoom returns the members of a room
func (r *UserRepository) GetByRoom(ctx context.Context, roomID int64) ([]*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		WHERE u.room_id = $1
		ORDER BY u.username
	`

	rows, err := r.q.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of room %d: %w", roomID, err)
	}
	return collectUsers(rows)
}

// GetTopByBalance returns the richest users
func (r *UserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		ORDER BY u.balance DESC, u.username
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return collectUsers(rows)
}
