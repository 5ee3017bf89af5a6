package repository

import (
	"context"
	"errors"
	"fmt"

	"gridiron/database"
	"gridiron/models"

	"github.com/jackc/pgx/v5"
)

// RoomRepository implements the RoomRepository interface
type RoomRepository struct {
	q queryable
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{q: db.Pool}
}

func newRoomRepositoryWithTx(tx queryable) *RoomRepository {
	return &RoomRepository{q: tx}
}

// Create inserts a new room
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (game_id, started)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, room.GameID, room.Started).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room for game %d: %w", room.GameID, err)
	}
	return nil
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	query := `
		SELECT id, game_id, started, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`

	var room models.Room
	err := r.q.QueryRow(ctx, query, id).Scan(&room.ID, &room.GameID, &room.Started, &room.CreatedAt, &room.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room %d: %w", id, err)
	}
	return &room, nil
}

// GetAll returns every room
func (r *RoomRepository) GetAll(ctx context.Context) ([]*models.Room, error) {
	query := `
		SELECT id, game_id, started, created_at, updated_at
		FROM rooms
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]*models.Room, 0)
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.GameID, &room.Started, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}
	return rooms, nil
}

// SetStarted flips the started flag of a room
func (r *RoomRepository) SetStarted(ctx context.Context, id int64, started bool) error {
	query := `
		UPDATE rooms
		SET started = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, started, id)
	if err != nil {
		return fmt.Errorf("failed to update room %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %d not found", id)
	}
	return nil
}
