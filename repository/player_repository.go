package repository

import (
	"context"
	"errors"
	"fmt"

	"gridiron/database"
	"gridiron/models"
	"gridiron/service"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository implements the PlayerRepository interface
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

func newPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

const playerColumns = `id, game_id, team, name, created_at, updated_at`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var player models.Player
	err := row.Scan(&player.ID, &player.GameID, &player.Team, &player.Name, &player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *PlayerRepository) getOne(ctx context.Context, query string, args ...any) (*models.Player, error) {
	player, err := scanPlayer(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return player, err
}

// Create inserts a player. The (game, team, name) triple is unique.
func (r *PlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (game_id, team, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, player.GameID, player.Team, player.Name).
		Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
	if isUniqueViolation(err) {
		return &service.DomainError{
			Kind:    service.ErrConflict,
			Message: fmt.Sprintf("Player %s of %s already exists for game %d", player.Name, player.Team, player.GameID),
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create player %s: %w", player.Name, err)
	}
	return nil
}

// GetByID retrieves a player by ID
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	player, err := r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

// GetByName retrieves a player of a team by name
func (r *PlayerRepository) GetByName(ctx context.Context, gameID int64, team, name string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 AND team = $2 AND name = $3`

	player, err := r.getOne(ctx, query, gameID, team, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", name, err)
	}
	return player, nil
}

// GetByGame returns the players of a game, restricted to one team when team is not empty
func (r *PlayerRepository) GetByGame(ctx context.Context, gameID int64, team string) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE game_id = $1 AND ($2::text = '' OR team = $2)
		ORDER BY team, name
	`

	rows, err := r.q.Query(ctx, query, gameID, team)
	if err != nil {
		return nil, fmt.Errorf("failed to get players of game %d: %w", gameID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

// Update saves a player's name and team. Returns false when the player does not exist.
func (r *PlayerRepository) Update(ctx context.Context, player *models.Player) (bool, error) {
	query := `
		UPDATE players
		SET name = $1, team = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING game_id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, player.Name, player.Team, player.ID).
		Scan(&player.GameID, &player.CreatedAt, &player.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if isUniqueViolation(err) {
		return false, &service.DomainError{
			Kind:    service.ErrConflict,
			Message: fmt.Sprintf("Player %s of %s already exists", player.Name, player.Team),
		}
	}
	if err != nil {
		return false, fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	return true, nil
}

// Delete removes a player. Returns false when the player does not exist.
func (r *PlayerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}
