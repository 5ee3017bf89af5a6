package service

import (
	"context"
	"fmt"
	"strings"

	"gridiron/models"
)

type playerService struct {
	uowFactory UnitOfWorkFactory
}

// NewPlayerService creates a new player service
func NewPlayerService(uowFactory UnitOfWorkFactory) PlayerService {
	return &playerService{uowFactory: uowFactory}
}

// ListPlayers returns the players of a game, optionally of one team
func (s *playerService) ListPlayers(ctx context.Context, gameID int64, team string) ([]*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	players, err := uow.PlayerRepository().GetByGame(ctx, gameID, strings.TrimSpace(team))
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// GetPlayer retrieves a player by ID
func (s *playerService) GetPlayer(ctx context.Context, id int64) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return getPlayer(ctx, uow, id)
}

// GetPlayerByName retrieves a player of a game's team by name
func (s *playerService) GetPlayerByName(ctx context.Context, gameID int64, team, name string) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByName(ctx, gameID, team, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, notFound("Player %s of %s not found in game %d", name, team, gameID)
	}
	return player, nil
}

// CreatePlayer adds a player to a game's team
func (s *playerService) CreatePlayer(ctx context.Context, gameID int64, team, name string) (*models.Player, error) {
	team, name, err := playerNames(team, name)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player := &models.Player{GameID: gameID, Team: team, Name: name}
	if err := uow.PlayerRepository().Create(ctx, player); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return player, nil
}

// UpdatePlayer renames a player or moves them to another team
func (s *playerService) UpdatePlayer(ctx context.Context, id int64, team, name string) (*models.Player, error) {
	team, name, err := playerNames(team, name)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player := &models.Player{ID: id, Team: team, Name: name}
	updated, err := uow.PlayerRepository().Update(ctx, player)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, notFound("Player %d not found", id)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return player, nil
}

// DeletePlayer removes a player. Questions that named the player keep their
// entity metadata.
func (s *playerService) DeletePlayer(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.PlayerRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if !deleted {
		return notFound("Player %d not found", id)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func getPlayer(ctx context.Context, uow UnitOfWork, id int64) (*models.Player, error) {
	player, err := uow.PlayerRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, notFound("Player %d not found", id)
	}
	return player, nil
}

func playerNames(team, name string) (string, string, error) {
	team = strings.TrimSpace(team)
	name = strings.TrimSpace(name)
	if team == "" || name == "" {
		return "", "", invalidArgument("player team and name are required")
	}
	return team, name, nil
}
