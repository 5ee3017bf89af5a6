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

// FriendRepository implements the FriendRepository interface
type FriendRepository struct {
	q queryable
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *database.DB) *FriendRepository {
	return &FriendRepository{q: db.Pool}
}

func newFriendRepositoryWithTx(tx queryable) *FriendRepository {
	return &FriendRepository{q: tx}
}

// CreateRequest inserts a pending friend request
func (r *FriendRepository) CreateRequest(ctx context.Context, request *models.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (from_username, to_username)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, request.FromUsername, request.ToUsername).Scan(&request.ID, &request.CreatedAt)
	if isUniqueViolation(err) {
		return &service.DomainError{Kind: service.ErrConflict, Message: "Request already sent"}
	}
	if err != nil {
		return fmt.Errorf("failed to create friend request from %s: %w", request.FromUsername, err)
	}
	return nil
}

// GetRequest retrieves the request from one user to another
func (r *FriendRepository) GetRequest(ctx context.Context, fromUsername, toUsername string) (*models.FriendRequest, error) {
	query := `
		SELECT id, from_username, to_username, created_at
		FROM friend_requests
		WHERE from_username = $1 AND to_username = $2
	`

	var request models.FriendRequest
	err := r.q.QueryRow(ctx, query, fromUsername, toUsername).
		Scan(&request.ID, &request.FromUsername, &request.ToUsername, &request.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request from %s: %w", fromUsername, err)
	}
	return &request, nil
}

// GetIncomingRequests returns the requests sent to a user, oldest first
func (r *FriendRepository) GetIncomingRequests(ctx context.Context, username string) ([]*models.FriendRequest, error) {
	query := `
		SELECT id, from_username, to_username, created_at
		FROM friend_requests
		WHERE to_username = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend requests of %s: %w", username, err)
	}
	defer rows.Close()

	requests := make([]*models.FriendRequest, 0)
	for rows.Next() {
		var request models.FriendRequest
		if err := rows.Scan(&request.ID, &request.FromUsername, &request.ToUsername, &request.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend requests: %w", err)
	}
	return requests, nil
}

// DeleteRequest removes a friend request
func (r *FriendRepository) DeleteRequest(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friend request %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friend request %d not found", id)
	}
	return nil
}

// AddFriend inserts one direction of a friendship; existing links are left alone
func (r *FriendRepository) AddFriend(ctx context.Context, username, friendUsername string) error {
	query := `
		INSERT INTO friends (username, friend_username)
		VALUES ($1, $2)
		ON CONFLICT (username, friend_username) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, username, friendUsername); err != nil {
		return fmt.Errorf("failed to add friend %s for %s: %w", friendUsername, username, err)
	}
	return nil
}

// AreFriends checks whether username lists friendUsername as a friend
func (r *FriendRepository) AreFriends(ctx context.Context, username, friendUsername string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM friends WHERE username = $1 AND friend_username = $2)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, username, friendUsername).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check friendship of %s: %w", username, err)
	}
	return exists, nil
}

// GetFriends returns a user's friends ordered by name
func (r *FriendRepository) GetFriends(ctx context.Context, username string) ([]*models.Friend, error) {
	query := `
		SELECT id, username, friend_username, created_at
		FROM friends
		WHERE username = $1
		ORDER BY friend_username
	`

	rows, err := r.q.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends of %s: %w", username, err)
	}
	defer rows.Close()

	friends := make([]*models.Friend, 0)
	for rows.Next() {
		var friend models.Friend
		if err := rows.Scan(&friend.ID, &friend.Username, &friend.FriendUsername, &friend.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, &friend)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}
