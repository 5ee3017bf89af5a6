package service

import (
	"context"
	"fmt"

	"gridiron/models"
)

type friendService struct {
	uowFactory UnitOfWorkFactory
}

// NewFriendService creates a new friend service
func NewFriendService(uowFactory UnitOfWorkFactory) FriendService {
	return &friendService{uowFactory: uowFactory}
}

// SendRequest creates a friend request from one user to another
func (s *friendService) SendRequest(ctx context.Context, fromUsername, toUsername string) (*models.FriendRequest, error) {
	if fromUsername == toUsername {
		return nil, invalidArgument("cannot send a friend request to yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireUser(ctx, uow, fromUsername); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, uow, toUsername); err != nil {
		return nil, err
	}

	friends, err := uow.FriendRepository().AreFriends(ctx, fromUsername, toUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if friends {
		return nil, conflict("%s and %s are already friends", fromUsername, toUsername)
	}

	existing, err := uow.FriendRepository().GetRequest(ctx, fromUsername, toUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}
	if existing != nil {
		return nil, conflict("Request already sent")
	}

	request := &models.FriendRequest{FromUsername: fromUsername, ToUsername: toUsername}
	if err := uow.FriendRepository().CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return request, nil
}

// GetRequests returns the requests addressed to a user
func (s *friendService) GetRequests(ctx context.Context, username string) ([]*models.FriendRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireUser(ctx, uow, username); err != nil {
		return nil, err
	}

	requests, err := uow.FriendRepository().GetIncomingRequests(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend requests: %w", err)
	}
	return requests, nil
}

// AcceptRequest turns a pending request into a two-way friendship
func (s *friendService) AcceptRequest(ctx context.Context, username, fromUsername string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := s.pendingRequest(ctx, uow, fromUsername, username)
	if err != nil {
		return err
	}

	if err := uow.FriendRepository().DeleteRequest(ctx, request.ID); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	if err := uow.FriendRepository().AddFriend(ctx, username, fromUsername); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	if err := uow.FriendRepository().AddFriend(ctx, fromUsername, username); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeclineRequest drops a pending request
func (s *friendService) DeclineRequest(ctx context.Context, username, fromUsername string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := s.pendingRequest(ctx, uow, fromUsername, username)
	if err != nil {
		return err
	}

	if err := uow.FriendRepository().DeleteRequest(ctx, request.ID); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetFriends returns the friend links of a user
func (s *friendService) GetFriends(ctx context.Context, username string) ([]*models.Friend, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireUser(ctx, uow, username); err != nil {
		return nil, err
	}

	friends, err := uow.FriendRepository().GetFriends(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	return friends, nil
}

func (s *friendService) pendingRequest(ctx context.Context, uow UnitOfWork, fromUsername, toUsername string) (*models.FriendRequest, error) {
	request, err := uow.FriendRepository().GetRequest(ctx, fromUsername, toUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	if request == nil {
		return nil, notFound("Request not found")
	}
	return request, nil
}
