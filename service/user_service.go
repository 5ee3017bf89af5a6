package service

import (
	"context"
	"fmt"
	"strings"

	"gridiron/models"
)

// userService implements the UserService interface
type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, startingBalance int64) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// GetOrCreateUser retrieves an existing user or creates a new one with the starting balance
func (s *userService) GetOrCreateUser(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalidArgument("username is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// Primary key on username prevents duplicate users
	user, err = uow.UserRepository().Create(ctx, username, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		Username:        username,
		BalanceBefore:   0,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by username
func (s *userService) GetUser(ctx context.Context, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, notFound("User %s not found", username)
	}
	return user, nil
}

// SetTokens overwrites a user's balance. The new balance may not drop below
// the stakes reserved by unsettled bets.
func (s *userService) SetTokens(ctx context.Context, username string, tokens int64) (*models.User, error) {
	if tokens < 0 {
		return nil, invalidArgument("tokens cannot be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsernameForUpdate(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, notFound("User %s not found", username)
	}

	reserved := user.ReservedBalance()
	if tokens < reserved {
		return nil, invalidArgument("User %s has %d tokens reserved in open bets", username, reserved)
	}
	if tokens == user.Balance {
		return user, nil
	}

	if err := uow.UserRepository().UpdateBalance(ctx, username, tokens); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	history := &models.BalanceHistory{
		Username:            username,
		BalanceBefore:       user.Balance,
		BalanceAfter:        tokens,
		ChangeAmount:        tokens - user.Balance,
		TransactionType:     models.TransactionTypeAdminAdjustment,
		TransactionMetadata: map[string]any{},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.Balance = tokens
	user.AvailableBalance = tokens - reserved
	return user, nil
}

// GetLeaderboard returns users ranked by balance
func (s *userService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetTopByBalance(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &models.LeaderboardEntry{
			Rank:             i + 1,
			Username:         user.Username,
			Balance:          user.Balance,
			AvailableBalance: user.AvailableBalance,
		})
	}
	return entries, nil
}

// GetBalanceHistory returns the most recent balance changes of a user
func (s *userService) GetBalanceHistory(ctx context.Context, username string, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireUser(ctx, uow, username); err != nil {
		return nil, err
	}

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return history, nil
}
