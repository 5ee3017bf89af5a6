package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gridiron/events"
	"gridiron/models"
)

type betService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory) BetService {
	return &betService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// PlaceBet validates and records a wager. The stake stays in the user's
// balance but is reserved: available balance is balance minus the stakes of
// unsettled bets, and settlement later applies the signed outcome.
func (s *betService) PlaceBet(ctx context.Context, username string, questionID int64, answer models.Resolution, amount int64) (*models.Bet, error) {
	if amount <= 0 {
		return nil, invalidArgument("bet amount must be positive")
	}
	answer = models.Resolution(strings.TrimSpace(string(answer)))

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The share lock makes a concurrent resolution wait for this transaction
	question, err := uow.QuestionRepository().GetByIDForShare(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, notFound("Question %d not found", questionID)
	}
	if question.IsResolved {
		return nil, invalidState("Question %d is already resolved", questionID)
	}
	if question.DeadlinePassed(s.now()) {
		return nil, invalidState("Betting on question %d has closed", questionID)
	}
	if !question.AcceptsAnswer(answer) {
		return nil, invalidArgument("%q is not a valid answer for question %d", answer, questionID)
	}

	existing, err := uow.BetRepository().GetByUserAndQuestion(ctx, username, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bet: %w", err)
	}
	if existing != nil {
		return nil, conflict("User %s has already placed a bet on question %d", username, questionID)
	}

	// Locking the user serializes reservations against the same balance
	user, err := uow.UserRepository().GetByUsernameForUpdate(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, notFound("User %s not found", username)
	}
	if user.AvailableBalance < amount {
		return nil, insufficientFunds(user.AvailableBalance, amount)
	}

	bet := &models.Bet{
		Username:   username,
		QuestionID: questionID,
		UserAnswer: answer,
		Amount:     amount,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:      bet.ID,
		Username:   username,
		QuestionID: questionID,
		RoomID:     question.RoomID,
		Answer:     answer,
		Amount:     amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// GetBet retrieves a single bet
func (s *betService) GetBet(ctx context.Context, id int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, notFound("Bet %d not found", id)
	}
	return bet, nil
}

// GetUserBets returns every bet of a user
func (s *betService) GetUserBets(ctx context.Context, username string) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireUser(ctx, uow, username); err != nil {
		return nil, err
	}

	bets, err := uow.BetRepository().GetByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}
	return bets, nil
}

// GetActiveBets returns the unsettled bets of a user
func (s *betService) GetActiveBets(ctx context.Context, username string) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireUser(ctx, uow, username); err != nil {
		return nil, err
	}

	bets, err := uow.BetRepository().GetActiveByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get active bets: %w", err)
	}
	return bets, nil
}

// GetBetsForQuestion returns every bet placed on a question
func (s *betService) GetBetsForQuestion(ctx context.Context, questionID int64) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, notFound("Question %d not found", questionID)
	}

	bets, err := uow.BetRepository().GetByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}
	return bets, nil
}

// GetBetSummary aggregates a user's results
func (s *betService) GetBetSummary(ctx context.Context, username string) (*models.BetSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireUser(ctx, uow, username); err != nil {
		return nil, err
	}

	summary, err := uow.BetRepository().GetSummary(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet summary: %w", err)
	}
	if summary.TotalWagered > 0 {
		summary.ProfitPercentage = float64(summary.TotalProfit) / float64(summary.TotalWagered) * 100
	}
	return summary, nil
}

// requireUser returns ErrNotFound when the user does not exist
func requireUser(ctx context.Context, uow UnitOfWork, username string) error {
	_, err := getUser(ctx, uow, username)
	return err
}
