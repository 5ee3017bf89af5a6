package service

import (
	"context"
	"fmt"

	"gridiron/events"
	"gridiron/models"

	log "github.com/sirupsen/logrus"
)

type resolutionService struct {
	uowFactory UnitOfWorkFactory
}

// NewResolutionService creates the bet resolution engine
func NewResolutionService(uowFactory UnitOfWorkFactory) ResolutionService {
	return &resolutionService{
		uowFactory: uowFactory,
	}
}

// ResolveQuestion settles a question and every bet against it exactly once.
// The question's state transition, each bet's resolution fields and each
// balance update commit together; any failure rolls all of them back.
func (s *resolutionService) ResolveQuestion(ctx context.Context, questionID int64, actualValue float64) (*models.ResolutionResult, error) {
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
	if question.IsResolved {
		return nil, invalidState("Question %d is already resolved", questionID)
	}

	answer, err := DeriveResolution(question, actualValue)
	if err != nil {
		return nil, err
	}

	// Compare-and-set on is_resolved: a concurrent resolver that got here
	// first leaves nothing to update
	resolved, err := uow.QuestionRepository().MarkResolved(ctx, questionID, answer, actualValue)
	if err != nil {
		return nil, fmt.Errorf("failed to mark question resolved: %w", err)
	}
	if resolved == nil {
		return nil, invalidState("Question %d is already resolved", questionID)
	}

	bets, err := uow.BetRepository().GetUnsettledByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for question: %w", err)
	}

	result := &models.ResolutionResult{
		Question:    resolved,
		Answer:      answer,
		Settlements: make([]*models.BetSettlement, 0, len(bets)),
	}

	for _, bet := range bets {
		settlement, err := s.settleBet(ctx, uow, resolved, bet, answer)
		if err != nil {
			return nil, err
		}
		result.Settlements = append(result.Settlements, settlement)

		if *bet.IsCorrect {
			result.Winners++
			result.TotalPaidOut += *bet.Outcome
		} else {
			result.Losers++
			result.TotalCollected += -*bet.Outcome
		}
	}

	uow.EventBus().Publish(events.QuestionResolvedEvent{
		QuestionID:     resolved.ID,
		GameID:         resolved.GameID,
		RoomID:         resolved.RoomID,
		Prompt:         resolved.Prompt,
		Answer:         answer,
		ActualValue:    actualValue,
		Winners:        result.Winners,
		Losers:         result.Losers,
		TotalPaidOut:   result.TotalPaidOut,
		TotalCollected: result.TotalCollected,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"questionID":  questionID,
		"answer":      answer,
		"betsSettled": len(result.Settlements),
		"paidOut":     result.TotalPaidOut,
		"collected":   result.TotalCollected,
	}).Info("Question resolved")

	return result, nil
}

// settleBet writes one bet's resolution fields and applies its outcome to the bettor
func (s *resolutionService) settleBet(ctx context.Context, uow UnitOfWork, question *models.Question, bet *models.Bet, answer models.Resolution) (*models.BetSettlement, error) {
	user, err := uow.UserRepository().GetByUsernameForUpdate(ctx, bet.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", bet.Username, err)
	}
	if user == nil {
		return nil, consistencyError("User %s of bet %d no longer exists", bet.Username, bet.ID)
	}

	correct := bet.UserAnswer == answer
	outcome := SettlementOutcome(bet.Amount, question.Multiplier, correct)

	snapshot := answer
	bet.CorrectAnswer = &snapshot
	bet.IsCorrect = &correct
	bet.Outcome = &outcome
	if err := uow.BetRepository().Settle(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to settle bet %d: %w", bet.ID, err)
	}

	newBalance := user.Balance + outcome
	if newBalance < 0 {
		return nil, consistencyError("Settling bet %d would leave %s with a negative balance", bet.ID, bet.Username)
	}
	if err := uow.UserRepository().UpdateBalance(ctx, bet.Username, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance of %s: %w", bet.Username, err)
	}

	transactionType := models.TransactionTypeBetLoss
	if correct {
		transactionType = models.TransactionTypeBetWin
	}
	relatedType := models.RelatedTypeBet
	history := &models.BalanceHistory{
		Username:        bet.Username,
		BalanceBefore:   user.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    outcome,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"question_id": question.ID,
			"bet_amount":  bet.Amount,
			"user_answer": bet.UserAnswer,
			"answer":      answer,
			"multiplier":  question.Multiplier.String(),
		},
		RelatedID:   &bet.ID,
		RelatedType: &relatedType,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	return &models.BetSettlement{
		Bet:           bet,
		BalanceBefore: user.Balance,
		BalanceAfter:  newBalance,
	}, nil
}
