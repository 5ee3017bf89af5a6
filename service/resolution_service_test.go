package service

import (
	"context"
	"testing"

	"gridiron/events"
	"gridiron/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func resolvedCopy(q *models.Question, answer models.Resolution, actual float64) *models.Question {
	resolved := *q
	resolved.IsResolved = true
	resolved.Answer = &answer
	resolved.ActualValue = &actual
	return &resolved
}

func TestResolutionService_ResolveQuestion_SettlesWinner(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)

	// Alice holds 100 tokens and bet 50 on over 20 at 2x; actual value 25
	question := overUnderQuestion(1, 20)
	bet := &models.Bet{ID: 10, Username: "alice", QuestionID: 1, UserAnswer: models.ResolutionOver, Amount: 50}

	m.questions.On("GetByID", ctx, int64(1)).Return(question, nil)
	m.questions.On("MarkResolved", ctx, int64(1), models.ResolutionOver, 25.0).
		Return(resolvedCopy(question, models.ResolutionOver, 25), nil)
	m.bets.On("GetUnsettledByQuestion", ctx, int64(1)).Return([]*models.Bet{bet}, nil)
	m.users.On("GetByUsernameForUpdate", ctx, "alice").Return(&models.User{Username: "alice", Balance: 100, AvailableBalance: 50}, nil)
	m.bets.On("Settle", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.ID == 10 && *b.IsCorrect && *b.Outcome == 100 && *b.CorrectAnswer == models.ResolutionOver
	})).Return(nil)
	m.users.On("UpdateBalance", ctx, "alice", int64(200)).Return(nil)
	m.history.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeBetWin &&
			h.BalanceBefore == 100 && h.BalanceAfter == 200 && h.ChangeAmount == 100 &&
			h.RelatedID != nil && *h.RelatedID == 10
	})).Return(nil)
	m.events.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	m.events.On("Publish", mock.MatchedBy(func(e events.QuestionResolvedEvent) bool {
		return e.QuestionID == 1 && e.Answer == models.ResolutionOver && e.Winners == 1 && e.TotalPaidOut == 100
	})).Return()

	service := NewResolutionService(m.factory)
	result, err := service.ResolveQuestion(ctx, 1, 25)

	require.NoError(t, err)
	assert.Equal(t, models.ResolutionOver, result.Answer)
	assert.True(t, result.Question.IsResolved)
	require.Len(t, result.Settlements, 1)
	assert.Equal(t, int64(200), result.Settlements[0].BalanceAfter)
	assert.Equal(t, 1, result.Winners)
	assert.Equal(t, 0, result.Losers)
	m.assertExpectations(t)
}

func TestResolutionService_ResolveQuestion_MixedOutcomes(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)
	m.allowEvents()

	question := overUnderQuestion(2, 250.5)
	bets := []*models.Bet{
		{ID: 1, Username: "alice", QuestionID: 2, UserAnswer: models.ResolutionUnder, Amount: 30},
		{ID: 2, Username: "bob", QuestionID: 2, UserAnswer: models.ResolutionOver, Amount: 40},
	}

	m.questions.On("GetByID", ctx, int64(2)).Return(question, nil)
	m.questions.On("MarkResolved", ctx, int64(2), models.ResolutionUnder, 250.0).
		Return(resolvedCopy(question, models.ResolutionUnder, 250), nil)
	m.bets.On("GetUnsettledByQuestion", ctx, int64(2)).Return(bets, nil)
	m.users.On("GetByUsernameForUpdate", ctx, "alice").Return(&models.User{Username: "alice", Balance: 30}, nil)
	m.users.On("GetByUsernameForUpdate", ctx, "bob").Return(&models.User{Username: "bob", Balance: 100}, nil)
	m.bets.On("Settle", ctx, mock.Anything).Return(nil)
	m.users.On("UpdateBalance", ctx, "alice", int64(90)).Return(nil)
	m.users.On("UpdateBalance", ctx, "bob", int64(60)).Return(nil)
	m.history.On("Record", ctx, mock.Anything).Return(nil)

	service := NewResolutionService(m.factory)
	result, err := service.ResolveQuestion(ctx, 2, 250)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Winners)
	assert.Equal(t, 1, result.Losers)
	assert.Equal(t, int64(60), result.TotalPaidOut)
	assert.Equal(t, int64(40), result.TotalCollected)
	assert.False(t, *bets[1].IsCorrect)
	assert.Equal(t, int64(-40), *bets[1].Outcome)
	m.assertExpectations(t)
}

func TestResolutionService_ResolveQuestion_NoBets(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)
	m.allowEvents()

	question := overUnderQuestion(3, 10)
	m.questions.On("GetByID", ctx, int64(3)).Return(question, nil)
	m.questions.On("MarkResolved", ctx, int64(3), models.ResolutionNeutral, 10.0).
		Return(resolvedCopy(question, models.ResolutionNeutral, 10), nil)
	m.bets.On("GetUnsettledByQuestion", ctx, int64(3)).Return([]*models.Bet{}, nil)

	service := NewResolutionService(m.factory)
	result, err := service.ResolveQuestion(ctx, 3, 10)

	require.NoError(t, err)
	assert.Empty(t, result.Settlements)
	m.assertExpectations(t)
}

func TestResolutionService_ResolveQuestion_NotFound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	m.questions.On("GetByID", ctx, int64(9)).Return(nil, nil)

	service := NewResolutionService(m.factory)
	_, err := service.ResolveQuestion(ctx, 9, 1)

	assert.ErrorIs(t, err, ErrNotFound)
	m.assertExpectations(t)
}

func TestResolutionService_ResolveQuestion_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	question := resolvedCopy(overUnderQuestion(1, 20), models.ResolutionOver, 25)
	m.questions.On("GetByID", ctx, int64(1)).Return(question, nil)

	service := NewResolutionService(m.factory)
	_, err := service.ResolveQuestion(ctx, 1, 25)

	assert.ErrorIs(t, err, ErrInvalidState)
	m.questions.AssertNotCalled(t, "MarkResolved", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestResolutionService_ResolveQuestion_LostRace(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	m.questions.On("GetByID", ctx, int64(1)).Return(overUnderQuestion(1, 20), nil)
	// Another resolver flipped the flag between the read and the update
	m.questions.On("MarkResolved", ctx, int64(1), models.ResolutionOver, 25.0).Return(nil, nil)

	service := NewResolutionService(m.factory)
	_, err := service.ResolveQuestion(ctx, 1, 25)

	assert.ErrorIs(t, err, ErrInvalidState)
	m.bets.AssertNotCalled(t, "GetUnsettledByQuestion", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestResolutionService_ResolveQuestion_MissingBettor(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	question := overUnderQuestion(1, 20)
	m.questions.On("GetByID", ctx, int64(1)).Return(question, nil)
	m.questions.On("MarkResolved", ctx, int64(1), models.ResolutionOver, 25.0).
		Return(resolvedCopy(question, models.ResolutionOver, 25), nil)
	m.bets.On("GetUnsettledByQuestion", ctx, int64(1)).
		Return([]*models.Bet{{ID: 4, Username: "gone", UserAnswer: models.ResolutionOver, Amount: 5}}, nil)
	m.users.On("GetByUsernameForUpdate", ctx, "gone").Return(nil, nil)

	service := NewResolutionService(m.factory)
	_, err := service.ResolveQuestion(ctx, 1, 25)

	// The whole resolution is rolled back
	assert.ErrorIs(t, err, ErrConsistency)
	assert.ErrorIs(t, err, ErrNotFound)
	m.uow.AssertNotCalled(t, "Commit")
	m.events.AssertNotCalled(t, "Publish", mock.Anything)
	m.assertExpectations(t)
}

func TestResolutionService_ResolveQuestion_InvalidActualValue(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	question := &models.Question{
		ID:      5,
		Type:    models.QuestionTypeMultipleChoice,
		Options: []string{"a", "b", "c", "d"},
	}
	m.questions.On("GetByID", ctx, int64(5)).Return(question, nil)

	service := NewResolutionService(m.factory)
	_, err := service.ResolveQuestion(ctx, 5, 7)

	assert.ErrorIs(t, err, ErrInvalidArgument)
	m.assertExpectations(t)
}
