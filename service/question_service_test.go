package service

import (
	"context"
	"testing"

	"gridiron/events"
	"gridiron/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQuestionService_CreateQuestion_DefaultMultiplier(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)

	threshold := 20.5
	m.questions.On("Create", ctx, mock.MatchedBy(func(q *models.Question) bool {
		return q.Type == models.QuestionTypeOverUnder &&
			q.Prompt == "Total passing touchdowns" &&
			q.Multiplier.Equal(decimal.NewFromInt(2))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Question).ID = 12
	}).Return(nil)
	m.events.On("Publish", mock.MatchedBy(func(e events.QuestionCreatedEvent) bool {
		return e.QuestionID == 12 && !e.Fallback
	})).Return()

	service := NewQuestionService(m.factory, decimal.NewFromInt(2))
	question, err := service.CreateQuestion(ctx, CreateQuestionParams{
		GameID:    401,
		Prompt:    " Total passing touchdowns ",
		Threshold: &threshold,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), question.ID)
	assert.True(t, question.IsOpen())
	m.assertExpectations(t)
}

func TestQuestionService_CreateQuestion_Validation(t *testing.T) {
	threshold := 1.0
	zero := decimal.Zero

	tests := []struct {
		name   string
		params CreateQuestionParams
	}{
		{"missing prompt", CreateQuestionParams{Threshold: &threshold}},
		{"missing threshold", CreateQuestionParams{Prompt: "q"}},
		{"multiple choice through the API", CreateQuestionParams{Type: models.QuestionTypeMultipleChoice, Prompt: "q", Threshold: &threshold}},
		{"zero multiplier", CreateQuestionParams{Prompt: "q", Threshold: &threshold, Multiplier: &zero}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			service := NewQuestionService(m.factory, decimal.NewFromInt(2))

			_, err := service.CreateQuestion(context.Background(), tt.params)

			assert.ErrorIs(t, err, ErrInvalidArgument)
			m.factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestQuestionService_CreateGeneratedQuestion(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)

	room := &models.Room{ID: 4, GameID: 401, Started: true}
	generated := models.GeneratedQuestion{
		Question: "Who scores next?",
		Options:  []string{"A", "B", "C", "D"},
		Answer:   3,
	}

	m.questions.On("Create", ctx, mock.MatchedBy(func(q *models.Question) bool {
		return q.Type == models.QuestionTypeMultipleChoice &&
			q.GameID == 401 && *q.RoomID == 4 &&
			*q.CorrectIndex == 3 && q.IsFallback && len(q.Options) == 4
	})).Return(nil)
	m.events.On("Publish", mock.AnythingOfType("events.QuestionCreatedEvent")).Return()

	service := NewQuestionService(m.factory, decimal.NewFromInt(2))
	question, err := service.CreateGeneratedQuestion(ctx, room, generated, true)

	require.NoError(t, err)
	assert.Equal(t, []models.Resolution{"A", "B", "C", "D"}, question.ValidAnswers())
	m.assertExpectations(t)
}

func TestQuestionService_CreateGeneratedQuestion_Malformed(t *testing.T) {
	m := newServiceMocks()
	service := NewQuestionService(m.factory, decimal.NewFromInt(2))
	room := &models.Room{ID: 4, GameID: 401}

	_, err := service.CreateGeneratedQuestion(context.Background(), room, models.GeneratedQuestion{Question: "q", Options: []string{"a"}}, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = service.CreateGeneratedQuestion(context.Background(), room, models.GeneratedQuestion{Question: "q", Options: []string{"a", "b", "c", "d"}, Answer: 4}, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestQuestionService_UpdateQuestion_Resolved(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	question := resolvedCopy(overUnderQuestion(1, 20), models.ResolutionOver, 25)
	m.questions.On("GetByID", ctx, int64(1)).Return(question, nil)

	prompt := "new text"
	service := NewQuestionService(m.factory, decimal.NewFromInt(2))
	_, err := service.UpdateQuestion(ctx, 1, UpdateQuestionParams{Prompt: &prompt})

	assert.ErrorIs(t, err, ErrInvalidState)
	m.assertExpectations(t)
}

func TestQuestionService_UpdateQuestion(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)

	m.questions.On("GetByID", ctx, int64(1)).Return(overUnderQuestion(1, 20), nil)
	m.questions.On("Update", ctx, mock.MatchedBy(func(q *models.Question) bool {
		return *q.Threshold == 30 && q.Multiplier.Equal(decimal.RequireFromString("1.5"))
	})).Return(true, nil)

	threshold := 30.0
	multiplier := decimal.RequireFromString("1.5")
	service := NewQuestionService(m.factory, decimal.NewFromInt(2))
	question, err := service.UpdateQuestion(ctx, 1, UpdateQuestionParams{Threshold: &threshold, Multiplier: &multiplier})

	require.NoError(t, err)
	assert.Equal(t, 30.0, *question.Threshold)
	m.assertExpectations(t)
}

func TestQuestionService_ListQuestionsByRoom_UnknownRoom(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	m.rooms.On("GetByID", ctx, int64(3)).Return(nil, nil)

	service := NewQuestionService(m.factory, decimal.NewFromInt(2))
	_, err := service.ListQuestionsByRoom(ctx, 3)

	assert.ErrorIs(t, err, ErrNotFound)
	m.assertExpectations(t)
}

func TestQuestionService_CreateQuestion_PlayerEntity(t *testing.T) {
	ctx := context.Background()
	threshold := 250.5
	entityType := models.EntityTypePlayer
	playerID := int64(5)

	t.Run("name filled from player", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, true)
		m.allowEvents()
		m.players.On("GetByID", ctx, playerID).Return(&models.Player{ID: 5, GameID: 401, Team: "KC", Name: "Patrick Mahomes"}, nil)
		m.questions.On("Create", ctx, mock.MatchedBy(func(q *models.Question) bool {
			return q.EntityName != nil && *q.EntityName == "Patrick Mahomes" && *q.EntityID == 5
		})).Return(nil)

		_, err := NewQuestionService(m.factory, decimal.NewFromInt(2)).CreateQuestion(ctx, CreateQuestionParams{
			GameID:     401,
			Prompt:     "Passing yards",
			Threshold:  &threshold,
			EntityType: &entityType,
			EntityID:   &playerID,
		})

		require.NoError(t, err)
		m.assertExpectations(t)
	})

	t.Run("player of another game", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, false)
		m.players.On("GetByID", ctx, playerID).Return(&models.Player{ID: 5, GameID: 7}, nil)

		_, err := NewQuestionService(m.factory, decimal.NewFromInt(2)).CreateQuestion(ctx, CreateQuestionParams{
			GameID:     401,
			Prompt:     "Passing yards",
			Threshold:  &threshold,
			EntityType: &entityType,
			EntityID:   &playerID,
		})

		assert.ErrorIs(t, err, ErrInvalidArgument)
		m.questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown player", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, false)
		m.players.On("GetByID", ctx, playerID).Return(nil, nil)

		_, err := NewQuestionService(m.factory, decimal.NewFromInt(2)).CreateQuestion(ctx, CreateQuestionParams{
			GameID:     401,
			Prompt:     "Passing yards",
			Threshold:  &threshold,
			EntityType: &entityType,
			EntityID:   &playerID,
		})

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
