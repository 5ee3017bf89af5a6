package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gridiron/events"
	"gridiron/models"

	"github.com/shopspring/decimal"
)

// CreateQuestionParams describes a threshold question created through the API
type CreateQuestionParams struct {
	GameID          int64
	RoomID          *int64
	Type            models.QuestionType
	Prompt          string
	Threshold       *float64
	Multiplier      *decimal.Decimal // nil uses the service default
	EntityType      *string
	EntityID        *int64
	EntityName      *string
	BettingDeadline *time.Time
}

// UpdateQuestionParams lists the editable fields of an open question; nil leaves a field unchanged
type UpdateQuestionParams struct {
	Prompt          *string
	Threshold       *float64
	Multiplier      *decimal.Decimal
	BettingDeadline *time.Time
}

type questionService struct {
	uowFactory        UnitOfWorkFactory
	defaultMultiplier decimal.Decimal
}

// NewQuestionService creates a new question service
func NewQuestionService(uowFactory UnitOfWorkFactory, defaultMultiplier decimal.Decimal) QuestionService {
	return &questionService{
		uowFactory:        uowFactory,
		defaultMultiplier: defaultMultiplier,
	}
}

// CreateQuestion creates an open over/under or yes/no question
func (s *questionService) CreateQuestion(ctx context.Context, params CreateQuestionParams) (*models.Question, error) {
	if params.Type == "" {
		params.Type = models.QuestionTypeOverUnder
	}
	if params.Type != models.QuestionTypeOverUnder && params.Type != models.QuestionTypeYesNo {
		return nil, invalidArgument("question type must be %q or %q", models.QuestionTypeOverUnder, models.QuestionTypeYesNo)
	}
	prompt := strings.TrimSpace(params.Prompt)
	if prompt == "" {
		return nil, invalidArgument("question text is required")
	}
	if params.Threshold == nil {
		return nil, invalidArgument("threshold is required")
	}
	multiplier := s.defaultMultiplier
	if params.Multiplier != nil {
		multiplier = *params.Multiplier
	}
	if !multiplier.IsPositive() {
		return nil, invalidArgument("multiplier must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if params.RoomID != nil {
		room, err := uow.RoomRepository().GetByID(ctx, *params.RoomID)
		if err != nil {
			return nil, fmt.Errorf("failed to get room: %w", err)
		}
		if room == nil {
			return nil, notFound("Room %d not found", *params.RoomID)
		}
	}

	// A player entity must exist in the same game; its name is filled in when omitted
	if params.EntityType != nil && *params.EntityType == models.EntityTypePlayer && params.EntityID != nil {
		player, err := getPlayer(ctx, uow, *params.EntityID)
		if err != nil {
			return nil, err
		}
		if player.GameID != params.GameID {
			return nil, invalidArgument("Player %d does not play in game %d", player.ID, params.GameID)
		}
		if params.EntityName == nil {
			params.EntityName = &player.Name
		}
	}

	question := &models.Question{
		GameID:          params.GameID,
		RoomID:          params.RoomID,
		Type:            params.Type,
		Prompt:          prompt,
		Options:         []string{},
		Threshold:       params.Threshold,
		Multiplier:      multiplier,
		EntityType:      params.EntityType,
		EntityID:        params.EntityID,
		EntityName:      params.EntityName,
		BettingDeadline: params.BettingDeadline,
	}
	if err := uow.QuestionRepository().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	publishQuestionCreated(uow, question)

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return question, nil
}

// CreateGeneratedQuestion persists a multiple-choice question produced for a room
func (s *questionService) CreateGeneratedQuestion(ctx context.Context, room *models.Room, generated models.GeneratedQuestion, fallback bool) (*models.Question, error) {
	if len(generated.Options) != models.OptionCount {
		return nil, invalidArgument("generated question must have %d options, got %d", models.OptionCount, len(generated.Options))
	}
	if generated.Answer < 0 || generated.Answer >= len(generated.Options) {
		return nil, invalidArgument("generated answer index %d is out of range", generated.Answer)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	roomID := room.ID
	correctIndex := generated.Answer
	question := &models.Question{
		GameID:       room.GameID,
		RoomID:       &roomID,
		Type:         models.QuestionTypeMultipleChoice,
		Prompt:       generated.Question,
		Options:      append([]string(nil), generated.Options...),
		CorrectIndex: &correctIndex,
		Multiplier:   s.defaultMultiplier,
		IsFallback:   fallback,
	}
	if err := uow.QuestionRepository().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create generated question: %w", err)
	}

	publishQuestionCreated(uow, question)

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return question, nil
}

// UpdateQuestion edits an open question
func (s *questionService) UpdateQuestion(ctx context.Context, id int64, params UpdateQuestionParams) (*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, notFound("Question %d not found", id)
	}
	if question.IsResolved {
		return nil, invalidState("Question %d is already resolved", id)
	}

	if params.Prompt != nil {
		prompt := strings.TrimSpace(*params.Prompt)
		if prompt == "" {
			return nil, invalidArgument("question text cannot be empty")
		}
		question.Prompt = prompt
	}
	if params.Threshold != nil {
		if question.Type == models.QuestionTypeMultipleChoice {
			return nil, invalidArgument("multiple-choice questions have no threshold")
		}
		question.Threshold = params.Threshold
	}
	if params.Multiplier != nil {
		if !params.Multiplier.IsPositive() {
			return nil, invalidArgument("multiplier must be positive")
		}
		question.Multiplier = *params.Multiplier
	}
	if params.BettingDeadline != nil {
		question.BettingDeadline = params.BettingDeadline
	}

	updated, err := uow.QuestionRepository().Update(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	if !updated {
		return nil, invalidState("Question %d is already resolved", id)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return question, nil
}

// GetQuestion retrieves a question by ID
func (s *questionService) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	question, err := uow.QuestionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, notFound("Question %d not found", id)
	}
	return question, nil
}

// ListQuestionsByGame returns the questions of a game
func (s *questionService) ListQuestionsByGame(ctx context.Context, gameID int64) ([]*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	questions, err := uow.QuestionRepository().GetByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for game %d: %w", gameID, err)
	}
	return questions, nil
}

// ListQuestionsByRoom returns the questions generated for a room
func (s *questionService) ListQuestionsByRoom(ctx context.Context, roomID int64) ([]*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, notFound("Room %d not found", roomID)
	}

	questions, err := uow.QuestionRepository().GetByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for room %d: %w", roomID, err)
	}
	return questions, nil
}

func publishQuestionCreated(uow UnitOfWork, question *models.Question) {
	uow.EventBus().Publish(events.QuestionCreatedEvent{
		QuestionID: question.ID,
		GameID:     question.GameID,
		RoomID:     question.RoomID,
		Kind:       question.Type,
		Prompt:     question.Prompt,
		Options:    question.Options,
		Fallback:   question.IsFallback,
	})
}
