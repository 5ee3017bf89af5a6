package server

import (
	"net/http"
	"strconv"
	"time"

	"gridiron/models"
	"gridiron/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createQuestionRequest struct {
	GameID          int64               `json:"game_id"`
	RoomID          *int64              `json:"room_id"`
	Type            models.QuestionType `json:"question_type"`
	Question        string              `json:"question"`
	Threshold       *float64            `json:"threshold"`
	Multiplier      *decimal.Decimal    `json:"multiplier"`
	EntityType      *string             `json:"entity_type"`
	EntityID        *int64              `json:"entity_id"`
	EntityName      *string             `json:"entity_name"`
	BettingDeadline *time.Time          `json:"betting_deadline"`
}

func (h *Handler) CreateQuestion(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	question, err := h.questions.CreateQuestion(c.Request.Context(), service.CreateQuestionParams{
		GameID:          req.GameID,
		RoomID:          req.RoomID,
		Type:            req.Type,
		Prompt:          req.Question,
		Threshold:       req.Threshold,
		Multiplier:      req.Multiplier,
		EntityType:      req.EntityType,
		EntityID:        req.EntityID,
		EntityName:      req.EntityName,
		BettingDeadline: req.BettingDeadline,
	})
	if err != nil {
		respondError(c, err, "failed to create question")
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *Handler) GetQuestion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	question, err := h.questions.GetQuestion(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get question")
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *Handler) UpdateQuestion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Question        *string          `json:"question"`
		Threshold       *float64         `json:"threshold"`
		Multiplier      *decimal.Decimal `json:"multiplier"`
		BettingDeadline *time.Time       `json:"betting_deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	question, err := h.questions.UpdateQuestion(c.Request.Context(), id, service.UpdateQuestionParams{
		Prompt:          req.Question,
		Threshold:       req.Threshold,
		Multiplier:      req.Multiplier,
		BettingDeadline: req.BettingDeadline,
	})
	if err != nil {
		respondError(c, err, "failed to update question")
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *Handler) ListGameQuestions(c *gin.Context) {
	gameID, ok := idParam(c, "gameID")
	if !ok {
		return
	}
	questions, err := h.questions.ListQuestionsByGame(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err, "failed to list questions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *Handler) ListRoomQuestions(c *gin.Context) {
	roomID, ok := idParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.questions.ListQuestionsByRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err, "failed to list questions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// ResolveQuestion settles a question from the observed value, given either as
// the actual_value query parameter or in the JSON body. Multiple-choice
// questions take the winning option index.
func (h *Handler) ResolveQuestion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var actual float64
	if raw := c.Query("actual_value"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "invalid actual_value")
			return
		}
		actual = parsed
	} else {
		var req struct {
			ActualValue *float64 `json:"actual_value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ActualValue == nil {
			badRequest(c, "actual_value is required")
			return
		}
		actual = *req.ActualValue
	}

	result, err := h.resolutions.ResolveQuestion(c.Request.Context(), id, actual)
	if err != nil {
		respondError(c, err, "failed to resolve question")
		return
	}
	c.JSON(http.StatusOK, result)
}
