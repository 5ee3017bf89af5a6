package server

import (
	"net/http"
	"strconv"

	"gridiron/models"

	"github.com/gin-gonic/gin"
)

// PlaceBet records a wager on an open question
func (h *Handler) PlaceBet(c *gin.Context) {
	var req struct {
		Username   string            `json:"username"`
		QuestionID int64             `json:"question_id"`
		Answer     models.Resolution `json:"answer"`
		Amount     int64             `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if req.Username == "" || req.QuestionID <= 0 || req.Answer == "" {
		badRequest(c, "username, question_id and answer are required")
		return
	}

	bet, err := h.bets.PlaceBet(c.Request.Context(), req.Username, req.QuestionID, req.Answer, req.Amount)
	if err != nil {
		respondError(c, err, "failed to place bet")
		return
	}
	c.JSON(http.StatusCreated, bet)
}

// GetBet returns a single bet
func (h *Handler) GetBet(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	bet, err := h.bets.GetBet(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get bet")
		return
	}
	c.JSON(http.StatusOK, bet)
}

// GetUserBets lists a user's bets; ?active=true keeps only unsettled ones
func (h *Handler) GetUserBets(c *gin.Context) {
	username := c.Param("username")
	active, _ := strconv.ParseBool(c.Query("active"))

	var (
		bets []*models.Bet
		err  error
	)
	if active {
		bets, err = h.bets.GetActiveBets(c.Request.Context(), username)
	} else {
		bets, err = h.bets.GetUserBets(c.Request.Context(), username)
	}
	if err != nil {
		respondError(c, err, "failed to get bets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

func (h *Handler) GetBetSummary(c *gin.Context) {
	summary, err := h.bets.GetBetSummary(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "failed to get bet summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetQuestionBets(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	bets, err := h.bets.GetBetsForQuestion(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get bets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}
