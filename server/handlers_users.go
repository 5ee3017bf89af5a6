package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CreateUser returns the user, creating it with the starting balance when new
func (h *Handler) CreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	user, err := h.users.GetOrCreateUser(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondError(c, err, "failed to create user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "failed to get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetTokens overwrites a user's balance
func (h *Handler) SetTokens(c *gin.Context) {
	var req struct {
		Tokens *int64 `json:"tokens"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Tokens == nil {
		badRequest(c, "invalid payload")
		return
	}
	user, err := h.users.SetTokens(c.Request.Context(), c.Param("username"), *req.Tokens)
	if err != nil {
		respondError(c, err, "failed to set tokens")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) GetBalanceHistory(c *gin.Context) {
	history, err := h.users.GetBalanceHistory(c.Request.Context(), c.Param("username"), limitQuery(c))
	if err != nil {
		respondError(c, err, "failed to get balance history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *Handler) GetLeaderboard(c *gin.Context) {
	entries, err := h.users.GetLeaderboard(c.Request.Context(), limitQuery(c))
	if err != nil {
		respondError(c, err, "failed to get leaderboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
