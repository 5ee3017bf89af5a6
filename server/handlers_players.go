package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type playerRequest struct {
	GameID int64  `json:"game_id"`
	Team   string `json:"team"`
	Name   string `json:"name"`
}

// ListPlayers lists a game's players; ?team= narrows to one team
func (h *Handler) ListPlayers(c *gin.Context) {
	gameID, ok := idParam(c, "gameID")
	if !ok {
		return
	}

	players, err := h.players.ListPlayers(c.Request.Context(), gameID, c.Query("team"))
	if err != nil {
		respondError(c, err, "failed to list players")
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}

func (h *Handler) GetPlayerByName(c *gin.Context) {
	gameID, ok := idParam(c, "gameID")
	if !ok {
		return
	}

	player, err := h.players.GetPlayerByName(c.Request.Context(), gameID, c.Param("team"), c.Param("name"))
	if err != nil {
		respondError(c, err, "failed to get player")
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *Handler) GetPlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	player, err := h.players.GetPlayer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get player")
		return
	}
	c.JSON(http.StatusOK, player)
}

// CreatePlayer adds a player to a game's roster
func (h *Handler) CreatePlayer(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if req.GameID <= 0 {
		badRequest(c, "game_id is required")
		return
	}

	player, err := h.players.CreatePlayer(c.Request.Context(), req.GameID, req.Team, req.Name)
	if err != nil {
		respondError(c, err, "failed to create player")
		return
	}
	c.JSON(http.StatusCreated, player)
}

// UpdatePlayer replaces a player's team and name
func (h *Handler) UpdatePlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	player, err := h.players.UpdatePlayer(c.Request.Context(), id, req.Team, req.Name)
	if err != nil {
		respondError(c, err, "failed to update player")
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *Handler) DeletePlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.players.DeletePlayer(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to delete player")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
