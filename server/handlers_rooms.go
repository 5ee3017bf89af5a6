package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type usernameRequest struct {
	Username string `json:"username"`
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to list rooms")
		return
	}

	type roomDTO struct {
		ID      int64 `json:"id"`
		GameID  int64 `json:"game_id"`
		Started bool  `json:"started"`
		Online  int   `json:"online"`
	}
	out := make([]roomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomDTO{ID: r.ID, GameID: r.GameID, Started: r.Started, Online: h.hub.Online(r.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		GameID   int64  `json:"game_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	detail, err := h.rooms.CreateRoom(c.Request.Context(), req.Username, req.GameID)
	if err != nil {
		respondError(c, err, "failed to create room")
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.rooms.GetRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get room")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) JoinRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	detail, err := h.rooms.JoinRoom(c.Request.Context(), id, req.Username)
	if err != nil {
		respondError(c, err, "failed to join room")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) LeaveRoom(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := h.rooms.LeaveRoom(c.Request.Context(), req.Username); err != nil {
		respondError(c, err, "failed to leave room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

func (h *Handler) StartTimer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.rooms.StartTimer(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to start timer")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"room_id": id, "running": true})
}

func (h *Handler) StopTimer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.rooms.StopTimer(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to stop timer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": id, "running": false})
}

func (h *Handler) TimerStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	running, err := h.rooms.TimerRunning(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get timer status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": id, "running": running})
}

// LiveFeed upgrades to a websocket streaming the room's events
func (h *Handler) LiveFeed(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.rooms.GetRoom(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to open live feed")
		return
	}
	h.hub.Serve(c.Writer, c.Request, id, c.Query("username"))
}
