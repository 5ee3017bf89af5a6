package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type friendRequestBody struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *Handler) SendFriendRequest(c *gin.Context) {
	var req friendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil || req.From == "" || req.To == "" {
		badRequest(c, "from and to are required")
		return
	}
	request, err := h.friends.SendRequest(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondError(c, err, "failed to send friend request")
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *Handler) GetFriendRequests(c *gin.Context) {
	requests, err := h.friends.GetRequests(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "failed to get friend requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// AcceptFriendRequest accepts the request sent by "from" to "to"
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	var req friendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil || req.From == "" || req.To == "" {
		badRequest(c, "from and to are required")
		return
	}
	if err := h.friends.AcceptRequest(c.Request.Context(), req.To, req.From); err != nil {
		respondError(c, err, "failed to accept friend request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *Handler) DeclineFriendRequest(c *gin.Context) {
	var req friendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil || req.From == "" || req.To == "" {
		badRequest(c, "from and to are required")
		return
	}
	if err := h.friends.DeclineRequest(c.Request.Context(), req.To, req.From); err != nil {
		respondError(c, err, "failed to decline friend request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}

func (h *Handler) GetFriends(c *gin.Context) {
	friends, err := h.friends.GetFriends(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "failed to get friends")
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
