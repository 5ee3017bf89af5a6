package server

import (
	"net/http"

	"gridiron/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires middleware, health and metrics endpoints and the API
func NewRouter(h *Handler, limiter *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(metrics.GinMiddleware())
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	api.POST("/users", h.CreateUser)
	api.GET("/users/:username", h.GetUser)
	api.PUT("/users/:username/tokens", h.SetTokens)
	api.GET("/users/:username/history", h.GetBalanceHistory)
	api.GET("/users/:username/bets", h.GetUserBets)
	api.GET("/users/:username/bets/summary", h.GetBetSummary)
	api.GET("/users/:username/friends", h.GetFriends)
	api.GET("/users/:username/friend-requests", h.GetFriendRequests)
	api.GET("/leaderboard", h.GetLeaderboard)

	api.POST("/bets", h.PlaceBet)
	api.GET("/bets/:id", h.GetBet)

	api.POST("/questions", h.CreateQuestion)
	api.GET("/questions/:id", h.GetQuestion)
	api.PATCH("/questions/:id", h.UpdateQuestion)
	api.GET("/questions/:id/bets", h.GetQuestionBets)
	api.POST("/questions/:id/resolve", h.ResolveQuestion)
	api.GET("/games/:gameID/questions", h.ListGameQuestions)
	api.GET("/games/:gameID/players", h.ListPlayers)
	api.GET("/games/:gameID/players/:team/:name", h.GetPlayerByName)

	api.POST("/players", h.CreatePlayer)
	api.GET("/players/:id", h.GetPlayer)
	api.PUT("/players/:id", h.UpdatePlayer)
	api.DELETE("/players/:id", h.DeletePlayer)

	api.GET("/rooms", h.ListRooms)
	api.POST("/rooms", h.CreateRoom)
	api.POST("/rooms/leave", h.LeaveRoom)
	api.GET("/rooms/:id", h.GetRoom)
	api.POST("/rooms/:id/join", h.JoinRoom)
	api.GET("/rooms/:id/questions", h.ListRoomQuestions)
	api.GET("/rooms/:id/timer", h.TimerStatus)
	api.POST("/rooms/:id/timer/start", h.StartTimer)
	api.POST("/rooms/:id/timer/stop", h.StopTimer)
	api.GET("/rooms/:id/live", h.LiveFeed)

	api.POST("/friends/requests", h.SendFriendRequest)
	api.POST("/friends/requests/accept", h.AcceptFriendRequest)
	api.POST("/friends/requests/decline", h.DeclineFriendRequest)

	return r
}
