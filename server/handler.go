package server

import (
	"strconv"

	"gridiron/realtime"
	"gridiron/service"

	"github.com/gin-gonic/gin"
)

// Handler groups the HTTP handlers and the services they call
type Handler struct {
	users       service.UserService
	bets        service.BetService
	questions   service.QuestionService
	resolutions service.ResolutionService
	rooms       service.RoomService
	friends     service.FriendService
	players     service.PlayerService
	hub         *realtime.Hub
}

// Services bundles the dependencies of a Handler
type Services struct {
	Users       service.UserService
	Bets        service.BetService
	Questions   service.QuestionService
	Resolutions service.ResolutionService
	Rooms       service.RoomService
	Friends     service.FriendService
	Players     service.PlayerService
}

func NewHandler(services Services, hub *realtime.Hub) *Handler {
	return &Handler{
		users:       services.Users,
		bets:        services.Bets,
		questions:   services.Questions,
		resolutions: services.Resolutions,
		rooms:       services.Rooms,
		friends:     services.Friends,
		players:     services.Players,
		hub:         hub,
	}
}

// idParam reads a positive integer path parameter, writing 400 when it is invalid
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// limitQuery reads the limit query parameter; zero lets the service choose
func limitQuery(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
