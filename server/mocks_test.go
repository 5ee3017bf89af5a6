package server

import (
	"context"

	"gridiron/models"
	"gridiron/service"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetOrCreateUser(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) SetTokens(ctx context.Context, username string, tokens int64) (*models.User, error) {
	args := m.Called(ctx, username, tokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockUserService) GetBalanceHistory(ctx context.Context, username string, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, username, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

type MockBetService struct{ mock.Mock }

func (m *MockBetService) PlaceBet(ctx context.Context, username string, questionID int64, answer models.Resolution, amount int64) (*models.Bet, error) {
	args := m.Called(ctx, username, questionID, answer, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetService) GetBet(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetService) GetUserBets(ctx context.Context, username string) ([]*models.Bet, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetService) GetActiveBets(ctx context.Context, username string) ([]*models.Bet, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetService) GetBetsForQuestion(ctx context.Context, questionID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetService) GetBetSummary(ctx context.Context, username string) (*models.BetSummary, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetSummary), args.Error(1)
}

type MockQuestionService struct{ mock.Mock }

func (m *MockQuestionService) CreateQuestion(ctx context.Context, params service.CreateQuestionParams) (*models.Question, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) CreateGeneratedQuestion(ctx context.Context, room *models.Room, generated models.GeneratedQuestion, fallback bool) (*models.Question, error) {
	args := m.Called(ctx, room, generated, fallback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) UpdateQuestion(ctx context.Context, id int64, params service.UpdateQuestionParams) (*models.Question, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionService) ListQuestionsByGame(ctx context.Context, gameID int64) ([]*models.Question, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionService) ListQuestionsByRoom(ctx context.Context, roomID int64) ([]*models.Question, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

type MockResolutionService struct{ mock.Mock }

func (m *MockResolutionService) ResolveQuestion(ctx context.Context, questionID int64, actualValue float64) (*models.ResolutionResult, error) {
	args := m.Called(ctx, questionID, actualValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResolutionResult), args.Error(1)
}

type MockRoomService struct{ mock.Mock }

func (m *MockRoomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *MockRoomService) GetRoom(ctx context.Context, id int64) (*models.RoomDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomDetail), args.Error(1)
}

func (m *MockRoomService) CreateRoom(ctx context.Context, username string, gameID int64) (*models.RoomDetail, error) {
	args := m.Called(ctx, username, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomDetail), args.Error(1)
}

func (m *MockRoomService) JoinRoom(ctx context.Context, roomID int64, username string) (*models.RoomDetail, error) {
	args := m.Called(ctx, roomID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomDetail), args.Error(1)
}

func (m *MockRoomService) LeaveRoom(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockRoomService) StartTimer(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRoomService) StopTimer(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRoomService) TimerRunning(ctx context.Context, roomID int64) (bool, error) {
	args := m.Called(ctx, roomID)
	return args.Bool(0), args.Error(1)
}

type MockFriendService struct{ mock.Mock }

func (m *MockFriendService) SendRequest(ctx context.Context, fromUsername, toUsername string) (*models.FriendRequest, error) {
	args := m.Called(ctx, fromUsername, toUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendRequest), args.Error(1)
}

func (m *MockFriendService) GetRequests(ctx context.Context, username string) ([]*models.FriendRequest, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FriendRequest), args.Error(1)
}

func (m *MockFriendService) AcceptRequest(ctx context.Context, username, fromUsername string) error {
	args := m.Called(ctx, username, fromUsername)
	return args.Error(0)
}

func (m *MockFriendService) DeclineRequest(ctx context.Context, username, fromUsername string) error {
	args := m.Called(ctx, username, fromUsername)
	return args.Error(0)
}

func (m *MockFriendService) GetFriends(ctx context.Context, username string) ([]*models.Friend, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Friend), args.Error(1)
}

type MockPlayerService struct{ mock.Mock }

func (m *MockPlayerService) ListPlayers(ctx context.Context, gameID int64, team string) ([]*models.Player, error) {
	args := m.Called(ctx, gameID, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

func (m *MockPlayerService) GetPlayer(ctx context.Context, id int64) (*models.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerService) GetPlayerByName(ctx context.Context, gameID int64, team, name string) (*models.Player, error) {
	args := m.Called(ctx, gameID, team, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerService) CreatePlayer(ctx context.Context, gameID int64, team, name string) (*models.Player, error) {
	args := m.Called(ctx, gameID, team, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerService) UpdatePlayer(ctx context.Context, id int64, team, name string) (*models.Player, error) {
	args := m.Called(ctx, id, team, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerService) DeletePlayer(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
