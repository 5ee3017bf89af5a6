package service

import (
	"context"

	"gridiron/events"
	"gridiron/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByUsername retrieves a user by username, including the available balance
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByUsernameForUpdate locks the user row until the transaction ends and
	// returns the user as seen after the lock was granted
	GetByUsernameForUpdate(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, username string, initialBalance int64) (*models.User, error)

	// UpdateBalance sets a user's balance
	UpdateBalance(ctx context.Context, username string, newBalance int64) error

	// SetRoom points the user at a room, or clears the pointer when roomID is nil
	SetRoom(ctx context.Context, username string, roomID *int64) error

	// GetByRoom returns the members of a room ordered by username
	GetByRoom(ctx context.Context, roomID int64) ([]*models.User, error)

	// GetTopByBalance returns up to limit users ordered by balance descending
	GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error)
}

// RoomRepository defines the interface for room data access
type RoomRepository interface {
	// Create inserts a room and fills in its generated ID and timestamps
	Create(ctx context.Context, room *models.Room) error

	// GetByID retrieves a room by its ID
	GetByID(ctx context.Context, id int64) (*models.Room, error)

	// GetAll returns every room ordered by ID
	GetAll(ctx context.Context) ([]*models.Room, error)

	// SetStarted updates a room's started flag
	SetStarted(ctx context.Context, id int64, started bool) error
}

// QuestionRepository defines the interface for question data access
type QuestionRepository interface {
	// Create inserts a question and fills in its store-generated ID and timestamps
	Create(ctx context.Context, question *models.Question) error

	// GetByID retrieves a question by its ID
	GetByID(ctx context.Context, id int64) (*models.Question, error)

	// GetByIDForShare retrieves a question and holds a share lock on it, so a
	// concurrent resolution waits for the surrounding transaction to finish
	GetByIDForShare(ctx context.Context, id int64) (*models.Question, error)

	// Update saves the editable fields of an open question.
	// Returns false when the question is missing or already resolved.
	Update(ctx context.Context, question *models.Question) (bool, error)

	// MarkResolved transitions an open question to resolved. Returns nil when
	// the question was already resolved or does not exist.
	MarkResolved(ctx context.Context, id int64, answer models.Resolution, actualValue float64) (*models.Question, error)

	// GetByGame returns all questions of a game ordered by ID
	GetByGame(ctx context.Context, gameID int64) ([]*models.Question, error)

	// GetByRoom returns all questions generated for a room ordered by ID
	GetByRoom(ctx context.Context, roomID int64) ([]*models.Question, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a bet. A duplicate (user, question) pair returns ErrConflict.
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by its ID
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetByUserAndQuestion retrieves the bet a user placed on a question
	GetByUserAndQuestion(ctx context.Context, username string, questionID int64) (*models.Bet, error)

	// GetByUser returns all bets of a user, newest first
	GetByUser(ctx context.Context, username string) ([]*models.Bet, error)

	// GetActiveByUser returns the unsettled bets of a user, newest first
	GetActiveByUser(ctx context.Context, username string) ([]*models.Bet, error)

	// GetByQuestion returns every bet placed on a question
	GetByQuestion(ctx context.Context, questionID int64) ([]*models.Bet, error)

	// GetUnsettledByQuestion returns and locks the unsettled bets of a
	// question, ordered by username
	GetUnsettledByQuestion(ctx context.Context, questionID int64) ([]*models.Bet, error)

	// Settle writes the resolution fields of a bet exactly once
	Settle(ctx context.Context, bet *models.Bet) error

	// GetSummary aggregates a user's betting results
	GetSummary(ctx context.Context, username string) (*models.BetSummary, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user, newest first
	GetByUser(ctx context.Context, username string, limit int) ([]*models.BalanceHistory, error)
}

// FriendRepository defines the interface for friend requests and friend links
type FriendRepository interface {
	// CreateRequest inserts a friend request. A duplicate returns ErrConflict.
	CreateRequest(ctx context.Context, request *models.FriendRequest) error

	// GetRequest retrieves the pending request from one user to another
	GetRequest(ctx context.Context, fromUsername, toUsername string) (*models.FriendRequest, error)

	// GetIncomingRequests returns the requests addressed to a user
	GetIncomingRequests(ctx context.Context, username string) ([]*models.FriendRequest, error)

	// DeleteRequest removes a pending request
	DeleteRequest(ctx context.Context, id int64) error

	// AddFriend inserts one direction of a friendship
	AddFriend(ctx context.Context, username, friendUsername string) error

	// AreFriends checks whether username already lists friendUsername
	AreFriends(ctx context.Context, username, friendUsername string) (bool, error)

	// GetFriends returns the friend links of a user
	GetFriends(ctx context.Context, username string) ([]*models.Friend, error)
}

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	// Create inserts a player. A duplicate (game, team, name) returns ErrConflict.
	Create(ctx context.Context, player *models.Player) error

	// GetByID retrieves a player by its ID
	GetByID(ctx context.Context, id int64) (*models.Player, error)

	// GetByName retrieves a player of a game's team by name
	GetByName(ctx context.Context, gameID int64, team, name string) (*models.Player, error)

	// GetByGame returns the players of a game; a non-empty team narrows the list
	GetByGame(ctx context.Context, gameID int64, team string) ([]*models.Player, error)

	// Update saves name and team. Returns false when the player is missing.
	Update(ctx context.Context, player *models.Player) (bool, error)

	// Delete removes a player. Returns false when the player is missing.
	Delete(ctx context.Context, id int64) (bool, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repositories bound to a single database transaction
type UnitOfWork interface {
	// Begin starts the transaction and binds the repositories to it
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	UserRepository() UserRepository
	RoomRepository() RoomRepository
	QuestionRepository() QuestionRepository
	BetRepository() BetRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	FriendRepository() FriendRepository
	PlayerRepository() PlayerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// TimerScheduler runs one question timer per room
type TimerScheduler interface {
	// Start launches the room's timer. Returns false if one is already running.
	Start(ctx context.Context, room *models.Room) (bool, error)

	// Stop cancels the room's timer and waits for it to exit.
	// Returns false if no timer was running.
	Stop(roomID int64) bool

	// IsRunning reports whether the room's timer is active
	IsRunning(roomID int64) bool
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with the starting balance
	GetOrCreateUser(ctx context.Context, username string) (*models.User, error)

	// GetUser retrieves a user. Returns ErrNotFound when missing.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// SetTokens overwrites a user's balance and records the adjustment
	SetTokens(ctx context.Context, username string, tokens int64) (*models.User, error)

	// GetLeaderboard returns users ranked by balance
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// GetBalanceHistory returns the most recent balance changes of a user
	GetBalanceHistory(ctx context.Context, username string, limit int) ([]*models.BalanceHistory, error)
}

// BetService defines the interface for bet placement and queries
type BetService interface {
	// PlaceBet validates and records a wager. Preconditions are checked in
	// order: question exists, question open, no duplicate bet, user exists,
	// sufficient available balance.
	PlaceBet(ctx context.Context, username string, questionID int64, answer models.Resolution, amount int64) (*models.Bet, error)

	// GetBet retrieves a single bet. Returns ErrNotFound when missing.
	GetBet(ctx context.Context, id int64) (*models.Bet, error)

	// GetUserBets returns every bet of a user
	GetUserBets(ctx context.Context, username string) ([]*models.Bet, error)

	// GetActiveBets returns the unsettled bets of a user
	GetActiveBets(ctx context.Context, username string) ([]*models.Bet, error)

	// GetBetsForQuestion returns every bet placed on a question
	GetBetsForQuestion(ctx context.Context, questionID int64) ([]*models.Bet, error)

	// GetBetSummary aggregates a user's results
	GetBetSummary(ctx context.Context, username string) (*models.BetSummary, error)
}

// QuestionService defines the interface for question management
type QuestionService interface {
	// CreateQuestion creates an open over/under or yes/no question
	CreateQuestion(ctx context.Context, params CreateQuestionParams) (*models.Question, error)

	// CreateGeneratedQuestion persists a multiple-choice question produced for a room
	CreateGeneratedQuestion(ctx context.Context, room *models.Room, generated models.GeneratedQuestion, fallback bool) (*models.Question, error)

	// UpdateQuestion edits an open question
	UpdateQuestion(ctx context.Context, id int64, params UpdateQuestionParams) (*models.Question, error)

	// GetQuestion retrieves a question by ID
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)

	// ListQuestionsByGame returns the questions of a game
	ListQuestionsByGame(ctx context.Context, gameID int64) ([]*models.Question, error)

	// ListQuestionsByRoom returns the questions generated for a room
	ListQuestionsByRoom(ctx context.Context, roomID int64) ([]*models.Question, error)
}

// ResolutionService settles questions and their bets
type ResolutionService interface {
	// ResolveQuestion fixes the question's answer from the observed value and
	// settles every outstanding bet in one transaction
	ResolveQuestion(ctx context.Context, questionID int64, actualValue float64) (*models.ResolutionResult, error)
}

// RoomService defines the interface for room membership and timers
type RoomService interface {
	// ListRooms returns every room
	ListRooms(ctx context.Context) ([]*models.Room, error)

	// GetRoom returns a room with its members
	GetRoom(ctx context.Context, id int64) (*models.RoomDetail, error)

	// CreateRoom creates a room for a game and moves its creator into it
	CreateRoom(ctx context.Context, username string, gameID int64) (*models.RoomDetail, error)

	// JoinRoom moves a user into a room, leaving any previous room
	JoinRoom(ctx context.Context, roomID int64, username string) (*models.RoomDetail, error)

	// LeaveRoom removes a user from their room. The room's timer stops when
	// its last member leaves.
	LeaveRoom(ctx context.Context, username string) error

	// StartTimer launches the room's question timer
	StartTimer(ctx context.Context, roomID int64) error

	// StopTimer cancels the room's question timer
	StopTimer(ctx context.Context, roomID int64) error

	// TimerRunning reports whether the room's timer is active
	TimerRunning(ctx context.Context, roomID int64) (bool, error)
}

// PlayerService manages the players questions can refer to
type PlayerService interface {
	ListPlayers(ctx context.Context, gameID int64, team string) ([]*models.Player, error)
	GetPlayer(ctx context.Context, id int64) (*models.Player, error)
	GetPlayerByName(ctx context.Context, gameID int64, team, name string) (*models.Player, error)
	CreatePlayer(ctx context.Context, gameID int64, team, name string) (*models.Player, error)
	UpdatePlayer(ctx context.Context, id int64, team, name string) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int64) error
}

// FriendService defines the interface for friend requests and friendships
type FriendService interface {
	SendRequest(ctx context.Context, fromUsername, toUsername string) (*models.FriendRequest, error)
	GetRequests(ctx context.Context, username string) ([]*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, username, fromUsername string) error
	DeclineRequest(ctx context.Context, username, fromUsername string) error
	GetFriends(ctx context.Context, username string) ([]*models.Friend, error)
}
