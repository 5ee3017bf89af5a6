package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
)

// serviceMocks bundles a mocked unit of work with one mock per repository
type serviceMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	users     *MockUserRepository
	rooms     *MockRoomRepository
	questions *MockQuestionRepository
	bets      *MockBetRepository
	history   *MockBalanceHistoryRepository
	friends   *MockFriendRepository
	players   *MockPlayerRepository
	events    *MockEventPublisher
}

func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		factory:   new(MockUnitOfWorkFactory),
		users:     new(MockUserRepository),
		rooms:     new(MockRoomRepository),
		questions: new(MockQuestionRepository),
		bets:      new(MockBetRepository),
		history:   new(MockBalanceHistoryRepository),
		friends:   new(MockFriendRepository),
		players:   new(MockPlayerRepository),
		events:    new(MockEventPublisher),
	}
	m.uow = &MockUnitOfWork{
		UserRepo:           m.users,
		RoomRepo:           m.rooms,
		QuestionRepo:       m.questions,
		BetRepo:            m.bets,
		BalanceHistoryRepo: m.history,
		FriendRepo:         m.friends,
		PlayerRepo:         m.players,
		Events:             m.events,
	}
	m.factory.On("Create").Return(m.uow)
	return m
}

// expectTx sets up Begin and Rollback, plus Commit when commit is true
func (m *serviceMocks) expectTx(ctx context.Context, commit bool) {
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	if commit {
		m.uow.On("Commit").Return(nil)
	}
}

func (m *serviceMocks) allowEvents() {
	m.events.On("Publish", mock.Anything).Return()
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.rooms.AssertExpectations(t)
	m.questions.AssertExpectations(t)
	m.bets.AssertExpectations(t)
	m.history.AssertExpectations(t)
	m.friends.AssertExpectations(t)
	m.players.AssertExpectations(t)
	m.events.AssertExpectations(t)
}
