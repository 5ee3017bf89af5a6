package service

import (
	"context"
	"testing"

	"gridiron/events"
	"gridiron/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestRoomService_CreateRoom(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)
	scheduler := new(MockTimerScheduler)

	m.users.On("GetByUsername", ctx, "alice").Return(&models.User{Username: "alice"}, nil)
	m.rooms.On("Create", ctx, mock.MatchedBy(func(r *models.Room) bool { return r.GameID == 401 })).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Room).ID = 3 }).
		Return(nil)
	m.users.On("SetRoom", ctx, "alice", int64Ptr(3)).Return(nil)
	m.events.On("Publish", events.RoomMembershipEvent{Username: "alice", RoomID: 3, Joined: true}).Return()
	m.users.On("GetByRoom", ctx, int64(3)).Return([]*models.User{{Username: "alice"}}, nil)

	service := NewRoomService(m.factory, scheduler)
	detail, err := service.CreateRoom(ctx, "alice", 401)

	require.NoError(t, err)
	assert.Equal(t, int64(3), detail.Room.ID)
	assert.Equal(t, []string{"alice"}, detail.Members)
	m.assertExpectations(t)
	scheduler.AssertExpectations(t)
}

func TestRoomService_JoinRoom_LastMemberLeavesRunningRoom(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.uow.On("Commit").Return(nil).Once()
	m.allowEvents()
	scheduler := new(MockTimerScheduler)

	// Alice moves from room 1, where a timer runs, to room 2
	m.rooms.On("GetByID", ctx, int64(2)).Return(&models.Room{ID: 2, GameID: 9}, nil)
	m.rooms.On("GetByID", ctx, int64(1)).Return(&models.Room{ID: 1, GameID: 8, Started: true}, nil)
	m.users.On("GetByUsername", ctx, "alice").Return(&models.User{Username: "alice", RoomID: int64Ptr(1)}, nil)
	m.users.On("SetRoom", ctx, "alice", int64Ptr(2)).Return(nil)
	m.users.On("GetByRoom", ctx, int64(2)).Return([]*models.User{{Username: "alice"}}, nil)
	m.users.On("GetByRoom", ctx, int64(1)).Return([]*models.User{}, nil)
	scheduler.On("IsRunning", int64(1)).Return(true)
	scheduler.On("Stop", int64(1)).Return(true)

	service := NewRoomService(m.factory, scheduler)
	detail, err := service.JoinRoom(ctx, 2, "alice")

	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, detail.Members)
	scheduler.AssertExpectations(t)
	m.assertExpectations(t)
}

func TestRoomService_JoinRoom_NotFound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	m.rooms.On("GetByID", ctx, int64(5)).Return(nil, nil)

	service := NewRoomService(m.factory, new(MockTimerScheduler))
	_, err := service.JoinRoom(ctx, 5, "alice")

	assert.ErrorIs(t, err, ErrNotFound)
	m.assertExpectations(t)
}

func TestRoomService_LeaveRoom_NotInRoom(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	m.users.On("GetByUsername", ctx, "alice").Return(&models.User{Username: "alice"}, nil)

	service := NewRoomService(m.factory, new(MockTimerScheduler))
	err := service.LeaveRoom(ctx, "alice")

	assert.ErrorIs(t, err, ErrInvalidState)
	m.assertExpectations(t)
}

func TestRoomService_StartTimer(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)
	scheduler := new(MockTimerScheduler)

	m.rooms.On("GetByID", ctx, int64(1)).Return(&models.Room{ID: 1, GameID: 401}, nil)
	m.rooms.On("SetStarted", ctx, int64(1), true).Return(nil)
	scheduler.On("IsRunning", int64(1)).Return(false)
	scheduler.On("Start", ctx, mock.MatchedBy(func(r *models.Room) bool { return r.ID == 1 && r.Started })).Return(true, nil)

	service := NewRoomService(m.factory, scheduler)
	err := service.StartTimer(ctx, 1)

	require.NoError(t, err)
	scheduler.AssertExpectations(t)
	m.assertExpectations(t)
}

func TestRoomService_StartTimer_AlreadyRunning(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)
	scheduler := new(MockTimerScheduler)

	m.rooms.On("GetByID", ctx, int64(1)).Return(&models.Room{ID: 1, GameID: 401, Started: true}, nil)
	scheduler.On("IsRunning", int64(1)).Return(true)

	service := NewRoomService(m.factory, scheduler)
	err := service.StartTimer(ctx, 1)

	assert.ErrorIs(t, err, ErrConflict)
	scheduler.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestRoomService_StopTimer_NotRunning(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)
	scheduler := new(MockTimerScheduler)

	m.rooms.On("GetByID", ctx, int64(1)).Return(&models.Room{ID: 1}, nil)
	m.users.On("GetByRoom", ctx, int64(1)).Return([]*models.User{}, nil)
	scheduler.On("Stop", int64(1)).Return(false)

	service := NewRoomService(m.factory, scheduler)
	err := service.StopTimer(ctx, 1)

	assert.ErrorIs(t, err, ErrInvalidState)
	scheduler.AssertExpectations(t)
}

func TestRoomService_TimerRunning(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)
	scheduler := new(MockTimerScheduler)

	m.rooms.On("GetByID", ctx, int64(1)).Return(&models.Room{ID: 1}, nil)
	m.users.On("GetByRoom", ctx, int64(1)).Return([]*models.User{}, nil)
	scheduler.On("IsRunning", int64(1)).Return(true)

	service := NewRoomService(m.factory, scheduler)
	running, err := service.TimerRunning(ctx, 1)

	require.NoError(t, err)
	assert.True(t, running)
}
