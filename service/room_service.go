package service

import (
	"context"
	"fmt"

	"gridiron/events"
	"gridiron/models"

	log "github.com/sirupsen/logrus"
)

type roomService struct {
	uowFactory UnitOfWorkFactory
	scheduler  TimerScheduler
}

// NewRoomService creates a new room service
func NewRoomService(uowFactory UnitOfWorkFactory, scheduler TimerScheduler) RoomService {
	return &roomService{
		uowFactory: uowFactory,
		scheduler:  scheduler,
	}
}

// ListRooms returns every room
func (s *roomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rooms, err := uow.RoomRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// GetRoom returns a room with its members
func (s *roomService) GetRoom(ctx context.Context, id int64) (*models.RoomDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := getRoom(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	return roomDetail(ctx, uow, room)
}

// CreateRoom creates a room for a game and moves its creator into it
func (s *roomService) CreateRoom(ctx context.Context, username string, gameID int64) (*models.RoomDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getUser(ctx, uow, username)
	if err != nil {
		return nil, err
	}

	room := &models.Room{GameID: gameID}
	if err := uow.RoomRepository().Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	previousRoom, err := s.moveUser(ctx, uow, user, &room.ID)
	if err != nil {
		return nil, err
	}

	detail, err := roomDetail(ctx, uow, room)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.stopIfEmpty(ctx, previousRoom)
	return detail, nil
}

// JoinRoom moves a user into a room, leaving any previous room
func (s *roomService) JoinRoom(ctx context.Context, roomID int64, username string) (*models.RoomDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := getRoom(ctx, uow, roomID)
	if err != nil {
		return nil, err
	}
	user, err := getUser(ctx, uow, username)
	if err != nil {
		return nil, err
	}

	var previousRoom *int64
	if user.RoomID == nil || *user.RoomID != roomID {
		previousRoom, err = s.moveUser(ctx, uow, user, &room.ID)
		if err != nil {
			return nil, err
		}
	}

	detail, err := roomDetail(ctx, uow, room)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.stopIfEmpty(ctx, previousRoom)
	return detail, nil
}

// LeaveRoom removes a user from their room
func (s *roomService) LeaveRoom(ctx context.Context, username string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := getUser(ctx, uow, username)
	if err != nil {
		return err
	}
	if !user.InRoom() {
		return invalidState("User %s is not in a room", username)
	}

	previousRoom, err := s.moveUser(ctx, uow, user, nil)
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.stopIfEmpty(ctx, previousRoom)
	return nil
}

// StartTimer launches the room's question timer
func (s *roomService) StartTimer(ctx context.Context, roomID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := getRoom(ctx, uow, roomID)
	if err != nil {
		return err
	}
	if s.scheduler.IsRunning(roomID) {
		return conflict("A question timer is already running for room %d", roomID)
	}

	if err := uow.RoomRepository().SetStarted(ctx, roomID, true); err != nil {
		return fmt.Errorf("failed to mark room started: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	room.Started = true
	started, err := s.scheduler.Start(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to start question timer: %w", err)
	}
	if !started {
		return conflict("A question timer is already running for room %d", roomID)
	}
	return nil
}

// StopTimer cancels the room's question timer
func (s *roomService) StopTimer(ctx context.Context, roomID int64) error {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return err
	}
	if !s.scheduler.Stop(roomID) {
		return invalidState("No question timer is running for room %d", roomID)
	}
	return nil
}

// TimerRunning reports whether the room's timer is active
func (s *roomService) TimerRunning(ctx context.Context, roomID int64) (bool, error) {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return false, err
	}
	return s.scheduler.IsRunning(roomID), nil
}

// moveUser points the user at roomID (nil leaves) and returns the room they left
func (s *roomService) moveUser(ctx context.Context, uow UnitOfWork, user *models.User, roomID *int64) (*int64, error) {
	previous := user.RoomID
	if err := uow.UserRepository().SetRoom(ctx, user.Username, roomID); err != nil {
		return nil, fmt.Errorf("failed to update room of %s: %w", user.Username, err)
	}
	user.RoomID = roomID

	if previous != nil {
		uow.EventBus().Publish(events.RoomMembershipEvent{Username: user.Username, RoomID: *previous, Joined: false})
	}
	if roomID != nil {
		uow.EventBus().Publish(events.RoomMembershipEvent{Username: user.Username, RoomID: *roomID, Joined: true})
	}
	return previous, nil
}

// stopIfEmpty tears down the timer of a room nobody is left in
func (s *roomService) stopIfEmpty(ctx context.Context, roomID *int64) {
	if roomID == nil || !s.scheduler.IsRunning(*roomID) {
		return
	}

	detail, err := s.GetRoom(ctx, *roomID)
	if err != nil {
		log.WithError(err).WithField("roomID", *roomID).Warn("Failed to check room membership")
		return
	}
	if len(detail.Members) > 0 {
		return
	}

	if s.scheduler.Stop(*roomID) {
		log.WithField("roomID", *roomID).Info("Stopped question timer of empty room")
	}
}

func getRoom(ctx context.Context, uow UnitOfWork, id int64) (*models.Room, error) {
	room, err := uow.RoomRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, notFound("Room %d not found", id)
	}
	return room, nil
}

func getUser(ctx context.Context, uow UnitOfWork, username string) (*models.User, error) {
	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, notFound("User %s not found", username)
	}
	return user, nil
}

func roomDetail(ctx context.Context, uow UnitOfWork, room *models.Room) (*models.RoomDetail, error) {
	members, err := uow.UserRepository().GetByRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room members: %w", err)
	}

	detail := &models.RoomDetail{Room: room, Members: make([]string, 0, len(members))}
	for _, member := range members {
		detail.Members = append(detail.Members, member.Username)
	}
	return detail, nil
}
