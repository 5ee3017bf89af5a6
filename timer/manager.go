package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gridiron/events"
	"gridiron/models"

	log "github.com/sirupsen/logrus"
)

// RunStore records timer executions
type RunStore interface {
	Create(ctx context.Context, run *models.TimerRun) error
	Complete(ctx context.Context, run *models.TimerRun) error
}

// Emitter receives timer state changes
type Emitter interface {
	Emit(ctx context.Context, event events.Event)
}

type activeRun struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns at most one running timer per room
type Manager struct {
	ctx    context.Context
	timer  *Timer
	store  RunStore
	locker Locker
	bus    Emitter

	mu   sync.Mutex
	runs map[int64]*activeRun
}

// NewManager creates a manager. Timers are children of ctx, not of the
// request that starts them.
func NewManager(ctx context.Context, timer *Timer, store RunStore, locker Locker, bus Emitter) *Manager {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &Manager{
		ctx:    ctx,
		timer:  timer,
		store:  store,
		locker: locker,
		bus:    bus,
		runs:   make(map[int64]*activeRun),
	}
}

// Start launches the room's timer. It returns false when a timer for the
// room is already running here or on another instance.
func (m *Manager) Start(ctx context.Context, room *models.Room) (bool, error) {
	run, ok := m.reserve(room.ID)
	if !ok {
		return false, nil
	}

	lease, err := m.locker.Acquire(ctx, room.ID)
	if errors.Is(err, ErrLockHeld) {
		m.abandon(room.ID, run)
		return false, nil
	}
	if err != nil {
		m.abandon(room.ID, run)
		return false, err
	}

	record := &models.TimerRun{
		RoomID:     room.ID,
		GameID:     room.GameID,
		StartClock: m.timer.cfg.StartClock,
		ExecutionSummary: map[string]any{
			"step":     m.timer.cfg.Step,
			"interval": m.timer.cfg.Interval,
			"floor":    m.timer.cfg.Floor,
		},
	}
	if m.store != nil {
		if err := m.store.Create(ctx, record); err != nil {
			_ = lease.Release(ctx)
			m.abandon(room.ID, run)
			return false, fmt.Errorf("failed to record timer run: %w", err)
		}
	}

	roomCopy := *room
	go m.execute(run.ctx, &roomCopy, run, record, lease)

	m.emit(events.TimerStateChangeEvent{RoomID: room.ID, GameID: room.GameID, Running: true})
	log.WithField("roomID", room.ID).Info("Question timer started")
	return true, nil
}

// reserve claims the room's slot so the lock and the run record can be
// taken without holding m.mu. Stop on a reserved slot waits for Start to
// finish or abandon it.
func (m *Manager) reserve(roomID int64) (*activeRun, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[roomID]; ok {
		return nil, false
	}
	runCtx, cancel := context.WithCancel(m.ctx)
	run := &activeRun{ctx: runCtx, cancel: cancel, done: make(chan struct{})}
	m.runs[roomID] = run
	return run, true
}

func (m *Manager) abandon(roomID int64, run *activeRun) {
	m.mu.Lock()
	if m.runs[roomID] == run {
		delete(m.runs, roomID)
	}
	m.mu.Unlock()

	run.cancel()
	close(run.done)
}

func (m *Manager) execute(ctx context.Context, room *models.Room, run *activeRun, record *models.TimerRun, lease Lease) {
	defer close(run.done)
	defer run.cancel()

	result := m.timer.Run(ctx, room)

	// The run outlives its context, so bookkeeping uses a fresh one
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if m.store != nil && record.ID != 0 {
		finalClock := result.FinalClock
		reason := result.Reason
		record.FinalClock = &finalClock
		record.QuestionsGenerated = result.QuestionsGenerated
		record.Fallbacks = result.Fallbacks
		record.StopReason = &reason
		record.ExecutionSummary["failures"] = result.Failures
		if err := m.store.Complete(finishCtx, record); err != nil {
			log.WithError(err).WithField("roomID", room.ID).Error("Failed to record timer completion")
		}
	}

	if err := lease.Release(finishCtx); err != nil {
		log.WithError(err).WithField("roomID", room.ID).Warn("Failed to release timer lock")
	}

	m.mu.Lock()
	if m.runs[room.ID] == run {
		delete(m.runs, room.ID)
	}
	m.mu.Unlock()

	m.emit(events.TimerStateChangeEvent{
		RoomID:  room.ID,
		GameID:  room.GameID,
		Running: false,
		Reason:  string(result.Reason),
	})
}

// Stop cancels the room's timer and waits for it to exit
func (m *Manager) Stop(roomID int64) bool {
	m.mu.Lock()
	run, ok := m.runs[roomID]
	m.mu.Unlock()
	if !ok {
		return false
	}

	run.cancel()
	<-run.done
	return true
}

// IsRunning reports whether the room's timer is active or starting on this
// instance
func (m *Manager) IsRunning(roomID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.runs[roomID]
	return ok
}

// StopAll cancels every timer and waits for all of them to exit
func (m *Manager) StopAll() {
	m.mu.Lock()
	runs := make([]*activeRun, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	m.mu.Unlock()

	for _, run := range runs {
		run.cancel()
	}
	for _, run := range runs {
		<-run.done
	}
	log.WithField("count", len(runs)).Info("Stopped all question timers")
}

func (m *Manager) emit(event events.Event) {
	if m.bus != nil {
		m.bus.Emit(context.Background(), event)
	}
}
