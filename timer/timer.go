// Package timer runs the per-room question timers.
package timer

import (
	"context"
	"fmt"
	"time"

	"gridiron/feed"
	"gridiron/generator"
	"gridiron/models"

	log "github.com/sirupsen/logrus"
)

// Config controls the virtual game clock of a room timer
type Config struct {
	StartClock   int           // clock value the countdown starts from
	Floor        int           // the run ends once the clock drops below this
	Step         int           // clock decrement per tick
	Interval     int           // a question is generated whenever clock % Interval == 0
	Tick         time.Duration // wall-clock time between steps
	InitialDelay time.Duration // wait before the first tick
	WindowSize   int           // plays handed to the generator per question
}

// Validate rejects configurations that would never terminate or never generate
func (c Config) Validate() error {
	switch {
	case c.Step <= 0:
		return fmt.Errorf("timer step must be positive, got %d", c.Step)
	case c.Interval <= 0:
		return fmt.Errorf("timer interval must be positive, got %d", c.Interval)
	case c.Tick <= 0:
		return fmt.Errorf("timer tick must be positive, got %s", c.Tick)
	case c.StartClock < c.Floor:
		return fmt.Errorf("timer start clock %d is below floor %d", c.StartClock, c.Floor)
	case c.InitialDelay < 0:
		return fmt.Errorf("timer initial delay cannot be negative")
	}
	return nil
}

// GenerationClocks lists the clock values at which a full run generates a
// question, in the order they occur
func (c Config) GenerationClocks() []int {
	var clocks []int
	for clock := c.StartClock - c.Step; clock >= c.Floor; clock -= c.Step {
		if clock%c.Interval == 0 {
			clocks = append(clocks, clock)
		}
	}
	return clocks
}

// QuestionSource produces a question for a window of plays, never failing
type QuestionSource interface {
	Generate(ctx context.Context, window []models.Play) (models.GeneratedQuestion, bool)
}

// QuestionSink persists generated questions
type QuestionSink interface {
	CreateGeneratedQuestion(ctx context.Context, room *models.Room, generated models.GeneratedQuestion, fallback bool) (*models.Question, error)
}

// Result describes how a run ended
type Result struct {
	FinalClock         int
	QuestionsGenerated int
	Fallbacks          int
	Failures           int // questions that could not be stored
	Reason             models.TimerStopReason
}

// Timer counts a room's game clock down and emits questions along the way
type Timer struct {
	cfg       Config
	plays     feed.Source
	questions QuestionSource
	sink      QuestionSink
}

// New creates a timer
func New(cfg Config, plays feed.Source, questions QuestionSource, sink QuestionSink) (*Timer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Timer{
		cfg:       cfg,
		plays:     plays,
		questions: questions,
		sink:      sink,
	}, nil
}

// Config returns the timer configuration
func (t *Timer) Config() Config {
	return t.cfg
}

// Run blocks until the clock passes the floor or ctx is cancelled. Nothing
// is written after cancellation is observed.
func (t *Timer) Run(ctx context.Context, room *models.Room) Result {
	logger := log.WithFields(log.Fields{
		"roomID": room.ID,
		"gameID": room.GameID,
	})

	result := Result{FinalClock: t.cfg.StartClock, Reason: models.TimerStopReasonCancelled}

	if t.cfg.InitialDelay > 0 {
		select {
		case <-ctx.Done():
			return result
		case <-time.After(t.cfg.InitialDelay):
		}
	}

	plays := t.loadPlays(ctx, room, logger)

	ticker := time.NewTicker(t.cfg.Tick)
	defer ticker.Stop()

	clock := t.cfg.StartClock
	for {
		select {
		case <-ctx.Done():
			logger.WithField("clock", clock).Info("Question timer cancelled")
			return result
		case <-ticker.C:
		}

		clock -= t.cfg.Step
		result.FinalClock = clock
		if clock < t.cfg.Floor {
			result.Reason = models.TimerStopReasonCompleted
			logger.WithFields(log.Fields{
				"questions": result.QuestionsGenerated,
				"fallbacks": result.Fallbacks,
			}).Info("Question timer finished")
			return result
		}

		if clock%t.cfg.Interval != 0 {
			continue
		}

		window := generator.SelectWindow(plays, clock, t.cfg.WindowSize)
		generated, fallback := t.questions.Generate(ctx, window)

		// A stop request that arrived during generation wins over the write
		if ctx.Err() != nil {
			logger.WithField("clock", clock).Info("Question timer cancelled")
			return result
		}

		question, err := t.sink.CreateGeneratedQuestion(ctx, room, generated, fallback)
		if err != nil {
			result.Failures++
			logger.WithError(err).WithField("clock", clock).Error("Failed to store generated question")
			continue
		}

		result.QuestionsGenerated++
		if fallback {
			result.Fallbacks++
		}
		logger.WithFields(log.Fields{
			"clock":      clock,
			"questionID": question.ID,
			"fallback":   fallback,
		}).Debug("Generated question")
	}
}

func (t *Timer) loadPlays(ctx context.Context, room *models.Room, logger *log.Entry) []models.Play {
	if t.plays == nil {
		return nil
	}
	plays, err := t.plays.Plays(ctx, room.GameID)
	if err != nil {
		logger.WithError(err).Warn("No play data for game, every question will use the fallback")
		return nil
	}
	return plays
}
