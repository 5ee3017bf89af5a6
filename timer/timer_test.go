package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gridiron/feed"
	"gridiron/generator"
	"gridiron/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingSink stores every question it receives
type recordingSink struct {
	mu        sync.Mutex
	questions []models.GeneratedQuestion
	fallbacks []bool
	err       error
}

func (s *recordingSink) CreateGeneratedQuestion(_ context.Context, room *models.Room, generated models.GeneratedQuestion, fallback bool) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.questions = append(s.questions, generated)
	s.fallbacks = append(s.fallbacks, fallback)
	return &models.Question{ID: int64(len(s.questions)), RoomID: &room.ID}, nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, []models.Play) (*models.GeneratedQuestion, error) {
	return nil, errors.New("upstream unavailable")
}

// MockQuestionSource is a mock implementation of QuestionSource
type MockQuestionSource struct {
	mock.Mock
}

func (m *MockQuestionSource) Generate(ctx context.Context, window []models.Play) (models.GeneratedQuestion, bool) {
	args := m.Called(ctx, window)
	return args.Get(0).(models.GeneratedQuestion), args.Bool(1)
}

func testConfig() Config {
	return Config{
		StartClock: 100,
		Floor:      0,
		Step:       10,
		Interval:   20,
		Tick:       time.Millisecond,
		WindowSize: 3,
	}
}

var testRoom = &models.Room{ID: 1, GameID: 401, Started: true}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, testConfig().Validate())

	for name, mutate := range map[string]func(*Config){
		"zero step":         func(c *Config) { c.Step = 0 },
		"zero interval":     func(c *Config) { c.Interval = 0 },
		"zero tick":         func(c *Config) { c.Tick = 0 },
		"start below floor": func(c *Config) { c.StartClock = -1 },
		"negative delay":    func(c *Config) { c.InitialDelay = -time.Second },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_GenerationClocks(t *testing.T) {
	assert.Equal(t, []int{80, 60, 40, 20, 0}, testConfig().GenerationClocks())

	cfg := testConfig()
	cfg.Floor = 50
	assert.Equal(t, []int{80, 60}, cfg.GenerationClocks())

	cfg.Interval = 1000
	assert.Empty(t, cfg.GenerationClocks())
}

func TestTimer_FailingGeneratorInsertsOnePlaceholderPerTick(t *testing.T) {
	sink := &recordingSink{}
	questions := generator.NewResilient(failingGenerator{}, time.Second)
	plays := feed.StaticSource{401: {{Timestamp: "1:30", Description: "Kickoff", Actor: "Lee"}, {Timestamp: "1:00", Description: "Run", Actor: "Brown"}}}

	timer, err := New(testConfig(), plays, questions, sink)
	require.NoError(t, err)

	result := timer.Run(context.Background(), testRoom)

	// Clock 90..0 in steps of 10 hits 80, 60, 40, 20 and 0
	assert.Equal(t, models.TimerStopReasonCompleted, result.Reason)
	assert.Equal(t, 5, result.QuestionsGenerated)
	assert.Equal(t, 5, result.Fallbacks)
	assert.Equal(t, -10, result.FinalClock)
	require.Len(t, sink.questions, 5)
	for i, q := range sink.questions {
		assert.Equal(t, generator.Fallback(), q)
		assert.True(t, sink.fallbacks[i])
	}
}

func TestTimer_PassesWindowToGenerator(t *testing.T) {
	sink := &recordingSink{}
	source := new(MockQuestionSource)
	plays := feed.StaticSource{401: {
		{Timestamp: "2:00", Actor: "a"},
		{Timestamp: "1:20", Actor: "b"},
		{Timestamp: "1:00", Actor: "c"},
		{Timestamp: "0:40", Actor: "d"},
	}}

	question := models.GeneratedQuestion{Question: "Who?", Options: []string{"a", "b", "c", "d"}, Answer: 1}
	source.On("Generate", mock.Anything, mock.Anything).Return(question, false)

	cfg := testConfig()
	cfg.StartClock = 90
	cfg.Floor = 80
	cfg.WindowSize = 2
	timer, err := New(cfg, plays, source, sink)
	require.NoError(t, err)

	result := timer.Run(context.Background(), testRoom)

	assert.Equal(t, 1, result.QuestionsGenerated)
	assert.Equal(t, 0, result.Fallbacks)
	// Clock 80 anchors on 1:20 and the window holds the two plays after it
	source.AssertCalled(t, "Generate", mock.Anything, []models.Play{{Timestamp: "1:00", Actor: "c"}, {Timestamp: "0:40", Actor: "d"}})
}

func TestTimer_UnknownGameUsesFallback(t *testing.T) {
	sink := &recordingSink{}
	questions := generator.NewResilient(nil, 0)

	timer, err := New(testConfig(), feed.StaticSource{}, questions, sink)
	require.NoError(t, err)

	result := timer.Run(context.Background(), testRoom)

	assert.Equal(t, 5, result.Fallbacks)
}

func TestTimer_StoreFailuresDoNotStopTheRun(t *testing.T) {
	sink := &recordingSink{err: errors.New("database down")}

	timer, err := New(testConfig(), nil, generator.NewResilient(nil, 0), sink)
	require.NoError(t, err)

	result := timer.Run(context.Background(), testRoom)

	assert.Equal(t, models.TimerStopReasonCompleted, result.Reason)
	assert.Equal(t, 5, result.Failures)
	assert.Equal(t, 0, result.QuestionsGenerated)
}

func TestTimer_CancelStopsWrites(t *testing.T) {
	sink := &recordingSink{}
	cfg := testConfig()
	cfg.StartClock = 1_000_000
	cfg.Step = 1
	cfg.Interval = 1

	timer, err := New(cfg, nil, generator.NewResilient(nil, 0), sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result)
	go func() { done <- timer.Run(ctx, testRoom) }()

	require.Eventually(t, func() bool { return sink.count() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	var result Result
	select {
	case result = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not stop after cancellation")
	}

	assert.Equal(t, models.TimerStopReasonCancelled, result.Reason)
	written := sink.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, written, sink.count())
	assert.Equal(t, result.QuestionsGenerated, written)
}

func TestTimer_CancelDuringGenerationSkipsWrite(t *testing.T) {
	sink := &recordingSink{}
	source := new(MockQuestionSource)
	ctx, cancel := context.WithCancel(context.Background())

	source.On("Generate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(generator.Fallback(), true)

	timer, err := New(testConfig(), nil, source, sink)
	require.NoError(t, err)

	result := timer.Run(ctx, testRoom)

	assert.Equal(t, models.TimerStopReasonCancelled, result.Reason)
	assert.Zero(t, sink.count())
	source.AssertNumberOfCalls(t, "Generate", 1)
}

func TestTimer_CancelDuringInitialDelay(t *testing.T) {
	sink := &recordingSink{}
	cfg := testConfig()
	cfg.InitialDelay = time.Hour

	timer, err := New(cfg, nil, generator.NewResilient(nil, 0), sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := timer.Run(ctx, testRoom)

	assert.Equal(t, models.TimerStopReasonCancelled, result.Reason)
	assert.Equal(t, cfg.StartClock, result.FinalClock)
}
