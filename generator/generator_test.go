package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gridiron/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validQuestion = models.GeneratedQuestion{
	Question: "Who carries the ball next?",
	Options:  []string{"Jones", "Brown", "Smith", "Lee"},
	Answer:   2,
}

func newTestClient(url string, retries int) *HTTPClient {
	client := NewHTTPClient(url, retries)
	client.backoff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return client
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&validQuestion))

	tests := []struct {
		name string
		q    *models.GeneratedQuestion
	}{
		{"nil", nil},
		{"no text", &models.GeneratedQuestion{Options: validQuestion.Options}},
		{"three options", &models.GeneratedQuestion{Question: "q", Options: []string{"a", "b", "c"}}},
		{"blank option", &models.GeneratedQuestion{Question: "q", Options: []string{"a", " ", "c", "d"}}},
		{"answer out of range", &models.GeneratedQuestion{Question: "q", Options: []string{"a", "b", "c", "d"}, Answer: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tt.q), ErrGenerationFailure)
		})
	}
}

func TestHTTPClient_Generate(t *testing.T) {
	var received generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(validQuestion)
	}))
	defer server.Close()

	window := playsAt("4:00", "3:30")
	q, err := newTestClient(server.URL, 0).Generate(context.Background(), window)

	require.NoError(t, err)
	assert.Equal(t, validQuestion, *q)
	assert.Len(t, received.Plays, 2)
	assert.Equal(t, models.OptionCount, received.Options)
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(validQuestion)
	}))
	defer server.Close()

	q, err := newTestClient(server.URL, 2).Generate(context.Background(), playsAt("1:00"))

	require.NoError(t, err)
	assert.Equal(t, validQuestion.Question, q.Question)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClient_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 5).Generate(context.Background(), playsAt("1:00"))

	assert.ErrorIs(t, err, ErrGenerationFailure)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPClient_MalformedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"question": "q", "options": ["only one"], "answer": 0}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 1).Generate(context.Background(), playsAt("1:00"))

	assert.ErrorIs(t, err, ErrGenerationFailure)
}

type stubGenerator struct {
	q     *models.GeneratedQuestion
	err   error
	delay time.Duration
	panic bool
}

func (s *stubGenerator) Generate(ctx context.Context, _ []models.Play) (*models.GeneratedQuestion, error) {
	if s.panic {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.q, s.err
}

func TestResilient_Generate(t *testing.T) {
	ctx := context.Background()
	window := playsAt("1:00")
	q := validQuestion

	tests := []struct {
		name         string
		generator    Generator
		window       []models.Play
		wantFallback bool
	}{
		{"success", &stubGenerator{q: &q}, window, false},
		{"error", &stubGenerator{err: errors.New("upstream down")}, window, true},
		{"malformed", &stubGenerator{q: &models.GeneratedQuestion{Question: "q"}}, window, true},
		{"timeout", &stubGenerator{q: &q, delay: time.Second}, window, true},
		{"panic", &stubGenerator{panic: true}, window, true},
		{"empty window", &stubGenerator{q: &q}, nil, true},
		{"no generator", nil, window, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resilient := NewResilient(tt.generator, 20*time.Millisecond)
			got, fallback := resilient.Generate(ctx, tt.window)

			assert.Equal(t, tt.wantFallback, fallback)
			assert.NoError(t, Validate(&got))
			if tt.wantFallback {
				assert.Equal(t, Fallback(), got)
			} else {
				assert.Equal(t, validQuestion, got)
			}
		})
	}
}
