// Package feed loads upstream play-by-play events for a game.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gridiron/models"

	log "github.com/sirupsen/logrus"
)

// ErrGameNotFound is returned when no play data exists for a game
var ErrGameNotFound = errors.New("no play data for game")

// Source provides the full play sequence of a game, most recent play first
type Source interface {
	Plays(ctx context.Context, gameID int64) ([]models.Play, error)
}

// FileSource replays plays from <dir>/<gameID>.json. Parsed games are cached
// since replay files never change while the process runs.
type FileSource struct {
	dir string

	mu    sync.RWMutex
	cache map[int64][]models.Play
}

// NewFileSource creates a file backed source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:   dir,
		cache: make(map[int64][]models.Play),
	}
}

// Plays returns the plays of a game
func (s *FileSource) Plays(ctx context.Context, gameID int64) ([]models.Play, error) {
	s.mu.RLock()
	plays, ok := s.cache[gameID]
	s.mu.RUnlock()
	if ok {
		return plays, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, strconv.FormatInt(gameID, 10)+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read play file %s: %w", path, err)
	}

	plays, err = Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode play file %s: %w", path, err)
	}

	s.mu.Lock()
	s.cache[gameID] = plays
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"gameID": gameID,
		"plays":  len(plays),
	}).Debug("Loaded play file")

	return plays, nil
}

// StaticSource serves plays held in memory
type StaticSource map[int64][]models.Play

// Plays returns the plays of a game
func (s StaticSource) Plays(_ context.Context, gameID int64) ([]models.Play, error) {
	plays, ok := s[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	return plays, nil
}

// wirePlay accepts a timestamp given either as a JSON string or a number
type wirePlay struct {
	models.Play
	Timestamp json.RawMessage `json:"timestamp"`
}

// Decode parses a JSON array of plays
func Decode(data []byte) ([]models.Play, error) {
	var raw []wirePlay
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	plays := make([]models.Play, 0, len(raw))
	for i, wp := range raw {
		play := wp.Play
		timestamp, err := decodeTimestamp(wp.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("play %d: %w", i, err)
		}
		play.Timestamp = timestamp
		plays = append(plays, play)
	}
	return plays, nil
}

func decodeTimestamp(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid timestamp: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid timestamp %s: %w", raw, err)
	}
	return n.String(), nil
}
