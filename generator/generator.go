// Package generator turns windows of upstream plays into multiple-choice
// questions.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gridiron/models"
)

// ErrGenerationFailure marks any failed, timed out or malformed generation
var ErrGenerationFailure = errors.New("question generation failed")

// Generator produces a question from a window of plays
type Generator interface {
	Generate(ctx context.Context, window []models.Play) (*models.GeneratedQuestion, error)
}

// Validate checks that a generated question has a prompt, exactly four
// non-empty options and an answer index within range
func Validate(q *models.GeneratedQuestion) error {
	if q == nil {
		return fmt.Errorf("%w: empty result", ErrGenerationFailure)
	}
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: missing question text", ErrGenerationFailure)
	}
	if len(q.Options) != models.OptionCount {
		return fmt.Errorf("%w: expected %d options, got %d", ErrGenerationFailure, models.OptionCount, len(q.Options))
	}
	for i, option := range q.Options {
		if strings.TrimSpace(option) == "" {
			return fmt.Errorf("%w: option %d is empty", ErrGenerationFailure, i)
		}
	}
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return fmt.Errorf("%w: answer index %d out of range", ErrGenerationFailure, q.Answer)
	}
	return nil
}
