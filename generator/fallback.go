package generator

import (
	"context"
	"errors"
	"time"

	"gridiron/models"

	log "github.com/sirupsen/logrus"
)

const fallbackPrompt = "What will happen on the next play?"

// Fallback returns the placeholder question used when generation fails
func Fallback() models.GeneratedQuestion {
	return models.GeneratedQuestion{
		Question: fallbackPrompt,
		Options:  []string{"Option 1", "Option 2", "Option 3", "Option 4"},
		Answer:   0,
	}
}

// Resilient bounds a Generator with a timeout and absorbs every failure into
// the fallback question. A nil generator always falls back.
type Resilient struct {
	generator Generator
	timeout   time.Duration
}

// NewResilient wraps generator; a non-positive timeout disables the bound
func NewResilient(generator Generator, timeout time.Duration) *Resilient {
	return &Resilient{
		generator: generator,
		timeout:   timeout,
	}
}

// Generate returns a valid question and whether it is the fallback
func (r *Resilient) Generate(ctx context.Context, window []models.Play) (models.GeneratedQuestion, bool) {
	if r.generator == nil || len(window) == 0 {
		return Fallback(), true
	}

	genCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	q, err := r.generate(genCtx, window)
	if err != nil {
		fields := log.Fields{
			"windowSize": len(window),
			"timeout":    r.timeout,
		}
		if errors.Is(err, context.DeadlineExceeded) {
			fields["timedOut"] = true
		}
		log.WithError(err).WithFields(fields).Warn("Question generation failed, using fallback")
		return Fallback(), true
	}
	return *q, false
}

func (r *Resilient) generate(ctx context.Context, window []models.Play) (q *models.GeneratedQuestion, err error) {
	defer func() {
		if p := recover(); p != nil {
			q, err = nil, errors.Join(ErrGenerationFailure, errors.New("generator panicked"))
			log.WithField("panic", p).Error("Question generator panicked")
		}
	}()

	q, err = r.generator.Generate(ctx, window)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailure, err)
	}
	if err := Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}
