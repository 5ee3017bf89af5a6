package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gridiron/config"
	"gridiron/feed"
	"gridiron/generator"
	"gridiron/timer"
)

// Replay prints, for every clock at which a room timer would generate a
// question, the window of plays the generator would receive. Nothing is
// written to the database.
func Replay(ctx context.Context, gameID int64, out io.Writer) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	return replay(ctx, timerConfig(cfg), feed.NewFileSource(cfg.FeedDir), gameID, out)
}

func replay(ctx context.Context, cfg timer.Config, source feed.Source, gameID int64, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid timer configuration: %w", err)
	}

	plays, err := source.Plays(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load plays for game %d: %w", gameID, err)
	}

	clocks := cfg.GenerationClocks()
	fmt.Fprintf(out, "game %d: %d plays, %d questions\n", gameID, len(plays), len(clocks))
	for _, clock := range clocks {
		window := generator.SelectWindow(plays, clock, cfg.WindowSize)
		if len(window) == 0 {
			fmt.Fprintf(out, "%5d  (fallback)\n", clock)
			continue
		}
		descriptions := make([]string, 0, len(window))
		for _, play := range window {
			descriptions = append(descriptions, fmt.Sprintf("[%s] %s", play.Timestamp, play.Description))
		}
		fmt.Fprintf(out, "%5d  %s\n", clock, strings.Join(descriptions, " | "))
	}
	return nil
}
