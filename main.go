package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gridiron/cmd"
	"gridiron/database"

	log "github.com/sirupsen/logrus"
)

const usage = `usage:
  gridiron                              run the API server and room timers
  gridiron migrate [up|down [n]|status] manage the database schema
  gridiron replay <game_id>             show the question schedule for a game feed`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		go func() {
			<-ctx.Done()
			log.Println("Received shutdown signal, shutting down gracefully...")
		}()
		if err := cmd.Run(ctx); err != nil {
			return fmt.Errorf("application error: %w", err)
		}
		return nil
	}

	switch args[0] {
	case "migrate":
		if err := migrateCommand(args[1:]); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
		return nil
	case "replay":
		if len(args) != 2 {
			return fmt.Errorf("%s", usage)
		}
		gameID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid game id %q", args[1])
		}
		return cmd.Replay(ctx, gameID, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func migrateCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", usage)
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
