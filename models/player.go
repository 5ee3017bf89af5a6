package models

import "time"

// Player is a participant of a game that questions can be asked about
type Player struct {
	ID        int64     `db:"id" json:"id"`
	GameID    int64     `db:"game_id" json:"game_id"`
	Team      string    `db:"team" json:"team"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EntityTypePlayer marks a question whose entity_id refers to a player
const EntityTypePlayer = "player"
