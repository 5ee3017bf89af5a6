package models

import "time"

// Room groups users sharing one live game session
type Room struct {
	ID        int64     `db:"id" json:"id"`
	GameID    int64     `db:"game_id" json:"game_id"`
	Started   bool      `db:"started" json:"started"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomDetail combines a room with the usernames currently pointing at it
type RoomDetail struct {
	Room    *Room    `json:"room"`
	Members []string `json:"members"`
}
