package models

import (
	"time"
)

// User represents a player with a token balance
type User struct {
	Username         string    `db:"username" json:"username"`
	Balance          int64     `db:"balance" json:"balance"`
	AvailableBalance int64     `db:"-" json:"available_balance"` // Calculated field: balance minus stakes on open bets
	RoomID           *int64    `db:"room_id" json:"room_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ReservedBalance returns the amount currently staked on unsettled bets
func (u *User) ReservedBalance() int64 {
	return u.Balance - u.AvailableBalance
}

// InRoom reports whether the user currently belongs to a room
func (u *User) InRoom() bool {
	return u.RoomID != nil
}
