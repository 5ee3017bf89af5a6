package models

import "time"

// FriendRequest is a pending request from one user to another
type FriendRequest struct {
	ID           int64     `db:"id" json:"id"`
	FromUsername string    `db:"from_username" json:"from_username"`
	ToUsername   string    `db:"to_username" json:"to_username"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Friend is one direction of an accepted friendship
type Friend struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	FriendUsername string    `db:"friend_username" json:"friend_username"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
