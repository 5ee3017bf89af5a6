package models

// Play is one upstream play-by-play record. Timestamp is the game clock at
// the time of the play, encoded either as "MM:SS" or as plain seconds.
type Play struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Actor       string `json:"actor"`
	Team        string `json:"team,omitempty"`
	Quarter     int    `json:"quarter,omitempty"`
	PlayType    string `json:"type,omitempty"`
	YardsGained int    `json:"yards_gained,omitempty"`
}
