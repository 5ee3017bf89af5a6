package models

// BetSummary aggregates a user's settled and open bets
type BetSummary struct {
	Username         string  `json:"username"`
	TotalBets        int     `json:"total_number_of_bets"`
	TotalWins        int     `json:"total_wins"`
	TotalLosses      int     `json:"total_losses"`
	OpenBets         int     `json:"open_bets"`
	TotalWagered     int64   `json:"total_amount_bet"`
	TotalProfit      int64   `json:"total_profit"`
	ProfitPercentage float64 `json:"profit_percentage"`
	BiggestWin       int64   `json:"biggest_win"`
	BiggestLoss      int64   `json:"biggest_loss"`
}

// LeaderboardEntry represents a user's position ranked by balance
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	Username         string `json:"username"`
	Balance          int64  `json:"balance"`
	AvailableBalance int64  `json:"available_balance"`
}
