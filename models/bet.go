package models

import "time"

// Bet is a user's wager and prediction against one question
type Bet struct {
	ID            int64       `db:"id" json:"id"`
	Username      string      `db:"username" json:"username"`
	QuestionID    int64       `db:"question_id" json:"question_id"`
	UserAnswer    Resolution  `db:"user_answer" json:"user_answer"`
	Amount        int64       `db:"amount" json:"amount"`
	CorrectAnswer *Resolution `db:"correct_answer" json:"correct_answer"`
	IsCorrect     *bool       `db:"is_correct" json:"is_correct"`
	Outcome       *int64      `db:"outcome" json:"outcome"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	ResolvedAt    *time.Time  `db:"resolved_at" json:"resolved_at,omitempty"`
}

// IsSettled checks if the bet has been resolved
func (b *Bet) IsSettled() bool {
	return b.IsCorrect != nil
}

// BetSettlement records how one bet changed its owner's balance
type BetSettlement struct {
	Bet           *Bet  `json:"bet"`
	BalanceBefore int64 `json:"balance_before"`
	BalanceAfter  int64 `json:"balance_after"`
}

// ResolutionResult summarizes the settlement of a question
type ResolutionResult struct {
	Question       *Question        `json:"question"`
	Answer         Resolution       `json:"answer"`
	Settlements    []*BetSettlement `json:"settlements"`
	Winners        int              `json:"winners"`
	Losers         int              `json:"losers"`
	TotalPaidOut   int64            `json:"total_paid_out"`
	TotalCollected int64            `json:"total_collected"`
}
