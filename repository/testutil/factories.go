package testutil

import (
	"time"

	"gridiron/models"

	"github.com/shopspring/decimal"
)

// CreateTestOverUnderQuestion builds an open over/under question at 2x
func CreateTestOverUnderQuestion(gameID int64, threshold float64) *models.Question {
	return &models.Question{
		GameID:     gameID,
		Type:       models.QuestionTypeOverUnder,
		Prompt:     "Total rushing yards",
		Options:    []string{},
		Threshold:  &threshold,
		Multiplier: decimal.NewFromInt(2),
	}
}

// CreateTestGeneratedQuestion builds an open multiple-choice question for a room
func CreateTestGeneratedQuestion(room *models.Room, correctIndex int) *models.Question {
	roomID := room.ID
	return &models.Question{
		GameID:       room.GameID,
		RoomID:       &roomID,
		Type:         models.QuestionTypeMultipleChoice,
		Prompt:       "Who scores next?",
		Options:      []string{"Option 1", "Option 2", "Option 3", "Option 4"},
		CorrectIndex: &correctIndex,
		Multiplier:   decimal.NewFromInt(2),
	}
}

// CreateTestBet builds an unsettled bet
func CreateTestBet(username string, questionID int64, answer models.Resolution, amount int64) *models.Bet {
	return &models.Bet{
		Username:   username,
		QuestionID: questionID,
		UserAnswer: answer,
		Amount:     amount,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(username string, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		Username:        username,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestTimerRun creates a timer run at the default start clock
func CreateTestTimerRun(roomID, gameID int64) *models.TimerRun {
	return &models.TimerRun{
		RoomID:     roomID,
		GameID:     gameID,
		StartClock: 900,
		ExecutionSummary: map[string]any{
			"interval": 30,
		},
	}
}
