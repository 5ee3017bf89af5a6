package service

import (
	"math"

	"gridiron/models"

	"github.com/shopspring/decimal"
)

// DeriveResolution maps an observed value onto the question's categorical answer.
//
// Over/under compares strictly and treats an exact hit as neutral. Yes/no
// answers yes when the value reaches the threshold. Multiple-choice
// questions take the value as the zero-based index of the winning option,
// which must agree with the index designated when the question was created.
func DeriveResolution(question *models.Question, actualValue float64) (models.Resolution, error) {
	if math.IsNaN(actualValue) || math.IsInf(actualValue, 0) {
		return "", invalidArgument("actual value must be a finite number")
	}

	switch question.Type {
	case models.QuestionTypeOverUnder:
		if question.Threshold == nil {
			return "", invalidArgument("question %d has no threshold", question.ID)
		}
		switch {
		case actualValue > *question.Threshold:
			return models.ResolutionOver, nil
		case actualValue < *question.Threshold:
			return models.ResolutionUnder, nil
		default:
			return models.ResolutionNeutral, nil
		}

	case models.QuestionTypeYesNo:
		if question.Threshold == nil {
			return "", invalidArgument("question %d has no threshold", question.ID)
		}
		if actualValue >= *question.Threshold {
			return models.ResolutionYes, nil
		}
		return models.ResolutionNo, nil

	case models.QuestionTypeMultipleChoice:
		index := int(actualValue)
		if float64(index) != actualValue || index < 0 || index >= len(question.Options) {
			return "", invalidArgument("actual value %v is not an option index of question %d", actualValue, question.ID)
		}
		if question.CorrectIndex != nil && *question.CorrectIndex != index {
			return "", invalidArgument("option %s is not the designated answer of question %d", models.ChoiceResolution(index), question.ID)
		}
		return models.ChoiceResolution(index), nil
	}

	return "", invalidArgument("question %d has unknown type %q", question.ID, question.Type)
}

// SettlementOutcome returns the signed token delta of a settled bet:
// floor(amount * multiplier) when correct, -amount otherwise.
func SettlementOutcome(amount int64, multiplier decimal.Decimal, correct bool) int64 {
	if !correct {
		return -amount
	}
	return decimal.NewFromInt(amount).Mul(multiplier).Floor().IntPart()
}
