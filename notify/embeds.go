package notify

import (
	"fmt"
	"strings"

	"gridiron/events"
	"gridiron/models"

	"github.com/bwmarrin/discordgo"
)

// buildQuestionEmbed announces a question that is open for bets
func buildQuestionEmbed(e events.QuestionCreatedEvent) *discordgo.MessageEmbed {
	var description strings.Builder
	description.WriteString(fmt.Sprintf("**%s**\n", e.Prompt))
	for i, option := range e.Options {
		description.WriteString(fmt.Sprintf("\n**%s.** %s", models.ChoiceResolution(i), option))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Question", Value: fmt.Sprintf("#%d", e.QuestionID), Inline: true},
		{Name: "Game", Value: fmt.Sprintf("%d", e.GameID), Inline: true},
	}
	if e.RoomID != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Room", Value: fmt.Sprintf("%d", *e.RoomID), Inline: true})
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏈 New Question",
		Description: description.String(),
		Color:       ColorPrimary,
		Fields:      fields,
	}
	if e.Fallback {
		embed.Color = ColorWarning
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Play data unavailable, placeholder question"}
	}
	return embed
}

// buildResolvedEmbed reports a settled question
func buildResolvedEmbed(e events.QuestionResolvedEvent) *discordgo.MessageEmbed {
	color := ColorSuccess
	if e.Winners == 0 && e.Losers > 0 {
		color = ColorDanger
	}

	return &discordgo.MessageEmbed{
		Title:       "✅ Question Resolved",
		Description: fmt.Sprintf("**%s**\nAnswer: **%s**", e.Prompt, strings.ToUpper(string(e.Answer))),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Winners", Value: fmt.Sprintf("%d", e.Winners), Inline: true},
			{Name: "Losers", Value: fmt.Sprintf("%d", e.Losers), Inline: true},
			{
				Name:   "Tokens",
				Value:  fmt.Sprintf("• Paid out: **%s**\n• Collected: **%s**", FormatTokens(e.TotalPaidOut), FormatTokens(e.TotalCollected)),
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Question #%d", e.QuestionID)},
	}
}

func buildTimerEmbed(e events.TimerStateChangeEvent) *discordgo.MessageEmbed {
	if e.Running {
		return &discordgo.MessageEmbed{
			Description: fmt.Sprintf("⏱️ Questions are now live in room **%d** (game %d)", e.RoomID, e.GameID),
			Color:       ColorPrimary,
		}
	}
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf("⏹️ Question timer for room **%d** stopped (%s)", e.RoomID, e.Reason),
		Color:       ColorWarning,
	}
}
