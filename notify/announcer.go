// Package notify posts question activity to a Discord channel.
package notify

import (
	"context"
	"fmt"

	"gridiron/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// EmbedSender is the part of a Discord session the announcer uses
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts embeds for new questions, resolutions and timer changes
type Announcer struct {
	sender    EmbedSender
	channelID string
	closer    func() error
}

// New creates an announcer backed by a bot session. Only the REST API is
// used, so no gateway connection is opened.
func New(token, channelID string) (*Announcer, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	if _, err := dg.Channel(channelID); err != nil {
		return nil, fmt.Errorf("error looking up announcement channel %s: %w", channelID, err)
	}

	a := NewWithSender(dg, channelID)
	a.closer = dg.Close
	return a, nil
}

// NewWithSender creates an announcer around an existing sender
func NewWithSender(sender EmbedSender, channelID string) *Announcer {
	return &Announcer{
		sender:    sender,
		channelID: channelID,
	}
}

// Subscriber is the part of the event bus the announcer listens on
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler)
}

// SubscribeToBus posts an embed for every announced event type
func (a *Announcer) SubscribeToBus(bus Subscriber) {
	bus.Subscribe(events.EventTypeQuestionCreated, a.handle)
	bus.Subscribe(events.EventTypeQuestionResolved, a.handle)
	bus.Subscribe(events.EventTypeTimerStateChange, a.handle)
	log.WithField("channelID", a.channelID).Info("Discord announcements enabled")
}

func (a *Announcer) handle(_ context.Context, event events.Event) {
	if err := a.Announce(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to post Discord announcement")
	}
}

// Announce posts the embed for event. Events without an embed are ignored.
func (a *Announcer) Announce(event events.Event) error {
	var embed *discordgo.MessageEmbed
	switch e := event.(type) {
	case events.QuestionCreatedEvent:
		embed = buildQuestionEmbed(e)
	case events.QuestionResolvedEvent:
		embed = buildResolvedEmbed(e)
	case events.TimerStateChangeEvent:
		embed = buildTimerEmbed(e)
	default:
		return nil
	}

	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		return fmt.Errorf("failed to send embed to channel %s: %w", a.channelID, err)
	}
	return nil
}

// Close releases the Discord session
func (a *Announcer) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}
