package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// maxMessageLength is Discord's limit for a single message
const maxMessageLength = 2000

// dmSession is the part of *discordgo.Session used to send direct messages
type dmSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordGateway pushes text to users as Discord direct messages
type DiscordGateway struct {
	session  dmSession
	channels sync.Map // account id -> DM channel id
}

// NewDiscordGateway creates a gateway on an open session
func NewDiscordGateway(session *discordgo.Session) *DiscordGateway {
	return &DiscordGateway{session: session}
}

// Push sends text to accountID, split into several messages when it exceeds Discord's limit
func (g *DiscordGateway) Push(ctx context.Context, accountID, text string) error {
	if accountID == "" {
		return errors.New("account id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	channelID, err := g.channelFor(ctx, accountID)
	if err != nil {
		return err
	}

	for _, chunk := range splitMessage(text, maxMessageLength) {
		if _, err := g.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			g.channels.Delete(accountID)
			return fmt.Errorf("failed to send direct message to %s: %w", accountID, err)
		}
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"length":    len(text),
	}).Debug("Pushed direct message")
	return nil
}

func (g *DiscordGateway) channelFor(ctx context.Context, accountID string) (string, error) {
	if id, ok := g.channels.Load(accountID); ok {
		return id.(string), nil
	}

	channel, err := g.session.UserChannelCreate(accountID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to open direct message channel for %s: %w", accountID, err)
	}
	g.channels.Store(accountID, channel.ID)
	return channel.ID, nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
