package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ledgerbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	// maxAttachmentBytes bounds downloaded receipts and voice notes
	maxAttachmentBytes = 10 << 20
	// handleTimeout bounds the work done for one message
	handleTimeout = 2 * time.Minute
)

// Config holds bot configuration
type Config struct {
	Token string
}

// Bot connects the message handler to a Discord session
type Bot struct {
	session    *discordgo.Session
	handler    *Handler
	httpClient *http.Client
}

// NewSession creates a Discord session with the intents the bot needs. The session can send
// direct messages before Open is called.
func NewSession(config Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	return dg, nil
}

// New registers handler on session; call Open to connect
func New(session *discordgo.Session, handler *Handler) *Bot {
	bot := &Bot{
		session:    session,
		handler:    handler,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleMessageCreate)
	return bot
}

// Open connects the websocket
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Discord session ready")
}

// handleMessageCreate answers direct messages and guild messages that mention the bot
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	content := m.Content
	if m.GuildID != "" {
		if !mentions(m.Message, s.State.User.ID) {
			return
		}
		content = stripMention(content, s.State.User.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	in := Incoming{
		AuthorID: m.Author.ID,
		Content:  content,
	}
	if media, err := b.downloadMedia(ctx, m.Attachments); err != nil {
		log.WithFields(log.Fields{
			"message_id": m.ID,
			"error":      err,
		}).Warn("Failed to download attachment")
	} else {
		in.Media = media
	}

	if err := b.handler.Handle(ctx, in, &messageReplier{session: s, message: m.Message}); err != nil {
		log.WithFields(log.Fields{
			"channel_id": m.ChannelID,
			"author_id":  m.Author.ID,
			"error":      err,
		}).Error("Failed to answer message")
	}
}

// downloadMedia fetches the first image or audio attachment
func (b *Bot) downloadMedia(ctx context.Context, attachments []*discordgo.MessageAttachment) (*Media, error) {
	for _, a := range attachments {
		contentType := strings.ToLower(a.ContentType)
		if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "audio/") {
			continue
		}
		if a.Size > maxAttachmentBytes {
			return nil, fmt.Errorf("attachment %s is %d bytes, limit is %d", a.Filename, a.Size, maxAttachmentBytes)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build attachment request: %w", err)
		}
		resp, err := b.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download attachment: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d downloading attachment", resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment: %w", err)
		}

		mimeType, _, _ := strings.Cut(contentType, ";")
		return &Media{Data: data, MIMEType: mimeType}, nil
	}
	return nil, nil
}

func mentions(m *discordgo.Message, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func stripMention(content, userID string) string {
	content = strings.ReplaceAll(content, "<@"+userID+">", "")
	content = strings.ReplaceAll(content, "<@!"+userID+">", "")
	return strings.TrimSpace(content)
}

// messageReplier answers in the channel of the original message
type messageReplier struct {
	session *discordgo.Session
	message *discordgo.Message
}

func (r *messageReplier) Text(text string) error {
	return common.ReplyText(r.session, r.message, text)
}

func (r *messageReplier) PNG(caption, filename string, data []byte) error {
	return common.ReplyPNG(r.session, r.message, caption, filename, data)
}
