package common

import (
	"bytes"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// messageSender is the part of *discordgo.Session used to answer chat messages
type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ReplyText answers a message in its channel
func ReplyText(s messageSender, m *discordgo.Message, text string) error {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   text,
		Reference: m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: false,
		},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"channel_id": m.ChannelID,
			"message_id": m.ID,
			"error":      err,
		}).Error("Failed to send reply")
	}
	return err
}

// ReplyPNG answers a message with a PNG attachment and a caption
func ReplyPNG(s messageSender, m *discordgo.Message, caption, filename string, data []byte) error {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   caption,
		Reference: m.Reference(),
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "image/png",
			Reader:      bytes.NewReader(data),
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: false,
		},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"channel_id": m.ChannelID,
			"message_id": m.ID,
			"error":      err,
		}).Error("Failed to send image reply")
	}
	return err
}
