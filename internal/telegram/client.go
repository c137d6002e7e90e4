package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender delivers bot replies
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error
}

// Client sends messages through the Bot HTTP API
type Client struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewClient creates a bot client without contacting the API. An empty
// endpoint uses the public Bot API.
func NewClient(token, endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: timeout},
		Buffer: 100,
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot.SetAPIEndpoint(endpoint)

	return &Client{bot: bot, logger: logger}
}

// SendMessage sends a Markdown text message
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendDocument uploads a file with a caption
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	if _, err := c.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	c.logger.Debug("document sent", zap.Int64("chat_id", chatID), zap.String("filename", filename))
	return nil
}

// NopSender discards every reply; used when the bot is disabled
type NopSender struct{}

func (NopSender) SendMessage(context.Context, int64, string) error { return nil }

func (NopSender) SendDocument(context.Context, int64, string, []byte, string) error { return nil }
