package jobs

import (
	"context"

	"github.com/meatlab/lims-api/internal/telegram"
)

// ChatNotifier posts digests to a single bot chat
type ChatNotifier struct {
	sender telegram.Sender
	chatID int64
}

// NewChatNotifier creates a notifier for the admin chat
func NewChatNotifier(sender telegram.Sender, chatID int64) *ChatNotifier {
	return &ChatNotifier{sender: sender, chatID: chatID}
}

// NotifyPending sends the digest message
func (n *ChatNotifier) NotifyPending(ctx context.Context, count int, days int, codes []string) error {
	return n.sender.SendMessage(ctx, n.chatID, telegram.PendingDigestMessage(count, days, codes))
}
