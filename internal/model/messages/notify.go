package messages

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
)

type notifyConfig interface {
	NotifyChatIDs() []int64
}

// Notifier tells subscribed chats that a new bulletin was stored.
type Notifier struct {
	tgClient messageSender
	chatIDs  []int64
}

func NewNotifier(tgClient messageSender, config notifyConfig) *Notifier {
	return &Notifier{
		tgClient: tgClient,
		chatIDs:  config.NotifyChatIDs(),
	}
}

func (n *Notifier) HandleIngested(_ context.Context, event currency.IngestedEvent) error {
	text := formatIngested(event)

	var failed int
	for _, chatID := range n.chatIDs {
		if err := n.tgClient.SendMessage(text, chatID); err != nil {
			failed++
			logger.Error("cannot notify chat", zap.Int64("chatID", chatID), zap.Error(err))
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d notifications failed", failed, len(n.chatIDs))
	}
	return nil
}
