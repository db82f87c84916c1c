package tg

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/logger"
	"max.ks1230/tcmb-rates/internal/model/messages"
)

const (
	defaultUpdateOffset = 0
	updatesTimeout      = 60
)

type config interface {
	Token() string
	HandleTimeout() time.Duration
}

type Client struct {
	client  *tgbotapi.BotAPI
	timeout time.Duration
}

func New(config config) (*Client, error) {
	if config.Token() == "" {
		return nil, errors.New("telegram token is not configured")
	}
	client, err := tgbotapi.NewBotAPI(config.Token())
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewBotApi")
	}
	return &Client{client: client, timeout: config.HandleTimeout()}, nil
}

// SendMessage sends text to a user or chat id.
func (c *Client) SendMessage(text string, userID int64) error {
	_, err := c.client.Send(tgbotapi.NewMessage(userID, text))
	if err != nil {
		return errors.Wrap(err, "client.Send")
	}
	return nil
}

func (c *Client) ListenUpdates(ctx context.Context, msgModel *messages.Service) {
	u := tgbotapi.NewUpdate(defaultUpdateOffset)
	u.Timeout = updatesTimeout

	updates := c.client.GetUpdatesChan(u)

	logger.Info("Start listening for messages")

	for {
		select {
		case <-ctx.Done():
			c.client.StopReceivingUpdates()
			logger.Info("Stop listening for messages")
			return
		case update := <-updates:
			c.listenOnce(ctx, update, msgModel)
		}
	}
}

func (c *Client) listenOnce(ctx context.Context, update tgbotapi.Update, msgModel *messages.Service) {
	if update.Message == nil {
		return
	}
	var userName string
	if update.Message.From != nil {
		userName = update.Message.From.UserName
	}
	logger.Info(update.Message.Text, zap.String("user", userName))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := msgModel.HandleIncomingMessage(ctx, messages.Message{
		Text:   update.Message.Text,
		UserID: update.Message.Chat.ID,
	})
	if err != nil {
		logger.Error("error processing message:", zap.Error(err))
	}
}
