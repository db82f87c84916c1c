package messages

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const sorryMessage = "Sorry, something wrong happened...\n"

type messageSender interface {
	SendMessage(text string, userID int64) error
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, text string, userID int64) (string, error)
}

// Service answers every chat message with exactly one reply.
type Service struct {
	tgClient messageSender
	handler  MessageHandler
}

func NewService(tgClient messageSender, rates ratesService, reports reportGenerator, loc *time.Location) *Service {
	return &Service{
		tgClient: tgClient,
		handler:  newHandler(rates, reports, loc),
	}
}

type Message struct {
	Text   string
	UserID int64
}

func (s *Service) HandleIncomingMessage(ctx context.Context, msg Message) error {
	command := commandLabel(msg.Text)

	span, ctx := opentracing.StartSpanFromContext(ctx, "handleMessage")
	span.SetTag("command", command)
	defer span.Finish()

	start := time.Now()
	reply, err := s.handler.HandleMessage(ctx, msg.Text, msg.UserID)
	if err != nil {
		ext.Error.Set(span, true)
		reply = sorryMessage + reply
	}
	sendErr := s.tgClient.SendMessage(reply, msg.UserID)
	observeResponse(command, time.Since(start), err != nil || sendErr != nil)

	if err != nil {
		return err
	}
	return sendErr
}
