package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type ingestedHandler interface {
	HandleIngested(ctx context.Context, event currency.IngestedEvent) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	handler       ingestedHandler
}

func NewConsumer(cfg consumerConfig, handler ingestedHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka consumer group")
	}
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.IngestedTopic(),
		handler:       handler,
	}, nil
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Close() {
	if err := c.consumerGroup.Close(); err != nil {
		logger.Error("failed to close consumer group", zap.Error(err))
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		c.process(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, message *sarama.ConsumerMessage) {
	event, err := decodeIngested(message.Value)
	if err != nil {
		logger.Error("cannot decode kafka message", zap.Error(err))
		return
	}
	logger.Info("received ingested event",
		zap.ByteString("key", message.Key),
		zap.Time("date", event.Date),
		zap.Int("saved", event.Saved))

	if err = c.handler.HandleIngested(ctx, event); err != nil {
		logger.Error("failed to handle ingested event", zap.Error(err))
	}
}
