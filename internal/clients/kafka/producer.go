package kafka

import (
	"context"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
)

const netTimeout = 5 * time.Second

type producerConfig interface {
	Brokers() []string
	IngestedTopic() string
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	config.Producer.Timeout = netTimeout
	config.Net.DialTimeout = netTimeout
	config.Net.ReadTimeout = netTimeout
	config.Net.WriteTimeout = netTimeout

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return &Producer{
		producer: producer,
		topic:    cfg.IngestedTopic(),
	}, nil
}

// PublishIngested sends the event keyed by its date, so that events of the
// same day land in one partition.
func (p *Producer) PublishIngested(_ context.Context, event currency.IngestedEvent) error {
	value, err := encodeIngested(event)
	if err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Date.Format(currency.DateLayout)),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return errors.Wrapf(err, "produce to %s", p.topic)
	}
	logger.Info("ingested event published",
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

func (p *Producer) Close() {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
