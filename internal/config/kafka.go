package config

const (
	defaultIngestedTopic = "rates-ingested"
	defaultConsumerGroup = "rates-bot"
)

type KafkaConfig struct {
	BrokerList []string `yaml:"brokers"`
	Consumer   string   `yaml:"consumer-group"`
	Topic      string   `yaml:"ingested-topic"`
}

func (s *KafkaConfig) setDefaults() {
	if s.Consumer == "" {
		s.Consumer = defaultConsumerGroup
	}
	if s.Topic == "" {
		s.Topic = defaultIngestedTopic
	}
}

func (s *KafkaConfig) Enabled() bool {
	return len(s.BrokerList) > 0
}

func (s *KafkaConfig) Brokers() []string {
	return s.BrokerList
}

func (s *KafkaConfig) ConsumerGroup() string {
	return s.Consumer
}

func (s *KafkaConfig) IngestedTopic() string {
	return s.Topic
}
