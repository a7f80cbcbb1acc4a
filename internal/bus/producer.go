package bus

import (
	"context"

	"github.com/IBM/sarama"
)

// KafkaProducer is a sarama sync producer, grounded on dc4eu-vc's
// SyncProducerClient: idempotent, wait-for-all-replicas delivery with a
// bounded retry count.
type KafkaProducer struct {
	producer sarama.SyncProducer
}

// CommonProducerConfig mirrors the teacher pack's idempotent-producer
// settings: synchronous success reporting, all-replica acks, a single
// in-flight request per connection (required for idempotence), and a
// small bounded retry count.
func CommonProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Partitioner = NewVehicleIDPartitioner
	return cfg
}

// NewKafkaProducer dials brokers and opens a sync producer.
func NewKafkaProducer(brokers []string) (*KafkaProducer, error) {
	p, err := sarama.NewSyncProducer(brokers, CommonProducerConfig())
	if err != nil {
		return nil, err
	}
	return &KafkaProducer{producer: p}, nil
}

// Publish sends one message, keyed for partitioner routing when key is
// non-empty.
func (p *KafkaProducer) Publish(_ context.Context, topic string, key, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(value),
	}
	if len(key) > 0 {
		msg.Key = sarama.ByteEncoder(key)
	}
	_, _, err := p.producer.SendMessage(msg)
	return err
}

// Close releases the underlying sarama producer.
func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
