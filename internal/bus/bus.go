// Package bus wires the pipeline driver to Kafka: a consumer-group
// reader on the inbound BSM/TIM topic and a sync producer on the
// outbound topic, plus a vehicle-id keyed partitioner. Structurally
// grounded on the teacher pack's sarama wiring
// (dc4eu-vc/pkg/messagebroker/kafka); the core engine never imports this
// package directly — only cmd/ppm does, through the Consumer/Producer
// interfaces below.
package bus

import (
	"context"
)

// Message is one inbound record handed to a MessageHandler.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
}

// MessageHandler processes one inbound message. Returning an error does
// not stop consumption: KafkaConsumer logs it and marks the message
// consumed. KafkaConsumer also logs consumer-group errors of every kind,
// unknown-topic and unknown-partition errors included, and keeps
// retrying; it stops only when its context is canceled or the group is
// closed.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *Message) error
}

// Consumer reads from one or more topics until Close or ctx is canceled.
type Consumer interface {
	Start(ctx context.Context, handler MessageHandler) error
	Close() error
}

// Producer publishes a message to a topic, optionally keyed for
// partitioner routing.
type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Close() error
}
