package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/usdot-its/ppm/internal/ppmlog"
)

// KafkaConsumer is a sarama consumer-group reader for a single topic,
// grounded on dc4eu-vc's MessageConsumerClient: Setup/Cleanup/
// ConsumeClaim dispatch to a MessageHandler, with a retry loop around
// consumerGroup.Consume so a rebalance or transient broker error doesn't
// kill the worker.
type KafkaConsumer struct {
	group  sarama.ConsumerGroup
	topic  string
	log    *ppmlog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// CommonConsumerConfig returns the sarama config shared by every
// consumer: oldest-offset reset, round-robin-free range balancing, no
// SASL (cluster auth is handled at the network layer in this
// deployment).
func CommonConsumerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Return.Errors = true
	return cfg
}

// NewKafkaConsumer dials brokers and joins consumerGroup for topic.
func NewKafkaConsumer(brokers []string, consumerGroup, topic string, log *ppmlog.Logger) (*KafkaConsumer, error) {
	group, err := sarama.NewConsumerGroup(brokers, consumerGroup, CommonConsumerConfig())
	if err != nil {
		return nil, err
	}
	return &KafkaConsumer{group: group, topic: topic, log: log}, nil
}

// Start joins the consumer group and dispatches each claimed message to
// handler until ctx is canceled. A rebalance returns cleanly from
// Consume and Consume is called again at once; any other error except a
// closed group is logged and retried after a one-second backoff. ctx
// cancellation stops the retry loop.
func (c *KafkaConsumer) Start(ctx context.Context, handler MessageHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	groupHandler := &consumerGroupHandler{handler: handler, log: c.log}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			if ctx.Err() != nil {
				return
			}
			if err := c.group.Consume(ctx, []string{c.topic}, groupHandler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.log.Errorw("consumer group error, retrying", "topic", c.topic, "error", err)
				time.Sleep(time.Second)
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			c.log.Errorw("consumer group async error", "topic", c.topic, "error", err)
		}
	}()

	return nil
}

// Close stops consumption and releases the group.
func (c *KafkaConsumer) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
	log     *ppmlog.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			m := &Message{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset, Key: msg.Key, Value: msg.Value}
			if err := h.handler.HandleMessage(session.Context(), m); err != nil {
				h.log.Errorw("message handler error", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
