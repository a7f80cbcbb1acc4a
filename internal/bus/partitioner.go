package bus

import (
	"hash/fnv"

	"github.com/IBM/sarama"
)

// vehicleIDPartitioner routes messages to a partition by the FNV-1a hash
// of the message key (the vehicle/message id), so that all messages for
// a given vehicle land on the same partition and preserve per-vehicle
// ordering downstream. Adapted from the reference implementation's
// custom hash partitioner callback (myHashPartitionerCb.hpp), which the
// distilled spec dropped — SPEC_FULL.md §4 item 4 restores it as a real
// sarama.Partitioner.
type vehicleIDPartitioner struct {
	topic string
}

// NewVehicleIDPartitioner is a sarama.PartitionerConstructor suitable
// for sarama.Config.Producer.Partitioner.
func NewVehicleIDPartitioner(topic string) sarama.Partitioner {
	return &vehicleIDPartitioner{topic: topic}
}

func (p *vehicleIDPartitioner) Partition(message *sarama.ProducerMessage, numPartitions int32) (int32, error) {
	if numPartitions <= 0 {
		return 0, nil
	}
	if message.Key == nil {
		return 0, nil
	}
	keyBytes, err := message.Key.Encode()
	if err != nil {
		return 0, err
	}
	h := fnv.New32a()
	_, _ = h.Write(keyBytes)
	return int32(h.Sum32() % uint32(numPartitions)), nil
}

func (p *vehicleIDPartitioner) RequiresConsistency() bool { return true }
