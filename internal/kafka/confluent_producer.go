package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/Owoblo/exam-monitor/internal/domain"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
)

const (
	headerEventType   = "event_type"
	headerContentType = "content_type"

	topicSetupTimeout = 10 * time.Second
	queueFullBackoff  = 50 * time.Millisecond
	closeFlushMs      = 5000
)

// ConfluentProducer writes flag events to a single topic, keyed by student
// id so one student's flags stay ordered within a partition.
type ConfluentProducer struct {
	producer *kafka.Producer
	topic    string
	failed   atomic.Int64
	doneCh   chan struct{}
}

// NewConfluentProducer connects to brokers and makes sure topic exists.
// A failed topic setup is logged and tolerated; the broker may already hold
// the topic or auto-create it.
func NewConfluentProducer(brokers, topic string, partitions int) (*ConfluentProducer, error) {
	if partitions <= 0 {
		partitions = 4
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"client.id":         "exam-monitor",
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	cp := &ConfluentProducer{
		producer: p,
		topic:    topic,
		doneCh:   make(chan struct{}),
	}

	if err := cp.createTopic(partitions); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Str("topic", topic).Msg("flag topic setup failed, continuing")
	}

	go cp.watchDeliveries()

	return cp, nil
}

func (cp *ConfluentProducer) createTopic(partitions int) error {
	admin, err := kafka.NewAdminClientFromProducer(cp.producer)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), topicSetupTimeout)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             cp.topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return err
	}
	for _, r := range results {
		switch r.Error.Code() {
		case kafka.ErrNoError, kafka.ErrTopicAlreadyExists:
		default:
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Error)
		}
	}
	return nil
}

func (cp *ConfluentProducer) watchDeliveries() {
	defer close(cp.doneCh)

	l := pkglog.L()
	for e := range cp.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error == nil {
				continue
			}
			cp.failed.Add(1)
			l.Error().
				Err(ev.TopicPartition.Error).
				Str(pkglog.FieldStudentID, string(ev.Key)).
				Msg("flag event delivery failed")
		case kafka.Error:
			l.Warn().Err(ev).Bool("fatal", ev.IsFatal()).Msg("kafka client error")
		}
	}
}

// ProduceFlag enqueues a flag_received event. It retries once when the
// local queue is full and gives up if ctx is done first.
func (cp *ConfluentProducer) ProduceFlag(ctx context.Context, record domain.FlagRecord) error {
	event := NewFlagEvent(record)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal flag event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &cp.topic, Partition: kafka.PartitionAny},
		Key:            []byte(record.StudentID),
		Value:          value,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
			{Key: headerContentType, Value: []byte("application/json")},
		},
	}

	err = cp.producer.Produce(msg, nil)
	if isQueueFull(err) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(queueFullBackoff):
		}
		err = cp.producer.Produce(msg, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to produce flag event: %w", err)
	}
	return nil
}

func (cp *ConfluentProducer) Failed() int64 {
	return cp.failed.Load()
}

// Close flushes queued events, then releases the client.
func (cp *ConfluentProducer) Close() error {
	if left := cp.producer.Flush(closeFlushMs); left > 0 {
		l := pkglog.L()
		l.Warn().Int("pending", left).Msg("flag events left unflushed on close")
	}
	cp.producer.Close()
	<-cp.doneCh

	if failed := cp.Failed(); failed > 0 {
		l := pkglog.L()
		l.Warn().Int64("delivery_failures", failed).Str("topic", cp.topic).Msg("flag export closed with rejected events")
	}
	return nil
}

func isQueueFull(err error) bool {
	var kerr kafka.Error
	return errors.As(err, &kerr) && kerr.Code() == kafka.ErrQueueFull
}
