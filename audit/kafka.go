package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"orderbot/models"
)

func encodeRecord(rec models.AuditRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// Writer is the part of kafka.Writer this sink needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink appends audit records as JSON messages. Records that cannot be
// written go to the spill buffer instead of being lost.
type KafkaSink struct {
	writer  Writer
	timeout time.Duration
	spill   *SpillBuffer
	Logger  *log.Logger
}

func NewKafkaSink(brokers []string, topic string, timeout time.Duration, spill *SpillBuffer, logger *log.Logger) *KafkaSink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaSink{writer: writer, timeout: timeout, spill: spill, Logger: logger}
}

func (s *KafkaSink) Append(rec models.AuditRecord) error {
	value, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(rec.QuoteID), Value: value}); err != nil {
		s.Logger.Errorf("kafka write failed for order %v: %v", rec.OrderID, err)
		s.spill.Append(rec)
		return err
	}
	return nil
}

func (s *KafkaSink) Close() error {
	s.spill.Dump()
	return s.writer.Close()
}
