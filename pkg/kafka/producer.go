package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/logger"
)

const defaultWriteTimeout = 10 * time.Second

// Message is a single record destined for topic.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes messages synchronously and waits for all in-sync replicas.
type Producer struct {
	writer  messageWriter
	brokers []string
	timeout time.Duration
	dial    func(ctx context.Context, network, address string) (net.Conn, error)
}

func NewProducer(cfg config.KafkaConfig, logg *logger.Logger) (*Producer, error) {
	brokers := cleanBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}
	if logg != nil {
		ctx := logg.WithField(context.Background(), "brokers", strings.Join(brokers, ","))
		writer.ErrorLogger = kafka.LoggerFunc(func(msg string, args ...any) {
			logg.Warn(ctx, fmt.Sprintf("kafka.writer: "+msg, args...))
		})
	}
	return newProducer(writer, brokers, timeout), nil
}

func newProducer(w messageWriter, brokers []string, timeout time.Duration) *Producer {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &Producer{writer: w, brokers: brokers, timeout: timeout, dial: dialer.DialContext}
}

// Publish writes msg and returns once the broker acknowledged it.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka producer not initialized")
	}
	if strings.TrimSpace(msg.Topic) == "" {
		return errors.New("kafka topic is required")
	}
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.writer.WriteMessages(writeCtx, kafka.Message{
		Topic:   msg.Topic,
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Headers: headers,
		Time:    time.Now().UTC(),
	})
}

// Ping opens a TCP connection to the first reachable broker.
func (p *Producer) Ping(ctx context.Context) error {
	if p == nil {
		return errors.New("kafka producer not initialized")
	}
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := p.dial(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		lastErr = errors.New("no kafka brokers configured")
	}
	return fmt.Errorf("kafka unreachable: %w", lastErr)
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func cleanBrokers(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, b := range raw {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
