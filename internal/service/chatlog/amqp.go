package chatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/charmbracelet/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
)

const DefaultQueue = "chat.log"

type batchMessage struct {
	Entries []chat.LogEntry `json:"entries"`
}

func encodeBatch(entries []chat.LogEntry) ([]byte, error) {
	return json.Marshal(batchMessage{Entries: entries})
}

func decodeBatch(body []byte) ([]chat.LogEntry, error) {
	var msg batchMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return msg.Entries, nil
}

// Publisher forwards batches to a durable RabbitMQ queue. It satisfies EntryAppender so it can sit
// behind an AsyncDispatcher; the sheet write then happens in a Consumer.
type Publisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher that connects lazily on first use.
func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{url: url, queue: queue}
}

func (p *Publisher) AppendEntries(ctx context.Context, entries []chat.LogEntry) (Result, error) {
	if len(entries) == 0 {
		return Result{}, nil
	}
	body, err := encodeBatch(entries)
	if err != nil {
		return Result{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return Result{}, err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.resetLocked()
		return Result{}, fmt.Errorf("rabbitmq publish: %w", err)
	}
	return Result{Appended: len(entries)}, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func (p *Publisher) channelLocked() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.resetLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Consumer drains the chat log queue into a sink.
type Consumer struct {
	url     string
	queue   string
	sink    EntryAppender
	timeout time.Duration
}

// NewConsumer builds a consumer writing each delivered batch to sink.
func NewConsumer(url, queue string, sink EntryAppender, timeout time.Duration) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Consumer{url: url, queue: queue, sink: sink, timeout: timeout}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.Warn("chat-log consumer: failed to dial broker", "err", err, "retry", backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("chat-log consumer: consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("chat-log consumer: set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				log.Warn("chat-log consumer: handle message failed", "err", err)
				_ = d.Nack(false, false) // no requeue, avoids tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	entries, err := decodeBatch(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err = c.sink.AppendEntries(ctx, entries)
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
