package chatlog

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
)

// Driver identifiers for CHAT_LOG_DRIVER.
const (
	DriverAsync    = "async"
	DriverAMQP     = "amqp"
	DriverDisabled = "disabled"
)

// NewDispatcher selects how batches reach sink. With the amqp driver the sink is written by a Consumer instead.
func NewDispatcher(cfg config.ChatLogConfig, sink EntryAppender) (Dispatcher, error) {
	opts := AsyncOptions{Workers: cfg.Workers, QueueSize: cfg.QueueSize, Timeout: cfg.Timeout}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverAsync:
		return NewAsyncDispatcher(sink, opts), nil
	case DriverAMQP:
		pub := NewPublisher(cfg.AMQPURL, cfg.Queue)
		return &amqpDispatcher{AsyncDispatcher: NewAsyncDispatcher(pub, opts), publisher: pub}, nil
	case DriverDisabled, "none", "off":
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("unsupported chat log driver: %s", cfg.Driver)
	}
}

type amqpDispatcher struct {
	*AsyncDispatcher
	publisher *Publisher
}

func (d *amqpDispatcher) Close(ctx context.Context) error {
	err := d.AsyncDispatcher.Close(ctx)
	_ = d.publisher.Close()
	return err
}
