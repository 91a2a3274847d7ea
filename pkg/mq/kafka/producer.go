// Package kafka publishes drained batches to a Kafka topic.
package kafka

import (
	"fmt"

	"github.com/IBM/sarama"

	"github.com/huynhanx03/go-blockingqueue/pkg/settings"
	"github.com/huynhanx03/go-blockingqueue/pkg/utils"
)

const (
	defaultClientID     = "bqdemo"
	defaultTimeout      = 10  // seconds
	defaultMaxRetries   = 3   // attempts
	defaultRetryBackoff = 100 // millis
)

// NewConfig builds a sarama producer config from settings. Successes are
// returned so SendMessages can report per-message failures.
func NewConfig(cfg *settings.Kafka) (*sarama.Config, error) {
	c := sarama.NewConfig()

	c.ClientID = cfg.ClientID
	if c.ClientID == "" {
		c.ClientID = defaultClientID
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	c.Net.DialTimeout = utils.ToDuration(timeout)
	c.Producer.Timeout = utils.ToDuration(timeout)
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.Retry.Max = retries
	c.Producer.Retry.Backoff = utils.ToDurationMs(backoff)
	if cfg.MaxMessageBytes > 0 {
		c.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProducer, err)
	}
	return c, nil
}

// NewSyncProducer connects a synchronous producer to the configured brokers.
func NewSyncProducer(cfg *settings.Kafka) (sarama.SyncProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	c, err := NewConfig(cfg)
	if err != nil {
		return nil, err
	}

	p, err := sarama.NewSyncProducer(cfg.Brokers, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProducer, err)
	}
	return p, nil
}
