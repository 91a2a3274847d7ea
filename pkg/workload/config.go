package workload

import (
	"time"

	"github.com/huynhanx03/go-blockingqueue/pkg/settings"
	"github.com/huynhanx03/go-blockingqueue/pkg/utils"
)

const defaultTakeTimeout = time.Second

// Config describes one producer/consumer run.
type Config struct {
	Producers        int
	Consumers        int
	ItemsPerProducer int

	// PutTimeout bounds each insert attempt. Negative waits until space or
	// cancellation; zero never waits. A timed-out insert is retried.
	PutTimeout time.Duration

	// TakeTimeout bounds each remove attempt; a timed-out remove is retried.
	TakeTimeout time.Duration

	// Pauses between operations, to shape how often the queue runs full or empty.
	ProduceInterval time.Duration
	ConsumeInterval time.Duration
}

// FromSettings converts the millisecond based settings block.
func FromSettings(s settings.Workload) Config {
	return Config{
		Producers:        s.Producers,
		Consumers:        s.Consumers,
		ItemsPerProducer: s.ItemsPerProducer,
		PutTimeout:       utils.ToDurationMs(s.PutTimeout),
		TakeTimeout:      utils.ToDurationMs(s.TakeTimeout),
		ProduceInterval:  utils.ToDurationMs(s.ProduceInterval),
		ConsumeInterval:  utils.ToDurationMs(s.ConsumeInterval),
	}
}

func (c Config) withDefaults() Config {
	if c.Producers <= 0 {
		c.Producers = 1
	}
	if c.Consumers <= 0 {
		c.Consumers = 1
	}
	if c.ItemsPerProducer < 0 {
		c.ItemsPerProducer = 0
	}
	if c.TakeTimeout <= 0 {
		c.TakeTimeout = defaultTakeTimeout
	}
	if c.ProduceInterval < 0 {
		c.ProduceInterval = 0
	}
	if c.ConsumeInterval < 0 {
		c.ConsumeInterval = 0
	}
	return c
}

// Total is the number of items the run is expected to move.
func (c Config) Total() int {
	return c.Producers * c.ItemsPerProducer
}
