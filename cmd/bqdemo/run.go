package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-blockingqueue/pkg/database/redis"
	"github.com/huynhanx03/go-blockingqueue/pkg/datastructs/queue"
	"github.com/huynhanx03/go-blockingqueue/pkg/logger"
	"github.com/huynhanx03/go-blockingqueue/pkg/mq/batcher"
	"github.com/huynhanx03/go-blockingqueue/pkg/mq/kafka"
	"github.com/huynhanx03/go-blockingqueue/pkg/settings"
	"github.com/huynhanx03/go-blockingqueue/pkg/timer"
	"github.com/huynhanx03/go-blockingqueue/pkg/unique"
	"github.com/huynhanx03/go-blockingqueue/pkg/utils"
	"github.com/huynhanx03/go-blockingqueue/pkg/workload"
)

const clockStep = time.Millisecond

func newRunCmd() *cobra.Command {
	var (
		cfgPath string
		sink    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run concurrent producers and consumers through one queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := settings.Load(cfgPath)
			if err != nil {
				return err
			}
			if sink != "" {
				cfg.Batcher.Sink = sink
				if err := settings.Validate(cfg); err != nil {
					return err
				}
			}

			log, err := logger.New(cfg.Logger)
			if err != nil {
				return err
			}
			defer log.Sync()

			return runWorkload(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a config file (env BQ_* overrides apply)")
	cmd.Flags().StringVar(&sink, "sink", "", "override batcher.sink: none, log, redis or kafka")
	return cmd
}

func runWorkload(ctx context.Context, cfg *settings.Config, log *zap.Logger) error {
	var opts []queue.Option
	if cfg.Queue.RejectNil {
		opts = append(opts, queue.WithRejectNil())
	}
	q, err := queue.NewBlocking[workload.Item](cfg.Queue.Capacity, opts...)
	if err != nil {
		return err
	}

	clock := timer.NewCachedTimer(clockStep)
	defer clock.Stop()

	gen, err := unique.NewSnowflakeNode(cfg.SnowflakeNode, clock)
	if err != nil {
		return err
	}

	runOpts := []workload.Option{workload.WithLogger(log)}
	cons, closeSink, err := newSink(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	if cons != nil {
		runOpts = append(runOpts, workload.WithSink(cons, batcher.Config{
			BatchSize:     cfg.Batcher.BatchSize,
			FlushInterval: utils.ToDurationMs(cfg.Batcher.FlushInterval),
		}, cfg.Batcher.QueueCapacity))
	}

	_, err = workload.New(workload.FromSettings(cfg.Workload), q, gen, runOpts...).Run(ctx)
	return err
}

// newSink builds the batch consumer named by cfg.Batcher.Sink.
// A nil consumer means items are not forwarded.
func newSink(cfg *settings.Config, log *zap.Logger) (batcher.Consumer[workload.Item], func(), error) {
	noop := func() {}

	switch cfg.Batcher.Sink {
	case settings.SinkLog:
		return batcher.ConsumerFunc[workload.Item](func(_ context.Context, batch []workload.Item) error {
			refs := make([]string, len(batch))
			for i, it := range batch {
				refs[i] = it.Ref()
			}
			log.Info("batch", zap.Int("size", len(batch)), zap.Strings("refs", refs))
			return nil
		}), noop, nil

	case settings.SinkRedis:
		engine, err := redis.NewConnection(&cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		log.Info("redis sink connected", zap.String("key", cfg.Redis.ListKey))
		return redis.NewListSink[workload.Item](engine, cfg.Redis.ListKey), func() {
			if err := engine.Close(); err != nil {
				log.Warn("close redis", zap.Error(err))
			}
		}, nil

	case settings.SinkKafka:
		producer, err := kafka.NewSyncProducer(&cfg.Kafka)
		if err != nil {
			return nil, noop, err
		}
		log.Info("kafka sink connected", zap.String("topic", cfg.Kafka.Topic))
		key := func(it workload.Item) string { return fmt.Sprintf("producer-%d", it.Producer) }
		return kafka.NewSink[workload.Item](producer, cfg.Kafka.Topic, kafka.WithKey(key)), func() {
			if err := producer.Close(); err != nil {
				log.Warn("close kafka producer", zap.Error(err))
			}
		}, nil
	}

	return nil, noop, nil
}
