package settings

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BQ_QUEUE_CAPACITY=32.
const EnvPrefix = "BQ"

// ErrInvalidConfig is returned when a configuration is structurally valid
// but inconsistent.
var ErrInvalidConfig = errors.New("settings: invalid config")

var validate = validator.New()

// Load reads the configuration file at path, applies BQ_ environment
// overrides on top of the defaults and validates the result.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the settings the selected sink needs.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(err, "validate config")
	}

	switch cfg.Batcher.Sink {
	case SinkRedis:
		if cfg.Redis.Host == "" || cfg.Redis.ListKey == "" {
			return errors.Wrap(ErrInvalidConfig, "redis sink needs redis.host and redis.list_key")
		}
	case SinkKafka:
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			return errors.Wrap(ErrInvalidConfig, "kafka sink needs kafka.brokers and kafka.topic")
		}
	}
	return nil
}

// setDefaults mirrors configs/config.yaml so every key is known to viper,
// which lets AutomaticEnv override keys absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("queue.capacity", 10)
	v.SetDefault("queue.reject_nil", false)

	v.SetDefault("workload.producers", 2)
	v.SetDefault("workload.consumers", 2)
	v.SetDefault("workload.items_per_producer", 5)
	v.SetDefault("workload.put_timeout", -1)
	v.SetDefault("workload.take_timeout", 1000)
	v.SetDefault("workload.produce_interval", 100)
	v.SetDefault("workload.consume_interval", 150)

	v.SetDefault("batcher.sink", SinkLog)
	v.SetDefault("batcher.batch_size", 4)
	v.SetDefault("batcher.flush_interval", 500)
	v.SetDefault("batcher.queue_capacity", 64)

	v.SetDefault("logger.log_level", "info")
	v.SetDefault("logger.file_log_name", "")
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.compress", false)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.list_key", "bq:items")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "")
	v.SetDefault("kafka.client_id", "bqdemo")
	v.SetDefault("kafka.timeout", 10)
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("snowflake_node.worker_id", 1)
	v.SetDefault("snowflake_node.config.epoch", 1704067200000) // 2024-01-01T00:00:00Z
	v.SetDefault("snowflake_node.config.node", 10)
	v.SetDefault("snowflake_node.config.step", 12)
	v.SetDefault("snowflake_node.config.total_bits", 63)
}
