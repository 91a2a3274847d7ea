package settings

// Sink names accepted by Batcher.Sink.
const (
	SinkNone  = "none"
	SinkLog   = "log"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

type Config struct {
	Queue         Queue         `mapstructure:"queue"`
	Workload      Workload      `mapstructure:"workload"`
	Batcher       Batcher       `mapstructure:"batcher"`
	Logger        Logger        `mapstructure:"logger"`
	Redis         Redis         `mapstructure:"redis"`
	Kafka         Kafka         `mapstructure:"kafka"`
	SnowflakeNode SnowflakeNode `mapstructure:"snowflake_node"`
}

// Queue is the configuration for the bounded blocking queue
type Queue struct {
	Capacity  int  `mapstructure:"capacity" validate:"gt=0"`
	RejectNil bool `mapstructure:"reject_nil"`
}

// Workload is the configuration for the producer/consumer driver
type Workload struct {
	Producers        int `mapstructure:"producers" validate:"gt=0"`
	Consumers        int `mapstructure:"consumers" validate:"gt=0"`
	ItemsPerProducer int `mapstructure:"items_per_producer" validate:"gte=0"`
	PutTimeout       int `mapstructure:"put_timeout"`                       // Milliseconds, negative waits forever
	TakeTimeout      int `mapstructure:"take_timeout" validate:"gt=0"`      // Milliseconds
	ProduceInterval  int `mapstructure:"produce_interval" validate:"gte=0"` // Milliseconds
	ConsumeInterval  int `mapstructure:"consume_interval" validate:"gte=0"` // Milliseconds
}

// Batcher is the configuration for draining consumed items into a sink
type Batcher struct {
	Sink          string `mapstructure:"sink" validate:"oneof=none log redis kafka"`
	BatchSize     int    `mapstructure:"batch_size" validate:"gte=0"`
	FlushInterval int    `mapstructure:"flush_interval" validate:"gte=0"` // Milliseconds
	QueueCapacity int    `mapstructure:"queue_capacity" validate:"gte=0"` // Hand-off queue between consumers and the sink
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
	Compress    bool   `mapstructure:"compress"`
}

// Redis is the configuration for Redis
type Redis struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Password        string `mapstructure:"password"`
	Database        int    `mapstructure:"database"`
	ListKey         string `mapstructure:"list_key"`
	PoolSize        int    `mapstructure:"pool_size"`
	MinIdleConns    int    `mapstructure:"min_idle_conns"`
	PoolTimeout     int    `mapstructure:"pool_timeout"`
	DialTimeout     int    `mapstructure:"dial_timeout"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	MaxRetries      int    `mapstructure:"max_retries"`
	MaxRetryBackoff int    `mapstructure:"max_retry_backoff"`
	MinRetryBackoff int    `mapstructure:"min_retry_backoff"`
}

// Kafka is the configuration for Kafka
type Kafka struct {
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	ClientID        string   `mapstructure:"client_id"`
	MaxMessageBytes int      `mapstructure:"max_message_bytes"` // Bytes
	Timeout         int      `mapstructure:"timeout"`           // Seconds
	MaxRetries      int      `mapstructure:"max_retries"`       // Number of retries
	RetryBackoff    int      `mapstructure:"retry_backoff"`     // Milliseconds
}

type Snowflake struct {
	Epoch     int64 `mapstructure:"epoch"`
	Node      uint8 `mapstructure:"node"`
	Step      uint8 `mapstructure:"step"`
	TotalBits uint8 `mapstructure:"total_bits"`
}

type SnowflakeNode struct {
	Config   Snowflake `mapstructure:"config"`
	WorkerID int64     `mapstructure:"worker_id"`
}
