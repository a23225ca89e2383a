package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/Owoblo/exam-monitor/pkg/config"
	"github.com/Owoblo/exam-monitor/pkg/pubsub"
)

const EnvProduction = "production"

type Config struct {
	Env       string
	Server    ServerConfig
	Stream    StreamConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Kafka     KafkaConfig
	Mirror    MirrorConfig
	WebRTC    WebRTCConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StreamConfig controls monitor subscriptions.
type StreamConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	QueueSize         int           `mapstructure:"queue_size"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

// MirrorConfig controls republishing of stream messages to an external bus.
type MirrorConfig struct {
	Enabled bool
	PubSub  pubsub.Config `mapstructure:"pubsub"`
}

type WebRTCConfig struct {
	ICEServers []ICEServerConfig `mapstructure:"ice_servers"`
}

type ICEServerConfig struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("stream.heartbeat_interval", "30s")
	v.SetDefault("stream.queue_size", 64)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Cache-Control", "X-Request-ID"})
	v.SetDefault("cors.max_age", 300)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "exam-flags")
	v.SetDefault("kafka.partitions", 4)
	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.pubsub.driver", "redis")
	v.SetDefault("mirror.pubsub.redis.address", "localhost:6379")
	v.SetDefault("mirror.pubsub.redis.password", "")
	v.SetDefault("mirror.pubsub.redis.db", 0)
	v.SetDefault("mirror.pubsub.redis.pool_size", 10)
	v.SetDefault("mirror.pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("mirror.pubsub.kafka.partitions", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("env", "APP_ENV")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("stream.heartbeat_interval", "STREAM_HEARTBEAT_INTERVAL")
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_FLAG_TOPIC")
	v.BindEnv("mirror.enabled", "MIRROR_ENABLED")
	v.BindEnv("mirror.pubsub.driver", "MIRROR_DRIVER")
	v.BindEnv("mirror.pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("mirror.pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("mirror.pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ReadTimeout = parseDuration(v, "server.read_timeout", 15*time.Second)
	cfg.Server.IdleTimeout = parseDuration(v, "server.idle_timeout", 120*time.Second)
	cfg.Server.ShutdownTimeout = parseDuration(v, "server.shutdown_timeout", 30*time.Second)
	cfg.Stream.HeartbeatInterval = parseDuration(v, "stream.heartbeat_interval", 30*time.Second)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)

	if cfg.Stream.QueueSize <= 0 {
		cfg.Stream.QueueSize = 64
	}

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
