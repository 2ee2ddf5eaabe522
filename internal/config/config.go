package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shivamgupta214/outfox-health-assessment/pkg/database"
	pkgconfig "github.com/shivamgupta214/outfox-health-assessment/pkg/config"
)

type Config struct {
	API       APIConfig
	Chat      ChatConfig
	WebSocket WebSocketConfig
	HTTP      HTTPConfig
	Server    ServerConfig
	Database  database.Config
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type ChatConfig struct {
	Path           string
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

type WebSocketConfig struct {
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	PongWait         time.Duration `mapstructure:"pong_wait"`
	WriteWait        time.Duration `mapstructure:"write_wait"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	MaxMessageSize   int64         `mapstructure:"max_message_size"`
	SendBuffer       int           `mapstructure:"send_buffer"`
}

const (
	DefaultPingInterval     = 30 * time.Second
	DefaultPongWait         = 60 * time.Second
	DefaultWriteWait        = 10 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultMaxMessageSize   = 65536
	DefaultSendBuffer       = 64
)

// WithDefaults replaces unset or non-positive values with the defaults. A
// ping interval that is not shorter than the pong wait is derived from it.
func (c WebSocketConfig) WithDefaults() WebSocketConfig {
	if c.PongWait <= 0 {
		c.PongWait = DefaultPongWait
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = DefaultWriteWait
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	return c
}

type HTTPConfig struct {
	Timeout time.Duration
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// CacheConfig controls the provider search cache of the API server.
type CacheConfig struct {
	Enabled bool
	Prefix  string
	TTL     time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads config.yaml from configPath (if present) and the environment.
func Load(configPath string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, "config")
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

// LoadFile reads an explicit config file.
func LoadFile(path string) (*Config, error) {
	v, err := pkgconfig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Override from environment
	v.BindEnv("api.base_url", "NAVIGATOR_API_URL")
	v.BindEnv("chat.reconnect_delay", "NAVIGATOR_RECONNECT_DELAY")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.file_path", "DATABASE_FILE")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Parse durations
	cfg.Chat.ReconnectDelay = parseDuration(v, "chat.reconnect_delay", 3*time.Second)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", DefaultPingInterval)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", DefaultPongWait)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", DefaultWriteWait)
	cfg.WebSocket.HandshakeTimeout = parseDuration(v, "websocket.handshake_timeout", DefaultHandshakeTimeout)
	cfg.HTTP.Timeout = parseDuration(v, "http.timeout", 30*time.Second)
	cfg.Cache.TTL = parseDuration(v, "cache.ttl", 30*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("chat.path", "/ws/ask")
	v.SetDefault("chat.reconnect_delay", "3s")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.handshake_timeout", "10s")
	v.SetDefault("websocket.max_message_size", DefaultMaxMessageSize)
	v.SetDefault("websocket.send_buffer", DefaultSendBuffer)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "navigator.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.prefix", "navigator")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "navigator.log")
}

// Validate checks the values the chat client cannot run without.
func (c *Config) Validate() error {
	if _, err := c.ChatURL(); err != nil {
		return err
	}
	if c.Chat.ReconnectDelay <= 0 {
		return fmt.Errorf("chat.reconnect_delay must be positive, got %s", c.Chat.ReconnectDelay)
	}
	ws := c.WebSocket
	for name, d := range map[string]time.Duration{
		"ping_interval": ws.PingInterval,
		"pong_wait":     ws.PongWait,
		"write_wait":    ws.WriteWait,
	} {
		if d <= 0 {
			return fmt.Errorf("websocket.%s must be positive, got %s", name, d)
		}
	}
	if ws.PingInterval >= ws.PongWait {
		return fmt.Errorf("websocket.ping_interval (%s) must be shorter than pong_wait (%s)",
			c.WebSocket.PingInterval, c.WebSocket.PongWait)
	}
	return nil
}

// ChatURL derives the WebSocket endpoint from the API base URL.
func (c *Config) ChatURL() (string, error) {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid api.base_url %q: %w", c.API.BaseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid api.base_url %q: unsupported scheme %q", c.API.BaseURL, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(c.Chat.Path, "/")
	return u.String(), nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
