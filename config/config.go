package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"` // 10s
	IdleTimeout       time.Duration `yaml:"idleTimeout"`       // 60s
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`   // 10s
	AllowedOrigins    []string      `yaml:"allowedOrigins"`    // ["*"]
}

// GRPC serves the health service only; an empty addr disables it.
type GRPC struct {
	Addr string `yaml:"addr"`
}

type WS struct {
	ReadLimit int64         `yaml:"readLimit"` // bytes per frame
	PingEvery time.Duration `yaml:"pingEvery"`
	WriteWait time.Duration `yaml:"writeWait"`
	SendQueue int           `yaml:"sendQueue"` // frames buffered per connection
}

type Rooms struct {
	ReclaimEmpty bool `yaml:"reclaimEmpty"`
}

type Static struct {
	Dir   string `yaml:"dir"`
	Index string `yaml:"index"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // signal-relay
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	GRPC    GRPC    `yaml:"grpc"`
	WS      WS      `yaml:"ws"`
	Rooms   Rooms   `yaml:"rooms"`
	Static  Static  `yaml:"static"`
	Logging Logging `yaml:"logging"`
}

const defaultPath = "./config/config.yaml"

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultPath
	}
	return Load(path)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.WS.ReadLimit < 0 {
		return errors.New("ws.readLimit must not be negative")
	}
	if c.WS.SendQueue < 0 {
		return errors.New("ws.sendQueue must not be negative")
	}

	// defaults
	if c.HTTP.ReadHeaderTimeout == 0 {
		c.HTTP.ReadHeaderTimeout = 10 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.WS.ReadLimit == 0 {
		c.WS.ReadLimit = 1 << 20
	}
	if c.WS.PingEvery <= 0 {
		c.WS.PingEvery = 15 * time.Second
	}
	if c.WS.WriteWait <= 0 {
		c.WS.WriteWait = 5 * time.Second
	}
	if c.WS.SendQueue == 0 {
		c.WS.SendQueue = 256
	}
	if c.Static.Index == "" {
		c.Static.Index = "viewer.html"
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "signal-relay"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}
