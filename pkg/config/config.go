package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGatewayQueueSize = 64
	DefaultWorkerPoolSize   = 4
)

var (
	ErrGatewayQueueSize = errors.New("gateway queue_size must be positive")
	ErrWorkerPoolSize   = errors.New("worker pool_size must be positive")
)

type Config struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	RTC     RTCConfig     `yaml:"rtc,omitempty"`
	Capture CaptureConfig `yaml:"capture,omitempty"`
}

type LoggingConfig struct {
	// valid levels: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

type RTCConfig struct {
	ICEServers []ICEServer `yaml:"ice_servers,omitempty"`
	// size of the async job pool used for stats collection
	PoolSize int `yaml:"pool_size,omitempty"`
}

type ICEServer struct {
	URLs       []string `yaml:"urls,omitempty"`
	Username   string   `yaml:"username,omitempty"`
	Credential string   `yaml:"credential,omitempty"`
}

type CaptureConfig struct {
	// pending task capacity of the designated capture thread
	QueueSize int `yaml:"queue_size,omitempty"`
}

func NewConfig(confString string) (*Config, error) {
	conf := &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		RTC: RTCConfig{
			PoolSize: DefaultWorkerPoolSize,
		},
		Capture: CaptureConfig{
			QueueSize: DefaultGatewayQueueSize,
		},
	}

	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), conf); err != nil {
			return nil, errors.Wrap(err, "could not parse config")
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func NewConfigFromFile(path string) (*Config, error) {
	if path == "" {
		return NewConfig("")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read config file")
	}
	return NewConfig(string(content))
}

func (c *Config) Validate() error {
	if c.Capture.QueueSize <= 0 {
		return ErrGatewayQueueSize
	}
	if c.RTC.PoolSize <= 0 {
		return ErrWorkerPoolSize
	}
	return nil
}
