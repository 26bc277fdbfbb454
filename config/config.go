package config

import (
	"errors"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr" envconfig:"HTTP_ADDR"`
}

type Logging struct {
	Env       string `yaml:"env" envconfig:"LOG_ENV"`      // dev|prod
	Service   string `yaml:"service"`                      // relay
	Version   string `yaml:"version"`                      // v0.1.0
	Backend   string `yaml:"backend" envconfig:"LOG_BACKEND"` // std|zap
	AddSource bool   `yaml:"addSource"`
	Debug     bool   `yaml:"debug" envconfig:"LOG_DEBUG"`
}

type Relay struct {
	// задержка отложенной reconcile-перепроверки
	RecheckDelay string `yaml:"recheckDelay" envconfig:"RECHECK_DELAY"`
	// сколько сообщений на диалог отдаёт волатильная история
	HistoryLimit int `yaml:"historyLimit" envconfig:"HISTORY_LIMIT"`
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
	Relay   Relay   `yaml:"relay"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// конфиг-файл не обязателен: дефолты + env
	default:
		return nil, err
	}

	// env перекрывает yaml
	if err := envconfig.Process("relay", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "relay"
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
	if c.Relay.RecheckDelay == "" {
		c.Relay.RecheckDelay = "500ms"
	}
	if _, err := time.ParseDuration(c.Relay.RecheckDelay); err != nil {
		return errors.New("relay.recheckDelay is not a duration")
	}
	if c.Relay.HistoryLimit <= 0 {
		c.Relay.HistoryLimit = 50
	}
	return nil
}

// RecheckDelayDuration — распарсенная задержка; валидность проверена в validate
func (c *Config) RecheckDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.Relay.RecheckDelay)
	return d
}
