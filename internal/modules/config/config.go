package config

import (
	"io"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs/"
	defaultConfigFile = "values_local.yaml"
)

// ErrInvalidConfig — конфиг не прошёл проверку, тикать нельзя.
var ErrInvalidConfig = errors.New("invalid configuration")

type TelegramConfig struct {
	Token     string `yaml:"token" validate:"required"`
	ChannelID int64  `yaml:"channel_id" validate:"required"`
}

type MarketDataConfig struct {
	BaseURL  string        `yaml:"base_url" default:"https://real-time-finance-data.p.rapidapi.com" validate:"required,url"`
	APIKey   string        `yaml:"api_key"`
	APIHost  string        `yaml:"api_host" default:"real-time-finance-data.p.rapidapi.com"`
	Period   string        `yaml:"period" default:"1D" validate:"required"`
	Interval string        `yaml:"interval" default:"1min"`
	Timeout  time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
}

type EngineConfig struct {
	TickInterval      time.Duration `yaml:"tick_interval" default:"5m" validate:"gt=0"`
	Cooldown          time.Duration `yaml:"cooldown" default:"5m" validate:"min=0"`
	EvaluationHorizon time.Duration `yaml:"evaluation_horizon" default:"68s" validate:"gt=0"`
	// Мартингейл: 0 — без повтора, 1 — один повтор. Больше не бывает.
	MartingaleRetries int           `yaml:"martingale_retries" default:"1" validate:"min=0,max=1"`
	BatchSize         int           `yaml:"batch_size" default:"5" validate:"min=1"`
	SummaryLookback   time.Duration `yaml:"summary_lookback" default:"30m" validate:"gt=0"`
	HorizonLabel      string        `yaml:"horizon_label" default:"1 minute"`
	OperateLink       string        `yaml:"operate_link"`
	Timezone          string        `yaml:"timezone" default:"UTC"`
}

type InstrumentConfig struct {
	Symbol string `yaml:"symbol" validate:"required"`
	Name   string `yaml:"name" validate:"required"`
}

type ServiceConfig struct {
	Host      string `yaml:"host"`
	AdminPort int    `yaml:"admin_port" default:"8080" validate:"min=0,max=65535"`
}

type TracingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host" default:"localhost"`
	Port    int    `yaml:"port" default:"6831"`
}

type LogConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
}

// Config ...
type Config struct {
	Telegram    TelegramConfig     `yaml:"telegram"`
	MarketData  MarketDataConfig   `yaml:"market_data"`
	Engine      EngineConfig       `yaml:"engine"`
	Instruments []InstrumentConfig `yaml:"instruments" validate:"min=1,unique=Symbol,dive"`
	Service     ServiceConfig      `yaml:"service"`
	Tracing     TracingConfig      `yaml:"tracing"`
	Log         LogConfig          `yaml:"log"`

	loc *time.Location
}

func defaultInstruments() []InstrumentConfig {
	return []InstrumentConfig{
		{Symbol: "EURCHF", Name: "EUR/CHF"},
		{Symbol: "CADCHF", Name: "CAD/CHF"},
		{Symbol: "AUDCAD", Name: "AUD/CAD"},
		{Symbol: "USDCHF", Name: "USD/CHF"},
		{Symbol: "BTCUSDT", Name: "BTC/USDT"},
		{Symbol: "ETHUSDT", Name: "ETH/USDT"},
		{Symbol: "SOLUSDT", Name: "SOL/USDT"},
	}
}

// NewConfig читает .env, configs/<CONFIG_FILE> и переменные окружения.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		path := configDir + defaultConfigFile
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// без файла живём на дефолтах + env
			return Load("")
		}
		return Load(path)
	}
	return Load(configDir + configFileName)
}

// Load собирает конфиг: дефолты из тегов, потом файл (если path != ""), потом env.
func Load(path string) (*Config, error) {
	cfg := &Config{Instruments: defaultInstruments()}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "config defaults")
	}

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open config file %s", path)
		}
		defer func() {
			_ = file.Close()
		}()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrapf(ErrInvalidConfig, "decode %s: %v", path, err)
		}
	}

	applyEnv(cfg, newEnv())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет обязательные поля и таблицу инструментов.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return errors.Wrapf(ErrInvalidConfig, "timezone %q: %v", c.Engine.Timezone, err)
	}
	c.loc = loc
	return nil
}

// Location — таймзона для HH:MM в сообщениях.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}
