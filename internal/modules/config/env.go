package config

import (
	"time"

	"github.com/spf13/viper"
)

// ключ конфига -> переменная окружения
var envBindings = map[string]string{
	"telegram.token":            "TELEGRAM_TOKEN",
	"telegram.channel_id":       "TELEGRAM_CHANNEL_ID",
	"market_data.base_url":      "MARKET_DATA_URL",
	"market_data.api_key":       "RAPIDAPI_KEY",
	"market_data.api_host":      "RAPIDAPI_HOST",
	"market_data.period":        "MARKET_DATA_PERIOD",
	"market_data.interval":      "MARKET_DATA_INTERVAL",
	"market_data.timeout":       "MARKET_DATA_TIMEOUT",
	"engine.tick_interval":      "TICK_INTERVAL",
	"engine.cooldown":           "COOLDOWN_PER_SYMBOL",
	"engine.evaluation_horizon": "EVALUATION_HORIZON",
	"engine.martingale_retries": "MARTINGALE_RETRIES",
	"engine.batch_size":         "SUMMARY_BATCH_SIZE",
	"engine.summary_lookback":   "SUMMARY_LOOKBACK",
	"engine.horizon_label":      "HORIZON_LABEL",
	"engine.operate_link":       "OPERATE_LINK",
	"engine.timezone":           "TIMEZONE",
	"service.host":              "SERVICE_HOST",
	"service.admin_port":        "ADMIN_PORT",
	"tracing.enabled":           "TRACING_ENABLED",
	"tracing.host":              "JAEGER_AGENT_HOST",
	"tracing.port":              "JAEGER_AGENT_PORT",
	"log.level":                 "LOG_LEVEL",
}

func newEnv() *viper.Viper {
	v := viper.New()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// applyEnv перекрывает значения из файла тем, что задано в окружении.
// Кривые значения превращаются в нули и валятся на Validate.
func applyEnv(cfg *Config, v *viper.Viper) {
	setString(v, "telegram.token", &cfg.Telegram.Token)
	if v.IsSet("telegram.channel_id") {
		cfg.Telegram.ChannelID = v.GetInt64("telegram.channel_id")
	}

	setString(v, "market_data.base_url", &cfg.MarketData.BaseURL)
	setString(v, "market_data.api_key", &cfg.MarketData.APIKey)
	setString(v, "market_data.api_host", &cfg.MarketData.APIHost)
	setString(v, "market_data.period", &cfg.MarketData.Period)
	setString(v, "market_data.interval", &cfg.MarketData.Interval)
	setDuration(v, "market_data.timeout", &cfg.MarketData.Timeout)

	setDuration(v, "engine.tick_interval", &cfg.Engine.TickInterval)
	setDuration(v, "engine.cooldown", &cfg.Engine.Cooldown)
	setDuration(v, "engine.evaluation_horizon", &cfg.Engine.EvaluationHorizon)
	setInt(v, "engine.martingale_retries", &cfg.Engine.MartingaleRetries)
	setInt(v, "engine.batch_size", &cfg.Engine.BatchSize)
	setDuration(v, "engine.summary_lookback", &cfg.Engine.SummaryLookback)
	setString(v, "engine.horizon_label", &cfg.Engine.HorizonLabel)
	setString(v, "engine.operate_link", &cfg.Engine.OperateLink)
	setString(v, "engine.timezone", &cfg.Engine.Timezone)

	setString(v, "service.host", &cfg.Service.Host)
	setInt(v, "service.admin_port", &cfg.Service.AdminPort)

	if v.IsSet("tracing.enabled") {
		cfg.Tracing.Enabled = v.GetBool("tracing.enabled")
	}
	setString(v, "tracing.host", &cfg.Tracing.Host)
	setInt(v, "tracing.port", &cfg.Tracing.Port)

	setString(v, "log.level", &cfg.Log.Level)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setDuration(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) {
		*dst = v.GetDuration(key)
	}
}
