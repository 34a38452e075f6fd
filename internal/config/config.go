package config

import "github.com/kelseyhightower/envconfig"

// Config keeps runtime settings for the bot.
type Config struct {
	BotToken      string `envconfig:"BOT_TOKEN" required:"true"`
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
	DatabaseURL   string `envconfig:"DATABASE_URL" default:"dailybot.db"`
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`
	WeatherAPIKey string `envconfig:"WEATHER_API_KEY"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	// RefreshIntervalMin is how often derived analytics rows are
	// re-materialized. Zero disables the job.
	RefreshIntervalMin int `envconfig:"ANALYTICS_REFRESH_MINUTES" default:"30"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
