package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment variables.
func Load(cfgFile string) {
	// explicit .env loading
	if err := godotenv.Load(); err != nil {
		// ignore if .env is missing
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("FORTBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// Older deployments configured everything through bare env vars; keep
	// honoring those names when the prefixed ones are absent.
	bindLegacyEnv("minefort.email", "MINEFORT_EMAIL")
	bindLegacyEnv("minefort.password", "MINEFORT_PASSWORD")
	bindLegacyEnv("slack.bot_token", "SLACK_BOT_TOKEN")
	bindLegacyEnv("slack.app_token", "SLACK_APP_TOKEN")
	bindLegacyEnv("slack.control_channel", "CONTROL_CHANNEL_ID")
	bindLegacyEnv("slack.console_channel", "CONSOLE_CHANNEL_ID")
	bindLegacyEnv("server_ip", "MINECRAFT_SERVER_IP")

	// Defaults
	viper.SetDefault("server_ip", "")
	viper.SetDefault("cache_ttl", "60s")
	viper.SetDefault("status_interval", "5m")
	viper.SetDefault("console_interval", "30s")
	viper.SetDefault("health_port", 8080)
	viper.SetDefault("verbose", false)
	viper.SetDefault("slack.operators", []string{})

	// If a config file is found, read it in. A missing file is fine; env
	// vars alone are a complete configuration.
	_ = viper.ReadInConfig()
}

func bindLegacyEnv(key, env string) {
	if v := os.Getenv(env); v != "" {
		viper.SetDefault(key, v)
	}
}
