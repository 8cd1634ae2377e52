package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error if any
// are invalid. Call after Load.
func ValidateConfig() error {
	var errors []string

	// Durations must be positive.
	for _, key := range []string{"cache_ttl", "status_interval", "console_interval"} {
		if !viper.IsSet(key) {
			continue
		}
		var d time.Duration
		if v := viper.GetDuration(key); v != 0 {
			d = v
		} else if s := viper.GetInt(key); s != 0 {
			d = time.Duration(s) * time.Second
		}
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %v", key, d))
		}
	}

	// Validate health_port (if set, must be in valid range 1-65535)
	if viper.IsSet("health_port") {
		port := viper.GetInt("health_port")
		if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("health_port must be between 1 and 65535, got: %d", port))
		}
	}

	// Minefort credentials come as a pair.
	email := viper.GetString("minefort.email")
	password := viper.GetString("minefort.password")
	if (email == "") != (password == "") {
		errors = append(errors, "minefort.email and minefort.password must both be set")
	}

	// Socket Mode needs both tokens, and the app token has a fixed prefix.
	appToken := viper.GetString("slack.app_token")
	botToken := viper.GetString("slack.bot_token")
	if appToken != "" && botToken == "" {
		errors = append(errors, "slack.app_token is set but slack.bot_token is missing")
	}
	if appToken != "" && len(appToken) > 5 && appToken[:5] != "xapp-" {
		errors = append(errors, "slack.app_token must start with xapp-")
	}

	if len(errors) > 0 {
		errorMsg := errors[0]
		for i := 1; i < len(errors); i++ {
			errorMsg += "\n  " + errors[i]
		}
		return fmt.Errorf("configuration validation failed:\n  %s", errorMsg)
	}

	return nil
}

// ValidateAndExit validates the configuration and exits with a non-zero code
// if validation fails.
func ValidateAndExit() {
	if err := ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
