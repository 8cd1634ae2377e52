package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fortbot/internal/config"
	"fortbot/internal/minefort"
	"fortbot/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fortbot",
	Short: "Minefort server manager and chat bot",
	Long: `Fortbot manages a Minefort-hosted Minecraft server: start, stop,
hibernate and wake it, read and drive its console, and run a Slack bot
that exposes all of that to a team channel.`,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'fortbot --help' for usage.")
		exit(1)
	}
}

func init() {
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		// Default behavior: run the interactive menu.
		RunInteractive(cmd)
	}
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Duplicate logs to this file")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Load(cfgFile)
	telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log_file"))
}

// newClient builds the Minefort client from the loaded configuration.
func newClient() (*minefort.Client, error) {
	email := viper.GetString("minefort.email")
	password := viper.GetString("minefort.password")
	if email == "" || password == "" {
		return nil, fmt.Errorf("minefort credentials are not configured (set MINEFORT_EMAIL and MINEFORT_PASSWORD)")
	}
	if base := viper.GetString("minefort.base_url"); base != "" {
		return minefort.NewClientWithBaseURL(base, email, password), nil
	}
	return minefort.NewClient(email, password), nil
}

// configDuration reads a duration key. Duration strings like "500ms" or
// "5m" are taken as-is; bare integers are seconds, the way env-only
// deployments wrote them. Anything else falls back to def.
func configDuration(key string, def time.Duration) time.Duration {
	if !viper.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(viper.GetString(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d > 0 {
			return d
		}
		return def
	}
	if s, err := strconv.Atoi(raw); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	return def
}
