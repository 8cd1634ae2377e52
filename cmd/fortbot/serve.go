package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fortbot/internal/bot"
	"fortbot/internal/config"
	"fortbot/internal/metrics"
	"fortbot/internal/minefort"
	"fortbot/internal/polling"
	"fortbot/internal/web"
)

var errMissingSlackToken = errors.New("slack.bot_token is not configured (set SLACK_BOT_TOKEN)")

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack bot, background refreshers, and health endpoint",
	Long: `Connects to Slack over Socket Mode and serves chat commands, keeps a
status message in the control channel up to date, relays console output,
and exposes /health and /metrics for uptime monitors and Prometheus.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "Health endpoint port (overrides config)")
	_ = viper.BindPFlag("health_port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.ValidateConfig(); err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	m := metrics.NewMetrics()
	client.SetObserver(m)

	cache := minefort.NewServerCache(client, configDuration("cache_ttl", minefort.DefaultCacheTTL))
	cache.SetObserver(m)

	botCfg := bot.Config{
		ControlChannelID: viper.GetString("slack.control_channel"),
		ConsoleChannelID: viper.GetString("slack.console_channel"),
		Operators:        viper.GetStringSlice("slack.operators"),
		ServerIP:         viper.GetString("server_ip"),
	}

	api, socket, err := newSlackClients()
	if err != nil {
		return err
	}

	b := bot.New(api, socket, client, cache, botCfg, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	statusPoller := polling.NewPoller("status", configDuration("status_interval", 5*time.Minute),
		b.RefreshStatus, m.RecordRefreshFailure)
	consolePoller := polling.NewPoller("console", configDuration("console_interval", 30*time.Second),
		b.RefreshConsole, m.RecordRefreshFailure)

	wg.Add(1)
	go func() {
		defer wg.Done()
		statusPoller.Start(ctx)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		consolePoller.Start(ctx)
	}()

	healthSrv := web.NewServer(viper.GetInt("health_port"), b.Ready, m.Handler())
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := healthSrv.Start(ctx); err != nil {
			slog.Error("health server stopped", "error", err)
		}
	}()

	slog.Info("fortbot starting", "health_port", viper.GetInt("health_port"))
	runErr := b.Run(ctx)

	stop()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b.Shutdown(shutdownCtx)

	slog.Info("fortbot stopped")
	return runErr
}

// newSlackClients builds the Web API client and, when an app token is
// configured, the Socket Mode client on top of it.
func newSlackClients() (*slack.Client, *socketmode.Client, error) {
	botToken := viper.GetString("slack.bot_token")
	if botToken == "" {
		return nil, nil, errMissingSlackToken
	}

	appToken := viper.GetString("slack.app_token")
	opts := []slack.Option{}
	if appToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(appToken))
	}
	if viper.GetBool("verbose") {
		opts = append(opts, slack.OptionDebug(true))
	}
	api := slack.New(botToken, opts...)

	if appToken == "" {
		// Web API only: refreshers still run, chat commands are off.
		return api, nil, nil
	}
	return api, socketmode.New(api), nil
}
