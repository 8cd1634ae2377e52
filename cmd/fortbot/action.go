package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fortbot/internal/minefort"
)

func init() {
	rootCmd.AddCommand(
		newActionCmd("start", "Start the server", minefort.ActionStart),
		newActionCmd("stop", "Stop the server", minefort.ActionKill),
		newActionCmd("sleep", "Put the server into hibernation", minefort.ActionSleep),
		newActionCmd("wake", "Wake the server from hibernation", minefort.ActionWakeup),
	)
}

// newActionCmd builds one lifecycle command. All four act on a server
// picked by name, or the account's first server when no name is given.
func newActionCmd(use, short string, action minefort.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [server-name]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			server, err := pickServer(ctx, client, name)
			if err != nil {
				return err
			}

			msg, err := client.PerformAction(ctx, server.ServerID, action)
			if err != nil {
				return fmt.Errorf("failed to %s %s: %w", action.DisplayName(), server.ServerName, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

// pickServer resolves a server by name, or returns the first server when
// name is empty.
func pickServer(ctx context.Context, client *minefort.Client, name string) (minefort.ServerSummary, error) {
	servers, err := client.ListServers(ctx)
	if err != nil {
		return minefort.ServerSummary{}, fmt.Errorf("failed to list servers: %w", err)
	}
	if len(servers) == 0 {
		return minefort.ServerSummary{}, fmt.Errorf("no servers found on this account")
	}
	if name == "" {
		return servers[0], nil
	}
	for _, s := range servers {
		if s.ServerName == name || s.ServerID == name {
			return s, nil
		}
	}
	return minefort.ServerSummary{}, fmt.Errorf("no server named %q", name)
}
