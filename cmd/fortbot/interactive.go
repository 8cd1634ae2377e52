package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"fortbot/internal/minefort"
)

// askOneFunc is swapped out in tests.
var askOneFunc = survey.AskOne

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Manage servers through an interactive menu",
	Run: func(cmd *cobra.Command, args []string) {
		RunInteractive(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

const (
	menuRefresh = "Refresh server list"
	menuConsole = "Show console"
	menuCommand = "Send console command"
	menuQuit    = "Quit"
)

// RunInteractive drives the menu loop: pick a server, pick an action,
// repeat until quit.
func RunInteractive(cmd *cobra.Command) {
	client, err := newClient()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		exit(1)
		return
	}

	out := cmd.OutOrStdout()
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		servers, err := client.ListServers(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to list servers: %v\n", err)
			exit(1)
			return
		}
		if len(servers) == 0 {
			fmt.Fprintln(out, "No servers found on this account.")
			return
		}

		server, quit := pickServerInteractive(servers)
		if quit {
			return
		}

		if done := runActionsMenu(cmd, client, server); done {
			return
		}
	}
}

func pickServerInteractive(servers []minefort.ServerSummary) (minefort.ServerSummary, bool) {
	options := make([]string, 0, len(servers)+1)
	byLabel := make(map[string]minefort.ServerSummary, len(servers))
	for _, s := range servers {
		label := fmt.Sprintf("%s (%s)", s.ServerName, s.State)
		options = append(options, label)
		byLabel[label] = s
	}
	options = append(options, menuQuit)

	var choice string
	if err := askOneFunc(&survey.Select{
		Message: "Select a server:",
		Options: options,
	}, &choice); err != nil {
		return minefort.ServerSummary{}, true
	}
	if choice == menuQuit {
		return minefort.ServerSummary{}, true
	}
	return byLabel[choice], false
}

// runActionsMenu loops on one server until the user refreshes (returns
// false) or quits (returns true).
func runActionsMenu(cmd *cobra.Command, client *minefort.Client, server minefort.ServerSummary) bool {
	out := cmd.OutOrStdout()
	actions := map[string]minefort.Action{
		"Start":     minefort.ActionStart,
		"Stop":      minefort.ActionKill,
		"Hibernate": minefort.ActionSleep,
		"Wake up":   minefort.ActionWakeup,
	}
	options := []string{"Start", "Stop", "Hibernate", "Wake up", menuConsole, menuCommand, menuRefresh, menuQuit}

	for {
		var choice string
		if err := askOneFunc(&survey.Select{
			Message: fmt.Sprintf("%s: choose an action:", server.ServerName),
			Options: options,
		}, &choice); err != nil {
			return true
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		switch choice {
		case menuQuit:
			cancel()
			return true
		case menuRefresh:
			cancel()
			return false
		case menuConsole:
			snap, err := client.GetConsoleLogs(ctx, server.ServerID)
			cancel()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to fetch console: %v\n", err)
				continue
			}
			if strings.TrimSpace(snap.Text) == "" {
				fmt.Fprintln(out, "Console is empty.")
				continue
			}
			fmt.Fprintln(out, snap.Text)
		case menuCommand:
			var command string
			if err := askOneFunc(&survey.Input{Message: "Console command:"}, &command); err != nil {
				cancel()
				return true
			}
			if strings.TrimSpace(command) == "" {
				cancel()
				continue
			}
			msg, err := client.SendConsoleCommand(ctx, server.ServerID, command)
			cancel()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to send command: %v\n", err)
				continue
			}
			fmt.Fprintln(out, msg)
		default:
			msg, err := client.PerformAction(ctx, server.ServerID, actions[choice])
			cancel()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed: %v\n", err)
				continue
			}
			fmt.Fprintln(out, msg)
		}
	}
}
