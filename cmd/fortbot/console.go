package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var consoleServer string

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Print the server's recent console output",
	RunE:  runConsole,
}

var cmdCmd = &cobra.Command{
	Use:   "cmd <command>...",
	Short: "Send a command to the server console",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCmd,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(cmdCmd)
	consoleCmd.Flags().StringVar(&consoleServer, "server", "", "Server name or ID (default: first server)")
	cmdCmd.Flags().StringVar(&consoleServer, "server", "", "Server name or ID (default: first server)")
}

func runConsole(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	server, err := pickServer(ctx, client, consoleServer)
	if err != nil {
		return err
	}

	snap, err := client.GetConsoleLogs(ctx, server.ServerID)
	if err != nil {
		return fmt.Errorf("failed to fetch console: %w", err)
	}
	if strings.TrimSpace(snap.Text) == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Console is empty.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), snap.Text)
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	server, err := pickServer(ctx, client, consoleServer)
	if err != nil {
		return err
	}

	msg, err := client.SendConsoleCommand(ctx, server.ServerID, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
