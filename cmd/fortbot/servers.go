package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fortbot/internal/minefort"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the account's servers and their states",
	RunE:  runServers,
}

func init() {
	rootCmd.AddCommand(serversCmd)
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	movingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func styledState(s minefort.ServerState) string {
	text := s.String()
	switch s {
	case minefort.StateRunning:
		return runningStyle.Render(text)
	case minefort.StateProcessing, minefort.StateStarting, minefort.StateStopping:
		return movingStyle.Render(text)
	default:
		return stoppedStyle.Render(text)
	}
}

func runServers(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	servers, err := client.ListServers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list servers: %w", err)
	}
	if len(servers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No servers found on this account.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("NAME")+"\t"+headerStyle.Render("ID")+"\t"+
		headerStyle.Render("STATE")+"\t"+headerStyle.Render("PLAYERS"))
	for _, s := range servers {
		players := "-"
		if s.State == minefort.StateRunning {
			players = fmt.Sprintf("%d/%d", s.PlayerCount, s.MaxPlayers)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ServerName, s.ServerID, styledState(s.State), players)
	}
	return w.Flush()
}
