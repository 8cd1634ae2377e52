package bot

import (
	"fmt"
	"strings"
	"time"

	"fortbot/internal/minefort"
)

// consoleTailLimit keeps console excerpts inside Slack's message limit
// with room for the surrounding markup.
const consoleTailLimit = 3500

// statusMarker identifies the pinned status message when searching channel
// history after a restart.
const statusMarker = "Server Status"

func stateEmoji(s minefort.ServerState) string {
	switch s {
	case minefort.StateHibernating:
		return ":zzz:"
	case minefort.StateProcessing, minefort.StateStarting, minefort.StateStopping:
		return ":arrows_counterclockwise:"
	case minefort.StateRunning:
		return ":white_check_mark:"
	case minefort.StateOffline:
		return ":x:"
	default:
		return ":question:"
	}
}

// buildStatusMessage renders the status overview posted to the control
// channel. Server order follows the provider's.
func buildStatusMessage(servers []minefort.ServerSummary, serverIP string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s*\n\n", statusMarker))

	for _, server := range servers {
		sb.WriteString(fmt.Sprintf("%s *%s*: %s", stateEmoji(server.State), server.ServerName, server.State))
		if server.State == minefort.StateRunning {
			sb.WriteString(fmt.Sprintf(" (%d/%d players)", server.PlayerCount, server.MaxPlayers))
		}
		sb.WriteString("\n")
	}

	if serverIP != "" {
		sb.WriteString(fmt.Sprintf("\n*IP Address*: `%s`\n", serverIP))
	}
	sb.WriteString(fmt.Sprintf("_Last updated: <!date^%d^{date_short_pretty} {time_secs}|%s>_",
		now.Unix(), now.UTC().Format("2006-01-02 15:04:05 UTC")))

	return sb.String()
}

// consoleTail returns the last limit bytes of text, trimmed to a line
// boundary so the excerpt never starts mid-line.
func consoleTail(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	tail := text[len(text)-limit:]
	if idx := strings.IndexByte(tail, '\n'); idx >= 0 && idx < len(tail)-1 {
		tail = tail[idx+1:]
	}
	return tail
}
