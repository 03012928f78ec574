package cli

import (
	"context"
	"fmt"

	"github.com/avetrovs/vitrine/internal/health"
)

func reportLine(r health.Report) string {
	state := "DOWN"
	if r.Connected {
		state = "OK"
	}
	return fmt.Sprintf("  %-6s %-4s %s", r.Backend, state, r.Message)
}

// ShowStatus runs both connectivity probes and prints the combined verdict,
// then aligns the client mode with what the remote probe found.
func (a *App) ShowStatus(ctx context.Context) error {
	status := a.checker.Check(ctx)

	printlnFn("Connectivity:")
	printlnFn(reportLine(status.Local))
	printlnFn(reportLine(status.Remote))
	printlnFn(fmt.Sprintf("Active backend: %s", status.ActiveBackend))

	if status.Remote.Connected {
		a.setMode(ModeOnline)
	} else if a.currentMode() == ModeOnline {
		a.setMode(ModeOffline)
	}
	return nil
}
