package polling

import (
	"context"
	"log/slog"
	"time"
)

// Task is one background refresh run. Errors are reported, not raised; a
// failing run never stops the poller.
type Task func(ctx context.Context) error

// Poller runs a named task on a fixed interval until its context is
// cancelled. A failed run is logged and reported to the failure hook, and
// the loop carries on; whatever state the task maintains stays as the last
// successful run left it.
type Poller struct {
	name      string
	interval  time.Duration
	task      Task
	onFailure func(task string)
}

// NewPoller creates a poller for the given task. onFailure may be nil.
func NewPoller(name string, interval time.Duration, task Task, onFailure func(task string)) *Poller {
	return &Poller{name: name, interval: interval, task: task, onFailure: onFailure}
}

// Start runs the task once immediately, then on every tick, until ctx is
// cancelled. Blocks; run it in a goroutine.
func (p *Poller) Start(ctx context.Context) {
	slog.Info("starting poller", "task", p.name, "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping poller", "task", p.name)
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	if err := p.task(ctx); err != nil {
		slog.Warn("background refresh failed", "task", p.name, "error", err)
		if p.onFailure != nil {
			p.onFailure(p.name)
		}
	}
}
