package tui

import (
	"context"
	"fmt"
	"time"

	"ctrmdash/internal/coordinator"
	"ctrmdash/pkg/dashclient"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Timeout         time.Duration
	RefreshInterval time.Duration
	ProgramOptions  []tea.ProgramOption
}

// Run starts the terminal UI. ws may be nil, in which case the view is polled.
func Run(ctx context.Context, client Client, ws *dashclient.WSClient, logger *zap.Logger, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts.ProgramOptions...)
	p := tea.NewProgram(newModel(client, opts.Timeout, opts.RefreshInterval, time.Now), progOpts...)

	if ws != nil {
		ws.SetMessageHandler(func(ev coordinator.Event) { p.Send(EventMsg{Event: ev}) })
		ws.SetStateHandler(func(connected bool) { p.Send(ConnMsg{Connected: connected}) })
		go func() {
			if err := ws.Connect(ctx); err != nil {
				logger.Warn("event stream not connected, will retry", zap.Error(err))
			}
			ws.Listen(ctx)
		}()
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
