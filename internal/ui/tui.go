// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the store browser
package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hxtool/hxplay/pkg/eventlog"
)

// Run shows the browser until the user quits
func Run(ctx context.Context, title string, lib Library, ctrl Controller, log *eventlog.Log) error {
	var logCh <-chan eventlog.Entry
	if log != nil {
		ch, cancel := log.Subscribe(64)
		defer cancel()
		logCh = ch
	}

	p := tea.NewProgram(NewModel(ctx, title, lib, ctrl, log, logCh), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}
