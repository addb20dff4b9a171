package infra

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"watcharb/business/arbitrage/app"
	"watcharb/business/arbitrage/domain"
	"watcharb/pkg/ui"
)

// TUIReporter forwards analysis results to the Bubble Tea dashboard.
type TUIReporter struct {
	program *tea.Program

	mu      sync.Mutex
	runErr  error
	done    chan struct{}
	started bool
}

// NewTUIReporter creates a reporter backed by a fresh TUI program.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{
		program: tea.NewProgram(ui.New(), tea.WithAltScreen()),
		done:    make(chan struct{}),
	}
}

// Start launches the TUI event loop in the background.
func (r *TUIReporter) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	r.started = true

	go func() {
		_, err := r.program.Run()
		r.mu.Lock()
		r.runErr = err
		r.mu.Unlock()
		close(r.done)
	}()

	return nil
}

// Report sends one opportunity to the dashboard.
func (r *TUIReporter) Report(opp *domain.Opportunity) {
	r.program.Send(ui.OpportunityMsg{Opportunity: opp})
}

// RunCompleted sends the run summary to the dashboard.
func (r *TUIReporter) RunCompleted(summary app.RunSummary) {
	r.program.Send(ui.RunCompletedMsg{
		References:       summary.References,
		ListingsAnalyzed: summary.ListingsAnalyzed,
		Opportunities:    summary.Opportunities,
		Duration:         summary.Duration,
	})
}

// Send forwards an arbitrary UI message, e.g. scan progress from the caller.
func (r *TUIReporter) Send(msg tea.Msg) {
	r.program.Send(msg)
}

// Wait blocks until the user quits the TUI.
func (r *TUIReporter) Wait() error {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runErr
}

// Stop shuts the TUI down.
func (r *TUIReporter) Stop() error {
	r.program.Quit()
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runErr
}
