// Package infra contains presentation adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"watcharb/business/arbitrage/app"
	"watcharb/business/arbitrage/domain"
)

var (
	consoleTypeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	consoleProfit    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	consoleMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// ConsoleReporter prints opportunities as styled lines. Used when the TUI is
// disabled, e.g. one-shot runs and cron-style deployments.
type ConsoleReporter struct {
	w io.Writer
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) Start(context.Context) error { return nil }

// Report prints one opportunity.
func (r *ConsoleReporter) Report(opp *domain.Opportunity) {
	sell := opp.SellPlatformString()
	if sell == "" {
		sell = "market"
	}

	fmt.Fprintf(r.w, "%s  buy %s @ $%s -> sell %s @ $%s  profit %s  roi %s%%  confidence %d\n",
		consoleTypeStyle.Render(string(opp.Type)),
		opp.BuyPlatform,
		opp.BuyPrice.StringFixed(2),
		sell,
		opp.EstimatedSellPrice.StringFixed(2),
		consoleProfit.Render("$"+opp.EstimatedProfit.StringFixed(2)),
		opp.ROIPercent.StringFixed(1),
		opp.ConfidenceScore,
	)
}

// RunCompleted prints the run summary.
func (r *ConsoleReporter) RunCompleted(summary app.RunSummary) {
	fmt.Fprintln(r.w, consoleMuted.Render(fmt.Sprintf(
		"analysis complete: %d references, %d listings, %d opportunities in %s",
		summary.References, summary.ListingsAnalyzed, summary.Opportunities, summary.Duration)))
}

func (r *ConsoleReporter) Stop() error { return nil }
