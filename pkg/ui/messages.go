package ui

import (
	"time"

	"watcharb/business/arbitrage/domain"
)

// Message types for TUI updates

// OpportunityMsg is sent when an arbitrage opportunity is detected.
type OpportunityMsg struct {
	Opportunity *domain.Opportunity
}

// RunCompletedMsg is sent when an analysis pass finishes.
type RunCompletedMsg struct {
	References       int
	ListingsAnalyzed int
	Opportunities    int
	Duration         time.Duration
}

// ScanStatusMsg is sent while the scanner is refreshing listings.
type ScanStatusMsg struct {
	Scanning    bool
	References  int
	Created     int
	Updated     int
	StaleMarked int64
	Errors      int
}

// LogMsg is sent to display a log line in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}
