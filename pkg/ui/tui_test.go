package ui

import (
	"errors"
	"testing"
)

func applyMsg(t *testing.T, m Model, msg any) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("update returned %T, want Model", next)
	}
	return model
}

func TestModel_ScanStatus(t *testing.T) {
	m := applyMsg(t, New(), ScanStatusMsg{Scanning: true})
	if !m.scanning {
		t.Fatal("scanning flag not set")
	}
	if m.scanStatus != "scanning marketplaces..." {
		t.Fatalf("scan status = %q", m.scanStatus)
	}

	m = applyMsg(t, m, ScanStatusMsg{References: 5, Created: 3, Updated: 2})
	if m.scanning {
		t.Fatal("scanning flag should clear when the scan completes")
	}
}

func TestModel_ErrorWhileScanningStopsSpinner(t *testing.T) {
	m := applyMsg(t, New(), ScanStatusMsg{Scanning: true})
	m = applyMsg(t, m, ErrorMsg{Error: errors.New("ebay search: 503")})

	if m.scanning {
		t.Fatal("a failed cycle must stop the scanning spinner")
	}
	if m.scanStatus != "scan failed" {
		t.Fatalf("scan status = %q, want %q", m.scanStatus, "scan failed")
	}
	if m.errorMsg != "ebay search: 503" {
		t.Fatalf("error message = %q", m.errorMsg)
	}
}

func TestModel_ErrorOutsideScanKeepsStatus(t *testing.T) {
	m := applyMsg(t, New(), ScanStatusMsg{References: 2, Created: 1})
	status := m.scanStatus

	m = applyMsg(t, m, ErrorMsg{Error: errors.New("analysis failed")})
	if m.scanStatus != status {
		t.Fatalf("scan status changed to %q, want %q", m.scanStatus, status)
	}
	if m.errorMsg != "analysis failed" {
		t.Fatalf("error message = %q", m.errorMsg)
	}
}
