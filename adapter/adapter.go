package adapter

import (
	"go.bug.st/serial/enumerator"

	"github.com/sergev/floppycore/reconcile"
)

// FloppyAdapter defines the interface for floppy disk adapters
type FloppyAdapter interface {
	// PrintStatus prints adapter status information to stdout
	PrintStatus()
	// Read reads the entire floppy disk and writes it to the specified filename
	Read(filename string) error
	// Controller returns this adapter's track-level reconcile.Controller,
	// letting a DualTrackReconciler drive per-track scan/read passes
	// without importing any concrete transport package.
	Controller() reconcile.Controller
}

// NewClientFunc is a function type that creates a new adapter client
type NewClientFunc func(portDetails *enumerator.PortDetails) (FloppyAdapter, error)

