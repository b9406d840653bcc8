// Package engine wires all syncline subsystems together: the typed
// collections, the reconciler, the pending-write queue, the automation
// dispatcher, and the extension registry.
//
// This package exists to break the import cycle: the root syncline
// package defines Entity and Config (imported by record, coordinator,
// and so on) and cannot import those packages back. The engine package
// sits above all subsystem packages and below the application layer.
package engine
