// Package observability provides an OpenTelemetry-based metrics
// extension for Syncline. The MetricsExtension implements lifecycle
// hooks to record system-wide counters for record mutations, sync
// passes, automation deliveries, and pending-queue activity.
//
// For per-mutation tracing and latency metrics, see the middleware
// package: middleware.Tracing() and middleware.Metrics().
package observability
