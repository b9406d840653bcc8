// Package middleware provides composable middleware for record
// mutations. Middleware wraps the local write and remote push
// synchronously and can modify execution (recover from panics, enforce
// permissions, log, add tracing, etc.).
package middleware
