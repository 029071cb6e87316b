// Package metrics holds the process-wide Prometheus collectors shared across
// layers: HTTP traffic, text extraction and circuit breakers. Engine and pipeline metrics live
// next to the code that records them.
//
// All metrics are registered with the default registry and exposed via /metrics.
package metrics
