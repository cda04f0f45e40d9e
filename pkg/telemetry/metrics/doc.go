// Package metrics exposes parley's Prometheus metrics.
//
// A Collector owns a registry and records turns, sentence results,
// reformulations, index size, learned rules, reloads, and session churn.
// Handler serves the registry in the Prometheus exposition format.
package metrics
