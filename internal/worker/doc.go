// Package worker holds the background jobs run by cmd/worker: the daily
// rollup reconciler and the raw-event retention cleaner. Each job takes a
// distributed lock per cycle so several worker replicas can run safely.
package worker
