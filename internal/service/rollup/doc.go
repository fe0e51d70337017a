// Package rollup maintains the per-(campaign, UTC day) analytics summary.
//
// Every page view becomes a single atomic upsert-with-increment at the
// storage boundary, so N concurrent views raise the counters by exactly N
// without application-level locking or read-modify-write cycles. "Today" is
// taken from an injected Clock so day boundaries are deterministic in tests.
package rollup
