// Package ingest is the single write path for public campaign telemetry.
//
// Raw payloads from campaign pages are decoded into one of four event kinds
// (page view, door click, door enter, session end) and validated before
// dispatch. Page views are fingerprinted, stored and rolled up in the same
// call; door interactions are stored raw; session ends backfill the duration
// of the matching view. Delivery is best-effort: every store call is bounded
// by a timeout and a circuit breaker so that callers fail fast.
package ingest
