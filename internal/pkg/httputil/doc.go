// Package httputil provides shared HTTP response/request helpers for handlers.
//
// Handlers write every response through these helpers so that JSON encoding,
// error envelopes and server-side logging stay consistent across endpoints.
package httputil
