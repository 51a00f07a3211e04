// Package observability records taskdash activity as JSON Lines (JSONL)
// events and derives activity metrics on demand from that log.
package observability
