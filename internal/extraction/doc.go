// Package extraction implements the field extraction engine: ordered,
// first-match regex fallback chains that turn raw document text into
// structured invoice fields.
//
// The package supports:
//   - Per-field fallback chains (most specific pattern first, first match wins)
//   - Normalizers attached to patterns (comma stripping, line truncation,
//     length sanity bounds) with fail-soft semantics
//   - Fixed-priority currency detection
//   - Token primitives shared with document identification (program codes,
//     date shapes)
//
// The engine is pure — no I/O, no shared mutable state — so it can be
// exercised directly on synthetic strings and is safe to call from
// concurrent workers.
//
// A missing field is never an error. When no pattern in a chain matches,
// the field stays empty and downstream consumers must treat it as
// "no signal", not as a detected absence.
package extraction
