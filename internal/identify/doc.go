// Package identify derives lightweight identifiers from contract-side
// documents: document type, party set, program code, and date tokens.
// The identifiers are best-effort grouping signal — any of them may be
// empty, and absence is never an error.
package identify
