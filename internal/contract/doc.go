// Package contract reconstructs logical contracts from per-document
// identifiers. Documents are partitioned by their (sorted party set,
// program code) key in first-seen key order, each group gets a stable
// contract ID, and a document-type hierarchy with structural
// inconsistency findings is derived per contract.
//
// Contracts are immutable once grouping completes; later pipeline
// phases only read them.
package contract
