// Package linkage classifies invoices against a discovered contract
// set. Matching runs a strictly ordered cascade of tiers — PO number,
// vendor, program code — where a tier is only evaluated when every
// earlier tier produced zero candidates. The result is MATCHED,
// AMBIGUOUS, or UNMATCHED with an explicit confidence and the full set
// of alternative candidates preserved.
//
// The detector never auto-resolves ambiguity: when several contracts
// tie at the same tier, the first-produced candidate is reported as the
// detection and the rest as alternatives. That tie-break is
// deterministic but arbitrary — callers must not read it as a quality
// signal.
package linkage
