package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/linkd/internal/identify"
)

// keySep joins key components; it cannot appear in party tokens or
// program codes.
const keySep = "\x1f"

// Group partitions documents into contracts by (sorted party tuple,
// program code). Distinct keys are numbered in the order they are first
// encountered while scanning documents, which makes contract IDs stable
// across runs given the same input order. Every document lands in
// exactly one contract.
func Group(docs []identify.DocumentIdentifier) []*Contract {
	var order []string
	groups := make(map[string][]identify.DocumentIdentifier)

	for _, doc := range docs {
		key := groupKey(doc)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], doc)
	}

	contracts := make([]*Contract, 0, len(order))
	for i, key := range order {
		members := groups[key]
		parties, program := splitKey(key)

		c := &Contract{
			ContractID:  contractID(parties, program, i+1),
			Parties:     parties,
			ProgramCode: program,
			DatesFound:  unionDates(members),
			Documents:   members,
		}
		c.Hierarchy = BuildHierarchy(members)
		c.Inconsistencies = VerifyHierarchy(c.Hierarchy)

		contracts = append(contracts, c)
	}

	return contracts
}

// groupKey builds the partition key for one document.
func groupKey(doc identify.DocumentIdentifier) string {
	parties := append([]string(nil), doc.Parties...)
	sort.Strings(parties)

	program := doc.ProgramCode
	if program == "" {
		program = UnknownProgram
	}

	return strings.Join(parties, keySep) + keySep + program
}

// splitKey recovers the sorted party tuple and program code from a key.
func splitKey(key string) (parties []string, program string) {
	parts := strings.Split(key, keySep)
	program = parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		if p != "" {
			parties = append(parties, p)
		}
	}
	return parties, program
}

// contractID derives the stable contract identifier from the group key
// and its first-seen ordinal.
func contractID(parties []string, program string, ordinal int) string {
	id := fmt.Sprintf("%s_%s_%d", strings.Join(parties, "_"), program, ordinal)
	return strings.ReplaceAll(id, " ", "_")
}

// unionDates merges the members' date tokens, sorted and deduplicated.
func unionDates(docs []identify.DocumentIdentifier) []string {
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, d := range doc.DatesFound {
			seen[d] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
