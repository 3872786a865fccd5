// Package analyzer diffs signature-hash snapshots for a file and sweeps the
// graph for ghost symbols.
package analyzer

import (
	"sort"

	"blastradius/internal/graph"
	"blastradius/internal/symbols"
)

// Report partitions a file's symbols after a re-parse against the pre-parse
// snapshot. Removed holds snapshot IDs absent post-parse.
type Report struct {
	Added   []string `json:"added"`
	Ripple  []string `json:"ripple"` // signature hash changed
	Safe    []string `json:"safe"`   // signature hash unchanged
	Removed []string `json:"removed"`
}

// Empty reports whether the change report carries no symbols at all
func (r *Report) Empty() bool {
	return len(r.Added) == 0 && len(r.Ripple) == 0 && len(r.Safe) == 0 && len(r.Removed) == 0
}

// DiffSignatures compares the pre-parse snapshot (id → signature hash) with
// the file's current symbols in the index.
func DiffSignatures(snapshot map[string]string, index *symbols.Index, path string) *Report {
	report := &Report{}
	current := make(map[string]struct{})

	for _, s := range index.FileSymbols(path) {
		current[s.ID] = struct{}{}
		prev, existed := snapshot[s.ID]
		switch {
		case !existed:
			report.Added = append(report.Added, s.ID)
		case prev != s.SignatureHash:
			report.Ripple = append(report.Ripple, s.ID)
		default:
			report.Safe = append(report.Safe, s.ID)
		}
	}

	for id := range snapshot {
		if _, ok := current[id]; !ok {
			report.Removed = append(report.Removed, id)
		}
	}

	sort.Strings(report.Added)
	sort.Strings(report.Ripple)
	sort.Strings(report.Safe)
	sort.Strings(report.Removed)
	return report
}

// RemovedOnly builds the report for a failed re-parse: every snapshot symbol
// stays removed.
func RemovedOnly(snapshot map[string]string) *Report {
	report := &Report{}
	for id := range snapshot {
		report.Removed = append(report.Removed, id)
	}
	sort.Strings(report.Removed)
	return report
}

// Ghosts sweeps the whole graph for IDs still referenced somewhere but
// absent from the index. A ghost is treated as destructively changed.
func Ghosts(store *graph.Store, index *symbols.Index) []string {
	var ghosts []string
	for id := range store.Keys() {
		if !index.Has(id) {
			ghosts = append(ghosts, id)
		}
	}
	sort.Strings(ghosts)
	return ghosts
}
