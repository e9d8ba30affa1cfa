package assist

import "sort"

// mergeKey identifies a suggestion for de-duplication: the same issue
// reported by more than one checker collapses to one entry.
type mergeKey struct {
	start       int64
	end         int64
	text        string
	replacement string
}

// Merge combines suggestions from all sources into one list sorted by start
// ascending, ties broken by kind priority (spelling > grammar > style) for a
// deterministic presentation order. Duplicates identical in
// (start, end, text, replacement) are collapsed, keeping the higher-priority
// kind.
func Merge(batches ...[]Suggestion) []Suggestion {
	var all []Suggestion
	for _, b := range batches {
		all = append(all, b...)
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].Kind.Priority() < all[j].Kind.Priority()
	})

	out := all[:0]
	seen := make(map[mergeKey]bool, len(all))
	for _, s := range all {
		key := mergeKey{start: s.Start, end: s.End, text: s.Text, replacement: s.Replacement}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
