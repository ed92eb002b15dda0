// Package reconcile merges record lists by identity for imports and restores.
package reconcile

// Identifiable is implemented by every record that can be merged.
type Identifiable interface {
	GetID() string
}

// Stats reports what a merge did.
type Stats struct {
	Replaced int `json:"replaced"`
	Added    int `json:"added"`
}

// Merge overlays incoming onto base and returns a new slice; base is not modified.
//
// A record whose ID already appears in base replaces it in place, so base
// order is preserved. Records with unseen IDs are appended in incoming order,
// and a later incoming record with the same ID replaces the earlier one.
// Records with an empty ID are always appended.
func Merge[T Identifiable](base, incoming []T) []T {
	merged, _ := MergeWithStats(base, incoming)
	return merged
}

// MergeWithStats is Merge plus counts of replaced and appended records.
func MergeWithStats[T Identifiable](base, incoming []T) ([]T, Stats) {
	merged := make([]T, len(base), len(base)+len(incoming))
	copy(merged, base)

	index := make(map[string]int, len(base)+len(incoming))
	for i, rec := range merged {
		if id := rec.GetID(); id != "" {
			if _, seen := index[id]; !seen {
				index[id] = i
			}
		}
	}

	var stats Stats
	for _, rec := range incoming {
		id := rec.GetID()
		if id == "" {
			merged = append(merged, rec)
			stats.Added++
			continue
		}
		if pos, ok := index[id]; ok {
			merged[pos] = rec
			if pos < len(base) {
				stats.Replaced++
			}
			continue
		}
		index[id] = len(merged)
		merged = append(merged, rec)
		stats.Added++
	}

	return merged, stats
}

// Diff reports how many incoming records would replace a base record and
// how many would be appended, without building the merged list.
func Diff[T Identifiable](base, incoming []T) Stats {
	_, stats := MergeWithStats(base, incoming)
	return stats
}
