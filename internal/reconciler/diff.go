package reconciler

import "github.com/modera/catalog-service/internal/database"

// Change direction constants live in the database package; the diff
// computations here are pure so they can be tested without a store.

// ColorChange is one detected color addition or removal
type ColorChange struct {
	ColorName string
	Change    string // database.ChangeAdded | database.ChangeRemoved
}

// SizeKey identifies a size within a product as a (color, label) pair
type SizeKey struct {
	ColorName string
	SizeLabel string
}

// SizeChange is one detected size addition or removal
type SizeChange struct {
	SizeKey
	Change string
}

// DiffColors computes the symmetric set difference between the old and new
// color name sets. Order: removals first (old order), then additions (new
// order). Duplicate names inside one set count once.
func DiffColors(oldNames, newNames []string) []ColorChange {
	oldSet := toSet(oldNames)
	newSet := toSet(newNames)

	changes := make([]ColorChange, 0)
	for _, name := range dedup(oldNames) {
		if !newSet[name] {
			changes = append(changes, ColorChange{ColorName: name, Change: database.ChangeRemoved})
		}
	}
	for _, name := range dedup(newNames) {
		if !oldSet[name] {
			changes = append(changes, ColorChange{ColorName: name, Change: database.ChangeAdded})
		}
	}
	return changes
}

// DiffSizes computes the symmetric set difference between the old and new
// (color, size) pair sets
func DiffSizes(oldKeys, newKeys []SizeKey) []SizeChange {
	oldSet := make(map[SizeKey]bool, len(oldKeys))
	for _, k := range oldKeys {
		oldSet[k] = true
	}
	newSet := make(map[SizeKey]bool, len(newKeys))
	for _, k := range newKeys {
		newSet[k] = true
	}

	changes := make([]SizeChange, 0)
	for _, k := range dedupKeys(oldKeys) {
		if !newSet[k] {
			changes = append(changes, SizeChange{SizeKey: k, Change: database.ChangeRemoved})
		}
	}
	for _, k := range dedupKeys(newKeys) {
		if !oldSet[k] {
			changes = append(changes, SizeChange{SizeKey: k, Change: database.ChangeAdded})
		}
	}
	return changes
}

// ShouldLogPriceChange guards price history appends: a change is recorded
// only when the stored price differs AND a prior price was actually known.
// A stored price of zero means "no known prior price" and is exempt, so a
// product first seen without pricing never produces a spurious history row.
func ShouldLogPriceChange(oldPrice, newPrice int64) bool {
	return oldPrice != newPrice && oldPrice > 0
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func dedupKeys(keys []SizeKey) []SizeKey {
	seen := make(map[SizeKey]bool, len(keys))
	out := make([]SizeKey, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
