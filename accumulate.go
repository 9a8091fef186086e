package overlay

import (
	"cmp"
	"context"
	"maps"
	"slices"
)

// edit is implemented by ClassificationEdit and PropertyEdit so that both are
// folded into timelines by the same accumulator.
type edit interface {
	ClassificationEdit | PropertyEdit
	tank() string
	version() Version
	tombstone() bool
	// replacesOnSet reports whether a non-tombstone edit carries a complete value
	// that supersedes everything it overlaps (properties), rather than a partial
	// one that composes with its predecessors (classification).
	replacesOnSet() bool
	String() string
}

// ClassificationTimelines maps each tank to its accumulated timeline of
// classification edits. A timeline is ordered by effective version (Unversioned
// first); edits with equal versions keep the order in which they were applied.
type ClassificationTimelines map[string][]ClassificationEdit

// Tanks returns the tanks with a timeline, sorted.
func (t ClassificationTimelines) Tanks() []string {
	return slices.Sorted(maps.Keys(t))
}

// AccumulateClassifications folds the given batches (in ascending FileVersion
// order, irrespective of their order in the slice) into per-tank timelines.
// Every discarded edit is recorded in ws.
func AccumulateClassifications(ctx context.Context, batches []ClassificationBatch, ws *Warnings) ClassificationTimelines {
	sorted := slices.Clone(batches)
	slices.SortStableFunc(sorted, func(a, b ClassificationBatch) int {
		return cmp.Compare(a.FileVersion, b.FileVersion)
	})

	timelines := make(ClassificationTimelines)
	for _, b := range sorted {
		fold(ctx, ws, timelines, origin{source: b.Source}, b.Edits)
	}
	pruneEmpty(timelines)
	return timelines
}

// origin names the file (and property) a batch of edits comes from, so that
// warnings point the author at the offending record.
type origin struct {
	source   string
	property string
}

func (o origin) warning(kind WarningKind, tank, message string) Warning {
	return Warning{Kind: kind, Source: o.source, Tank: tank, Property: o.property, Message: message}
}

// fold applies the edits of a single file to the running timelines.
func fold[E edit](ctx context.Context, ws *Warnings, timelines map[string][]E, o origin, edits []E) {
	for _, e := range prepare(ctx, ws, o, edits) {
		timelines[e.tank()] = applyEdit(timelines[e.tank()], e)
	}
}

// prepare normalises the edits of a single file: it removes duplicates per
// (tank, version), keeping the last in file order, and then drops tombstones that
// directly follow another tombstone of the same tank.
//
// The returned edits are sorted by tank and then by effective version, which is
// the order they must be applied in: unversioned edits first, then versioned
// edits in ascending order, so a rule is never invalidated by one applied after
// it from the same file.
func prepare[E edit](ctx context.Context, ws *Warnings, o origin, edits []E) []E {
	type slot struct {
		tank    string
		version Version
	}
	last := make(map[slot]int, len(edits))
	for i, e := range edits {
		last[slot{e.tank(), e.version()}] = i
	}

	unique := make([]E, 0, len(last))
	for i, e := range edits {
		if last[slot{e.tank(), e.version()}] != i {
			ws.Add(ctx, o.warning(DuplicateEdit, e.tank(),
				e.String()+" is superseded by a later edit at the same version in the same file"))
			continue
		}
		unique = append(unique, e)
	}

	slices.SortFunc(unique, func(a, b E) int {
		if c := cmp.Compare(a.tank(), b.tank()); c != 0 {
			return c
		}
		return a.version().Compare(b.version())
	})

	kept := unique[:0]
	for _, e := range unique {
		if e.tombstone() && len(kept) > 0 {
			prev := kept[len(kept)-1]
			if prev.tank() == e.tank() && prev.tombstone() {
				ws.Add(ctx, o.warning(RedundantTombstone, e.tank(),
					e.String()+" follows "+prev.String()+" without an edit in between"))
				continue
			}
		}
		kept = append(kept, e)
	}
	return kept
}

// applyEdit applies a single edit to the timeline of its tank and returns the
// resulting timeline.
func applyEdit[E edit](timeline []E, e E) []E {
	v := e.version()
	switch {
	case !v.IsSet() && e.tombstone():
		// The file declares the tank starts from nothing as of here.
		return append(timeline[:0], e)
	case !v.IsSet() && e.replacesOnSet():
		return append(timeline[:0], e)
	case !v.IsSet():
		return insertOrdered(timeline, e)
	case e.tombstone() || e.replacesOnSet():
		// Roll back everything at or after v, then record the edit itself.
		return append(truncateFrom(timeline, v), e)
	default:
		return insertOrdered(timeline, e)
	}
}

// truncateFrom drops every edit whose effective version is at or after v.
// Timelines are ordered by version, so those edits form a suffix.
func truncateFrom[E edit](timeline []E, v Version) []E {
	i, _ := slices.BinarySearchFunc(timeline, v, func(e E, v Version) int {
		return e.version().Compare(v)
	})
	return timeline[:i]
}

// insertOrdered inserts e after every edit whose effective version is at or
// before its own, keeping the timeline ordered by version and ties in
// application order.
func insertOrdered[E edit](timeline []E, e E) []E {
	i := len(timeline)
	for i > 0 && timeline[i-1].version().Compare(e.version()) > 0 {
		i--
	}
	return slices.Insert(timeline, i, e)
}

func pruneEmpty[E edit](timelines map[string][]E) {
	maps.DeleteFunc(timelines, func(_ string, timeline []E) bool {
		return len(timeline) == 0
	})
}
