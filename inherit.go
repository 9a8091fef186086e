package overlay

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
)

// A PropertyGroup is the accumulated, not-yet-projected state of one property
// across all files.
type PropertyGroup struct {
	Key PropertyKey
	// Descriptions maps language codes to text; later files win per language.
	Descriptions map[string]string
	// InheritsFrom names the property that fills in values this one leaves
	// unset, as declared by the latest file that declared it.
	InheritsFrom *PropertyKey
	// Timelines maps each tank to its accumulated timeline of edits.
	Timelines map[string][]PropertyEdit

	canonical canonicalKey
}

// A PropertyGraph is an arena of property groups connected by their
// inheritance relationships. Groups are addressed by their index in the arena,
// which follows the canonical order of their keys; relationships between groups
// are stored as index sets rather than references.
//
// Removed groups leave a nil slot behind so that indices remain stable.
type PropertyGraph struct {
	groups []*PropertyGroup
	index  map[canonicalKey]int
}

// AccumulateProperties folds the given property batches into one group per
// distinct PropertyKey. The batches of each property are applied in ascending
// FileVersion order. Every discarded edit is recorded in ws.
//
// The returned graph has not resolved inheritance yet; call Resolve.
func AccumulateProperties(ctx context.Context, batches []PropertyBatch, ws *Warnings) *PropertyGraph {
	byKey := make(map[canonicalKey][]PropertyBatch)
	for _, b := range batches {
		k := b.Key.canonical()
		byKey[k] = append(byKey[k], b)
	}

	g := &PropertyGraph{index: make(map[canonicalKey]int, len(byKey))}
	for _, k := range slices.SortedFunc(maps.Keys(byKey), canonicalKey.compare) {
		files := byKey[k]
		slices.SortStableFunc(files, func(a, b PropertyBatch) int {
			return cmp.Compare(a.FileVersion, b.FileVersion)
		})

		group := &PropertyGroup{
			Key:          files[0].Key,
			Descriptions: make(map[string]string),
			Timelines:    make(map[string][]PropertyEdit),
			canonical:    k,
		}
		for _, b := range files {
			maps.Copy(group.Descriptions, b.Descriptions)
			if b.InheritsFrom != nil {
				parent := *b.InheritsFrom
				group.InheritsFrom = &parent
			}
			fold(ctx, ws, group.Timelines, origin{source: b.Source, property: group.Key.String()}, b.Edits)
		}
		pruneEmpty(group.Timelines)

		g.index[k] = len(g.groups)
		g.groups = append(g.groups, group)
	}
	return g
}

// Group returns the live group identified by key.
func (g *PropertyGraph) Group(key PropertyKey) (*PropertyGroup, bool) {
	i, ok := g.index[key.canonical()]
	if !ok || g.groups[i] == nil {
		return nil, false
	}
	return g.groups[i], true
}

// Groups returns the live groups in canonical key order.
func (g *PropertyGraph) Groups() []*PropertyGroup {
	live := make([]*PropertyGroup, 0, len(g.groups))
	for _, group := range g.groups {
		if group != nil {
			live = append(live, group)
		}
	}
	return live
}

// parentOf returns the arena index of the live group that i inherits from, -1
// if i is a root, or ok == false if i inherits from a missing group.
func (g *PropertyGraph) parentOf(i int) (parent int, ok bool) {
	from := g.groups[i].InheritsFrom
	if from == nil {
		return -1, true
	}
	p, found := g.index[from.canonical()]
	if !found || g.groups[p] == nil {
		return -1, false
	}
	return p, true
}

func (g *PropertyGraph) remove(ctx context.Context, ws *Warnings, i int, kind WarningKind, message string) {
	ws.Add(ctx, Warning{Kind: kind, Property: g.groups[i].Key.String(), Message: message})
	g.groups[i] = nil
}

// Resolve removes dangling and cyclic inheritance, then merges every group
// with its ancestors, parents before children.
//
// For each tank, a group that has an unversioned edit of its own shadows its
// entire ancestry. Otherwise, ancestor edits are added for every effective
// version the group does not set itself.
func (g *PropertyGraph) Resolve(ctx context.Context, ws *Warnings) {
	for {
		g.removeDangling(ctx, ws)
		reach := g.transitiveChildren()
		if g.breakCycle(ctx, ws, reach) {
			// Removing a group may orphan its children; start over.
			continue
		}
		break
	}

	depth := g.depths()
	order := make([]int, 0, len(g.groups))
	for i, group := range g.groups {
		if group != nil {
			order = append(order, i)
		}
	}
	// Stable on arena (canonical) order within the same depth.
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(depth[a], depth[b])
	})
	for _, i := range order {
		if p, _ := g.parentOf(i); p >= 0 {
			inherit(g.groups[i], g.groups[p])
		}
	}
}

// removeDangling removes groups that inherit from a missing group until no
// such group remains. Removal cascades down the inheritance chain.
func (g *PropertyGraph) removeDangling(ctx context.Context, ws *Warnings) {
	for removed := true; removed; {
		removed = false
		for i, group := range g.groups {
			if group == nil {
				continue
			}
			if _, ok := g.parentOf(i); !ok {
				g.remove(ctx, ws, i, DanglingInheritance,
					"inherits from "+group.InheritsFrom.String()+" which does not exist")
				removed = true
			}
		}
	}
}

// transitiveChildren computes, for each live group, the set of groups that
// (transitively) inherit from it. The result is indexed [ancestor][descendant].
//
// It starts from the immediate children and unions in children-of-children
// until a full pass changes nothing. Properties number in the tens, so the
// quadratic passes are fine.
func (g *PropertyGraph) transitiveChildren() [][]bool {
	n := len(g.groups)
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = make([]bool, n)
	}
	for i, group := range g.groups {
		if group == nil {
			continue
		}
		if p, _ := g.parentOf(i); p >= 0 {
			reach[p][i] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for i := range n {
			for j := range n {
				if !reach[i][j] {
					continue
				}
				for k := range n {
					if reach[j][k] && !reach[i][k] {
						reach[i][k] = true
						changed = true
					}
				}
			}
		}
	}
	return reach
}

// breakCycle removes the cycle participant with the smallest canonical key, if
// any group is its own transitive child. It reports whether it removed one.
func (g *PropertyGraph) breakCycle(ctx context.Context, ws *Warnings, reach [][]bool) bool {
	for i, group := range g.groups {
		if group == nil || !reach[i][i] {
			continue
		}
		// The arena follows canonical key order, so i is the smallest participant.
		var others []string
		for j := range g.groups {
			if j != i && reach[i][j] && reach[j][i] {
				others = append(others, g.groups[j].Key.String())
			}
		}
		message := "inherits from itself"
		if len(others) > 0 {
			message = "participates in an inheritance cycle with " + strings.Join(others, ", ")
		}
		g.remove(ctx, ws, i, InheritanceCycle, message)
		return true
	}
	return false
}

// depths assigns every live group its distance from the root of its tree by
// iterative relaxation. The graph must be acyclic.
func (g *PropertyGraph) depths() []int {
	depth := make([]int, len(g.groups))
	for i := range depth {
		depth[i] = -1
	}
	for pending := true; pending; {
		pending = false
		for i, group := range g.groups {
			if group == nil || depth[i] >= 0 {
				continue
			}
			switch p, _ := g.parentOf(i); {
			case p < 0:
				depth[i] = 0
			case depth[p] >= 0:
				depth[i] = depth[p] + 1
			default:
				pending = true
			}
		}
	}
	return depth
}

// inherit merges the (already resolved) timelines of parent into child.
func inherit(child, parent *PropertyGroup) {
	for _, tank := range slices.Sorted(maps.Keys(parent.Timelines)) {
		own := child.Timelines[tank]
		if slices.ContainsFunc(own, func(e PropertyEdit) bool { return !e.Version.IsSet() }) {
			// An explicit unversioned value shadows the whole ancestor chain.
			continue
		}

		merged := slices.Clone(own)
		for _, e := range parent.Timelines[tank] {
			if slices.ContainsFunc(own, func(c PropertyEdit) bool { return c.Version == e.Version }) {
				continue
			}
			merged = insertOrdered(merged, e)
		}
		child.Timelines[tank] = merged
	}
}
