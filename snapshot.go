package overlay

import (
	"context"
	"maps"
	"slices"
)

// PropertyInfo describes a property known to a Snapshot.
type PropertyInfo struct {
	Key          PropertyKey
	InheritsFrom *PropertyKey
	Descriptions map[string]string
}

// A Snapshot is the immutable result of resolving all overlays at one game
// version. Its accessors return copies; a Snapshot is safe for concurrent use.
type Snapshot struct {
	version    int
	tanks      map[string]Tank
	keys       []string
	properties []PropertyInfo
	warnings   []Warning
	hash       SnapshotHash
}

// Version returns the game version the snapshot was resolved at.
func (s *Snapshot) Version() int { return s.version }

// Len returns the number of tanks in the snapshot.
func (s *Snapshot) Len() int { return len(s.keys) }

// Keys returns the keys of the tanks in the snapshot, sorted.
func (s *Snapshot) Keys() []string { return slices.Clone(s.keys) }

// Tank returns the resolved tank with the given key.
func (s *Snapshot) Tank(key string) (Tank, bool) {
	t, ok := s.tanks[key]
	if !ok {
		return Tank{}, false
	}
	t.Properties = maps.Clone(t.Properties)
	return t, true
}

// Tanks returns every resolved tank, sorted by key.
func (s *Snapshot) Tanks() []Tank {
	tanks := make([]Tank, 0, len(s.keys))
	for _, k := range s.keys {
		t, _ := s.Tank(k)
		tanks = append(tanks, t)
	}
	return tanks
}

// Properties returns the registry of properties that resolved to a value for at
// least one tank, in canonical key order.
func (s *Snapshot) Properties() []PropertyInfo {
	infos := make([]PropertyInfo, len(s.properties))
	for i, p := range s.properties {
		infos[i] = p
		infos[i].Descriptions = maps.Clone(p.Descriptions)
		if p.InheritsFrom != nil {
			parent := *p.InheritsFrom
			infos[i].InheritsFrom = &parent
		}
	}
	return infos
}

// Warnings returns the warnings recorded while resolving the snapshot, in the
// order they were discovered.
func (s *Snapshot) Warnings() []Warning { return slices.Clone(s.warnings) }

// Hash returns the content address of the snapshot's tanks and properties.
// Warnings do not contribute to it.
func (s *Snapshot) Hash() SnapshotHash { return s.hash }

// project collapses the accumulated timelines into a Snapshot at target.
func project(ctx context.Context, target int, timelines ClassificationTimelines, graph *PropertyGraph, ws *Warnings) *Snapshot {
	s := &Snapshot{
		version: target,
		tanks:   make(map[string]Tank, len(timelines)),
	}
	for _, key := range timelines.Tanks() {
		t, ok := ProjectClassification(ctx, key, timelines[key], target, ws)
		if !ok {
			continue
		}
		t.Properties = make(map[PropertyKey]string)
		s.tanks[key] = t
		s.keys = append(s.keys, key)
	}

	// Values of tanks absent from the classification result are dropped: a
	// property describes a tank, it does not create one.
	for _, group := range graph.Groups() {
		contributed := false
		for _, key := range slices.Sorted(maps.Keys(group.Timelines)) {
			t, ok := s.tanks[key]
			if !ok {
				continue
			}
			if v, ok := ProjectProperty(group.Timelines[key], target); ok {
				t.Properties[group.Key] = v
				contributed = true
			}
		}
		if contributed {
			s.properties = append(s.properties, PropertyInfo{
				Key:          group.Key,
				InheritsFrom: group.InheritsFrom,
				Descriptions: maps.Clone(group.Descriptions),
			})
		}
	}

	s.warnings = ws.List()
	s.hash = hashSnapshot(s)
	return s
}
