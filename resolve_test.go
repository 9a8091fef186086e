package overlay_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-overlay/go-overlay"
	"github.com/go-overlay/go-overlay/overlaytest"
)

func TestResolve(t *testing.T) {
	overlaytest.Run(t, overlay.Resolve)
}

// monotonicityInput mixes introductions, rollbacks, re-additions and an
// unresolvable tank across several files.
func monotonicityInput() overlay.Input {
	full := func(tank string, v overlay.Version) overlay.ClassificationEdit {
		return overlay.ClassificationEdit{
			Tank:     tank,
			Version:  v,
			Country:  overlay.Ptr("germany"),
			Tier:     overlay.Ptr(6),
			Class:    overlay.Ptr(overlay.TankDestroyer),
			Category: overlay.Ptr(overlay.Premium),
		}
	}
	return overlay.Input{Classifications: []overlay.ClassificationBatch{
		{Source: "gamedata.yaml", FileVersion: 0, Edits: []overlay.ClassificationEdit{
			full("a", overlay.Unversioned),
			full("b", overlay.At(40)),
			{Tank: "c", Country: overlay.Ptr("france")},
		}},
		{Source: "tanks.1.csv", FileVersion: 1, Edits: []overlay.ClassificationEdit{
			{Tank: "a", Version: overlay.At(30), Tombstone: true},
			full("a", overlay.At(70)),
			{Tank: "c", Version: overlay.At(60), Tier: overlay.Ptr(2), Class: overlay.Ptr(overlay.LightTank), Category: overlay.Ptr(overlay.Special)},
		}},
		{Source: "tanks.2.csv", FileVersion: 2, Edits: []overlay.ClassificationEdit{
			{Tank: "b", Version: overlay.At(50), Tombstone: true},
			full("b", overlay.At(90)),
		}},
	}}
}

func TestResolveMonotonicity(t *testing.T) {
	ctx := context.Background()
	in := monotonicityInput()

	// The effective versions of the edits of each tank.
	versions := make(map[string][]int)
	for _, b := range in.Classifications {
		for _, e := range b.Edits {
			if id, ok := e.Version.ID(); ok {
				versions[e.Tank] = append(versions[e.Tank], id)
			}
		}
	}
	editedBetween := func(tank string, v1, v2 int) bool {
		for _, v := range versions[tank] {
			if v1 < v && v <= v2 {
				return true
			}
		}
		return false
	}

	targets := []int{0, 10, 30, 40, 45, 50, 60, 70, 80, 90, 100}
	snapshots := make([]*overlay.Snapshot, len(targets))
	for i, target := range targets {
		snapshots[i] = overlay.Resolve(ctx, in, target)
	}
	for i, v1 := range targets {
		for j := i + 1; j < len(targets); j++ {
			v2 := targets[j]
			for _, tank := range []string{"a", "b", "c"} {
				_, before := snapshots[i].Tank(tank)
				_, after := snapshots[j].Tank(tank)
				if !before && after && !editedBetween(tank, v1, v2) {
					t.Errorf("Tank %s excluded at #%d reappeared at #%d without a later edit", tank, v1, v2)
				}
			}
		}
	}

	// Spot-check the expected shape of the data set.
	want := map[int][]string{
		0:   {"a"},
		30:  nil,
		45:  {"b"},
		60:  {"c"},
		70:  {"a", "c"},
		100: {"a", "b", "c"},
	}
	for i, target := range targets {
		keys, ok := want[target]
		if !ok {
			continue
		}
		if diff := cmp.Diff(keys, snapshots[i].Keys()); diff != "" {
			t.Errorf("Keys() at #%d mismatch (-want +got):\n%s", target, diff)
		}
	}
}

func TestResolveConcurrent(t *testing.T) {
	ctx := context.Background()
	in := monotonicityInput()
	want := overlay.Resolve(ctx, in, 100)

	var wg sync.WaitGroup
	got := make([]*overlay.Snapshot, 8)
	for i := range got {
		wg.Go(func() {
			got[i] = overlay.Resolve(ctx, in, 100)
		})
	}
	wg.Wait()

	for i, s := range got {
		if s.Hash() != want.Hash() {
			t.Errorf("Resolve #%d hash = %v, want %v", i, s.Hash(), want.Hash())
		}
		if diff := cmp.Diff(fmt.Sprint(want.Warnings()), fmt.Sprint(s.Warnings())); diff != "" {
			t.Errorf("Resolve #%d warnings mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestResolveWarningsStayWithTheirPass(t *testing.T) {
	ctx := context.Background()
	in := monotonicityInput()

	// Tank c resolves at #60 only; before that it is unresolvable.
	early := overlay.Resolve(ctx, in, 0)
	late := overlay.Resolve(ctx, in, 100)
	if got := len(early.Warnings()); got != 1 {
		t.Errorf("Resolve(#0) recorded %d warnings, want 1: %v", got, early.Warnings())
	}
	if got := len(late.Warnings()); got != 0 {
		t.Errorf("Resolve(#100) recorded %d warnings, want 0: %v", got, late.Warnings())
	}
}

func ExampleResolve() {
	in := overlay.Input{
		Classifications: []overlay.ClassificationBatch{
			{Source: "gamedata.yaml", FileVersion: 0, Edits: []overlay.ClassificationEdit{{
				Tank:     "tank1",
				Country:  overlay.Ptr("ussr"),
				Tier:     overlay.Ptr(5),
				Class:    overlay.Ptr(overlay.MediumTank),
				Category: overlay.Ptr(overlay.TechTree),
			}}},
			{Source: "tanks.1.csv", FileVersion: 1, Edits: []overlay.ClassificationEdit{
				{Tank: "tank1", Version: overlay.At(100), Tombstone: true},
			}},
			{Source: "tanks.2.csv", FileVersion: 2, Edits: []overlay.ClassificationEdit{
				{Tank: "tank1", Version: overlay.At(50), Tier: overlay.Ptr(6)},
			}},
		},
		Properties: []overlay.PropertyBatch{
			{Source: "properties/Speed.wiki.1.csv", FileVersion: 1,
				Key:   overlay.PropertyKey{FileID: "Speed", ColumnID: "Base", Author: "wiki"},
				Edits: []overlay.PropertyEdit{{Tank: "tank1", Value: "10"}},
			},
			{Source: "properties/Speed.wiki.1.csv", FileVersion: 1,
				Key:          overlay.PropertyKey{FileID: "Speed", ColumnID: "Forward", Author: "wiki"},
				InheritsFrom: &overlay.PropertyKey{FileID: "Speed", ColumnID: "Base", Author: "wiki"},
			},
		},
	}

	for _, target := range []int{25, 75, 150} {
		s := overlay.Resolve(context.Background(), in, target)
		t, ok := s.Tank("tank1")
		if !ok {
			fmt.Printf("#%d: tank1 does not exist\n", target)
			continue
		}
		speed, _ := t.Property(overlay.PropertyKey{FileID: "speed", ColumnID: "Forward", Author: "wiki"})
		fmt.Printf("#%d: tank1 tier %d, forward speed %s\n", target, t.Tier, speed)
	}
	// Output:
	// #25: tank1 tier 5, forward speed 10
	// #75: tank1 tier 6, forward speed 10
	// #150: tank1 does not exist
}
