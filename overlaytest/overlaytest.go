/*
Package overlaytest provides a suite of scenarios that assess functions
resolving overlay edit batches into snapshots, such as [overlay.Resolve].

Call overlaytest.Run in its own test to invoke the suite:

	func TestResolve(t *testing.T) {
		overlaytest.Run(t, overlay.Resolve)
	}

Every scenario is resolved twice to check that the snapshot, including the text
and order of its warnings, is reproducible.
*/
package overlaytest

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-overlay/go-overlay"
)

// A Resolver resolves edit batches into the snapshot valid at target.
type Resolver func(ctx context.Context, in overlay.Input, target int) *overlay.Snapshot

type testCase struct {
	// Subtest name.
	name string
	// A path leading to the test-case's file and line in the source code.
	location string
	// The edit batches to resolve, and the game version to resolve them at.
	input  overlay.Input
	target int
	// Checks to run on the resolved snapshot.
	checks []check
}

var (
	speedBase    = overlay.PropertyKey{FileID: "Speed", ColumnID: "Base", Author: "wiki"}
	speedForward = overlay.PropertyKey{FileID: "Speed", ColumnID: "Forward", Author: "wiki"}
	armor        = overlay.PropertyKey{FileID: "armor", Author: "wiki"}
	grand        = overlay.PropertyKey{FileID: "a-grand", Author: "x"}
	parent       = overlay.PropertyKey{FileID: "b-parent", Author: "x"}
	child        = overlay.PropertyKey{FileID: "c-child", Author: "x"}
	missing      = overlay.PropertyKey{FileID: "missing", Author: "x"}
)

var cases = []testCase{
	{
		name:     "tombstone-after-readd",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(0, edit("tank1", overlay.Unversioned, 5)),
			classifications(1, tombstone("tank1", overlay.At(100))),
			classifications(2, edit("tank1", overlay.At(50), 6)),
		}},
		target: 150,
		checks: []check{tanks(), warnings()},
	},
	{
		name:     "readd-before-tombstone",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(0, edit("tank1", overlay.Unversioned, 5)),
			classifications(1, tombstone("tank1", overlay.At(100))),
			classifications(2, overlay.ClassificationEdit{Tank: "tank1", Version: overlay.At(50), Tier: overlay.Ptr(6)}),
		}},
		target: 75,
		checks: []check{tanks("tank1"), classified(resolved("tank1", 6)), warnings()},
	},
	{
		name:     "batches-sorted-by-file-version",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(2, overlay.ClassificationEdit{Tank: "tank1", Tier: overlay.Ptr(7)}),
			classifications(1, edit("tank1", overlay.Unversioned, 5)),
		}},
		target: 1,
		checks: []check{classified(resolved("tank1", 7))},
	},
	{
		name:     "partial-field-edits",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(0, edit("tank1", overlay.Unversioned, 5)),
			classifications(1,
				overlay.ClassificationEdit{Tank: "tank1", Version: overlay.At(10), Class: overlay.Ptr(overlay.HeavyTank)},
				overlay.ClassificationEdit{Tank: "tank1", Version: overlay.At(20), ImageName: overlay.Ptr("tank1_v2")},
			),
		}},
		target: 20,
		checks: []check{classified(overlay.Tank{
			Key:       "tank1",
			Country:   "ussr",
			Tier:      5,
			Class:     overlay.HeavyTank,
			Category:  overlay.TechTree,
			ImageName: "tank1_v2",
		})},
	},
	{
		name:     "not-yet-introduced",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(1, edit("tank1", overlay.Unversioned, 5), edit("tank2", overlay.At(200), 5)),
		}},
		target: 100,
		checks: []check{tanks("tank1"), warnings()},
	},
	{
		name:     "unresolvable-tank",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(1, overlay.ClassificationEdit{Tank: "tank1", Country: overlay.Ptr("ussr"), Tier: overlay.Ptr(5)}),
		}},
		target: 100,
		checks: []check{tanks(), warnings(overlay.UnresolvableTank)},
	},
	{
		name:     "duplicate-edit",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(1, edit("tank1", overlay.Unversioned, 5), edit("tank1", overlay.Unversioned, 6)),
		}},
		target: 100,
		checks: []check{classified(resolved("tank1", 6)), warnings(overlay.DuplicateEdit)},
	},
	{
		name:     "redundant-tombstone",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(0, edit("tank1", overlay.Unversioned, 5)),
			classifications(1, tombstone("tank1", overlay.At(10)), tombstone("tank1", overlay.Unversioned)),
		}},
		target: 5,
		checks: []check{tanks(), warnings(overlay.RedundantTombstone)},
	},
	{
		name:     "versioned-tombstone-rollback",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(0,
				edit("tank1", overlay.Unversioned, 5),
				edit("tank1", overlay.At(10), 6),
				edit("tank1", overlay.At(30), 8),
			),
			classifications(1, tombstone("tank1", overlay.At(20))),
		}},
		target: 15,
		checks: []check{classified(resolved("tank1", 6))},
	},
	{
		name:     "versioned-tombstone-rollback-drops-future",
		location: locateSource(),
		input: overlay.Input{Classifications: []overlay.ClassificationBatch{
			classifications(0,
				edit("tank1", overlay.Unversioned, 5),
				edit("tank1", overlay.At(30), 8),
			),
			classifications(1, tombstone("tank1", overlay.At(20))),
		}},
		target: 40,
		checks: []check{tanks()},
	},
	{
		name:     "property-unversioned-reset",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(armor, 1, nil, set("tank1", overlay.Unversioned, "1"), set("tank1", overlay.At(10), "2")),
				properties(armor, 2, nil, set("tank1", overlay.Unversioned, "3")),
			},
		},
		target: 20,
		checks: []check{value("tank1", armor, "3"), registry(armor)},
	},
	{
		name:     "property-versioned-edit-replaces-future",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(armor, 1, nil, set("tank1", overlay.At(10), "a"), set("tank1", overlay.At(30), "c")),
				properties(armor, 2, nil, set("tank1", overlay.At(20), "b")),
			},
		},
		target: 40,
		checks: []check{value("tank1", armor, "b")},
	},
	{
		name:     "property-tombstone",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(armor, 1, nil, set("tank1", overlay.Unversioned, "x")),
				properties(armor, 2, nil, overlay.PropertyEdit{Tank: "tank1", Version: overlay.At(50), Tombstone: true}),
			},
		},
		target: 60,
		checks: []check{value("tank1", armor, ""), registry()},
	},
	{
		name:     "property-of-unknown-tank",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties:      []overlay.PropertyBatch{properties(armor, 1, nil, set("tank9", overlay.Unversioned, "x"))},
		},
		target: 1,
		checks: []check{tanks("tank1"), registry()},
	},
	{
		name:     "case-insensitive-property-keys",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(overlay.PropertyKey{FileID: "Armor", Author: "Wiki"}, 1, nil, set("tank1", overlay.Unversioned, "1")),
				properties(armor, 2, nil, set("tank1", overlay.Unversioned, "2")),
			},
		},
		target: 1,
		checks: []check{
			value("tank1", armor, "2"),
			registry(overlay.PropertyKey{FileID: "Armor", Author: "Wiki"}),
		},
	},
	{
		name:     "inheritance-fills-missing-tank",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank2", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(speedBase, 1, nil, set("tank2", overlay.Unversioned, "10")),
				properties(speedForward, 1, &speedBase),
			},
		},
		target: 1,
		checks: []check{value("tank2", speedForward, "10"), registry(speedBase, speedForward), warnings()},
	},
	{
		name:     "inheritance-shadowing",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(grand, 1, nil, set("tank1", overlay.At(20), "g")),
				properties(parent, 1, &grand, set("tank1", overlay.At(10), "p")),
				properties(child, 1, &parent, set("tank1", overlay.Unversioned, "c")),
			},
		},
		target: 30,
		checks: []check{value("tank1", child, "c"), value("tank1", parent, "g")},
	},
	{
		name:     "inheritance-per-version-merge",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(parent, 1, nil,
					set("tank1", overlay.Unversioned, "p0"),
					set("tank1", overlay.At(10), "p10"),
					set("tank1", overlay.At(20), "p20"),
				),
				properties(child, 1, &parent, set("tank1", overlay.At(10), "c10")),
			},
		},
		target: 15,
		checks: []check{value("tank1", child, "c10"), value("tank1", parent, "p10")},
	},
	{
		name:     "inheritance-per-version-merge-later",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(parent, 1, nil,
					set("tank1", overlay.Unversioned, "p0"),
					set("tank1", overlay.At(20), "p20"),
				),
				properties(child, 1, &parent, set("tank1", overlay.At(10), "c10")),
			},
		},
		target: 25,
		checks: []check{value("tank1", child, "p20")},
	},
	{
		name:     "dangling-inheritance-cascade",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(armor, 1, nil, set("tank1", overlay.Unversioned, "1")),
				properties(parent, 1, &missing, set("tank1", overlay.Unversioned, "p")),
				properties(child, 1, &parent, set("tank1", overlay.Unversioned, "c")),
			},
		},
		target: 1,
		checks: []check{
			registry(armor),
			value("tank1", child, ""),
			warnings(overlay.DanglingInheritance, overlay.DanglingInheritance),
		},
	},
	{
		name:     "inheritance-cycle",
		location: locateSource(),
		input: overlay.Input{
			Classifications: []overlay.ClassificationBatch{classifications(0, edit("tank1", overlay.Unversioned, 5))},
			Properties: []overlay.PropertyBatch{
				properties(armor, 1, nil, set("tank1", overlay.Unversioned, "1")),
				properties(grand, 1, &parent, set("tank1", overlay.Unversioned, "g")),
				properties(parent, 1, &grand, set("tank1", overlay.Unversioned, "p")),
			},
		},
		target: 1,
		checks: []check{
			registry(armor),
			warnings(overlay.InheritanceCycle, overlay.DanglingInheritance),
		},
	},
}

// Run resolves every scenario of the suite with resolve and reports the
// problems found by its checks.
//
// Scenarios are independent of each other; each runs in its own subtest.
func Run(t *testing.T, resolve Resolver) {
	t.Helper()

	// The suite checks correctness, not performance. Resolvers must not depend on
	// specific context values.
	ctx := context.Background()

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := resolve(ctx, c.input, c.target)
			for _, check := range c.checks {
				if problem := check(s); problem != "" {
					t.Errorf("Check %v (see %v): %v", c.name, c.location, problem)
				}
			}

			again := resolve(ctx, c.input, c.target)
			if s.Hash() != again.Hash() {
				t.Errorf("Resolving %v twice produced hashes %v and %v", c.name, s.Hash(), again.Hash())
			}
			if diff := cmp.Diff(warningText(s), warningText(again)); diff != "" {
				t.Errorf("Resolving %v twice produced different warnings (-first +second):\n%v", c.name, diff)
			}
		})
	}
}

func warningText(s *overlay.Snapshot) []string {
	var text []string
	for _, w := range s.Warnings() {
		text = append(text, w.String())
	}
	return text
}

func classifications(fileVersion int, edits ...overlay.ClassificationEdit) overlay.ClassificationBatch {
	return overlay.ClassificationBatch{
		Source:      fmt.Sprintf("tanks.%d.csv", fileVersion),
		FileVersion: fileVersion,
		Edits:       slices.Clone(edits),
	}
}

func properties(key overlay.PropertyKey, fileVersion int, inherits *overlay.PropertyKey, edits ...overlay.PropertyEdit) overlay.PropertyBatch {
	return overlay.PropertyBatch{
		Source:       fmt.Sprintf("properties/%s.%s.%d.csv", key.FileID, key.Author, fileVersion),
		FileVersion:  fileVersion,
		Key:          key,
		InheritsFrom: inherits,
		Edits:        slices.Clone(edits),
	}
}

// edit returns a classification edit setting every required field.
func edit(tank string, v overlay.Version, tier int) overlay.ClassificationEdit {
	return overlay.ClassificationEdit{
		Tank:     tank,
		Version:  v,
		Country:  overlay.Ptr("ussr"),
		Tier:     overlay.Ptr(tier),
		Class:    overlay.Ptr(overlay.MediumTank),
		Category: overlay.Ptr(overlay.TechTree),
	}
}

func tombstone(tank string, v overlay.Version) overlay.ClassificationEdit {
	return overlay.ClassificationEdit{Tank: tank, Version: v, Tombstone: true}
}

func set(tank string, v overlay.Version, s string) overlay.PropertyEdit {
	return overlay.PropertyEdit{Tank: tank, Version: v, Value: s}
}

// resolved is the tank produced by edit.
func resolved(tank string, tier int) overlay.Tank {
	return overlay.Tank{
		Key:       tank,
		Country:   "ussr",
		Tier:      tier,
		Class:     overlay.MediumTank,
		Category:  overlay.TechTree,
		ImageName: tank,
	}
}

// Call this function to set the location of every test-case in the source file.
// The returned string guides developers to the failing scenario.
func locateSource() (path string) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		panic("runtime.Caller failed")
	}
	return fmt.Sprintf("%v:%v", file, line)
}
