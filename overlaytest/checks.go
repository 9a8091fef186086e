package overlaytest

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-overlay/go-overlay"
)

// A check is any function that returns unexpected problems with the given
// snapshot.
type check func(*overlay.Snapshot) (problem string)

// Checks that the snapshot holds exactly the given tanks.
func tanks(keys ...string) check {
	return func(s *overlay.Snapshot) string {
		want := slices.Sorted(slices.Values(keys))
		if diff := cmp.Diff(want, s.Keys(), cmpopts.EquateEmpty()); diff != "" {
			return fmt.Sprintf("Keys() mismatch (-want +got):\n%v", diff)
		}
		return ""
	}
}

// Checks the built-in attributes of one tank. Properties are ignored.
func classified(want overlay.Tank) check {
	return func(s *overlay.Snapshot) string {
		got, ok := s.Tank(want.Key)
		if !ok {
			return fmt.Sprintf("Tank(%q) is missing", want.Key)
		}
		got.Properties = nil
		if diff := cmp.Diff(want, got); diff != "" {
			return fmt.Sprintf("Tank(%q) mismatch (-want +got):\n%v", want.Key, diff)
		}
		return ""
	}
}

// Checks the value of a property of one tank. An empty value means the tank
// must not carry the property.
func value(tank string, key overlay.PropertyKey, want string) check {
	return func(s *overlay.Snapshot) string {
		t, ok := s.Tank(tank)
		if !ok {
			return fmt.Sprintf("Tank(%q) is missing", tank)
		}
		got, ok := t.Property(key)
		switch {
		case want == "" && ok:
			return fmt.Sprintf("Tank(%q).Property(%v) = %q, want absent", tank, key, got)
		case want != "" && !ok:
			return fmt.Sprintf("Tank(%q).Property(%v) is absent, want %q", tank, key, want)
		case got != want:
			return fmt.Sprintf("Tank(%q).Property(%v) = %q, want %q", tank, key, got, want)
		}
		return ""
	}
}

// Checks the property registry holds exactly the given keys, in order.
func registry(keys ...overlay.PropertyKey) check {
	return func(s *overlay.Snapshot) string {
		var got []string
		for _, p := range s.Properties() {
			got = append(got, p.Key.String())
		}
		var want []string
		for _, k := range keys {
			want = append(want, k.String())
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			return fmt.Sprintf("Properties() mismatch (-want +got):\n%v", diff)
		}
		return ""
	}
}

// Checks the kinds of the recorded warnings, in order.
func warnings(kinds ...overlay.WarningKind) check {
	return func(s *overlay.Snapshot) string {
		var got []overlay.WarningKind
		for _, w := range s.Warnings() {
			got = append(got, w.Kind)
		}
		if diff := cmp.Diff(kinds, got, cmpopts.EquateEmpty()); diff != "" {
			return fmt.Sprintf("Warnings() kinds mismatch (-want +got):\n%v\nwarnings: %v", diff, s.Warnings())
		}
		return ""
	}
}
