package overlay

import (
	"fmt"
	"strconv"
)

// Version is the effective game version of an edit: the version from which the
// edit applies until something newer supersedes it.
//
// The zero value is Unversioned, meaning the edit applies from the dawn of time.
// Use At to construct a versioned value. Version is comparable, so it may be
// used as a map key.
type Version struct {
	id  int
	set bool
}

// Unversioned is the Version of edits that apply regardless of the game version.
var Unversioned Version

// At returns the Version with the given (non-negative) game version id.
func At(id int) Version {
	if id < 0 {
		panic("overlay: negative game version " + strconv.Itoa(id))
	}
	return Version{id: id, set: true}
}

// ID returns the game version id and whether v is versioned at all.
func (v Version) ID() (int, bool) { return v.id, v.set }

// IsSet reports whether v names a game version (as opposed to Unversioned).
func (v Version) IsSet() bool { return v.set }

// key orders versions such that Unversioned precedes every real version.
func (v Version) key() int {
	if !v.set {
		return -1
	}
	return v.id
}

// AppliesAt reports whether an edit with effective version v is visible in the
// snapshot of the target game version.
func (v Version) AppliesAt(target int) bool {
	return !v.set || v.id <= target
}

// Compare returns -1, 0 or +1 depending on whether v orders before, equal to or
// after w. Unversioned orders before every versioned value.
func (v Version) Compare(w Version) int {
	switch a, b := v.key(), w.key(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v Version) String() string {
	if !v.set {
		return "unversioned"
	}
	return "#" + strconv.Itoa(v.id)
}

// ParseVersion parses the textual form used in data files: an empty string is
// Unversioned, otherwise a non-negative decimal game version id (optionally
// prefixed with '#').
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Unversioned, nil
	}
	if s[0] == '#' {
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Version{}, fmt.Errorf("parse version %q: %w", s, err)
	}
	if n < 0 {
		return Version{}, fmt.Errorf("parse version %q: negative", s)
	}
	return At(n), nil
}
