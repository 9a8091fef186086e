package overlay

import (
	"fmt"
	"strings"
)

// TankClass is the combat role of a tank.
type TankClass string

const (
	LightTank     TankClass = "light"
	MediumTank    TankClass = "medium"
	HeavyTank     TankClass = "heavy"
	TankDestroyer TankClass = "td"
	Artillery     TankClass = "spg"
)

// ParseTankClass parses a class token case-insensitively. Unknown tokens are an
// error; data files must not smuggle them into the engine.
func ParseTankClass(s string) (TankClass, error) {
	switch c := TankClass(strings.ToLower(strings.TrimSpace(s))); c {
	case LightTank, MediumTank, HeavyTank, TankDestroyer, Artillery:
		return c, nil
	}
	return "", fmt.Errorf("unknown tank class %q", s)
}

// Category is the acquisition category of a tank.
type Category string

const (
	TechTree  Category = "techtree"
	Premium   Category = "premium"
	Collector Category = "collector"
	Special   Category = "special"
)

// ParseCategory parses a category token case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case TechTree, Premium, Collector, Special:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// A ClassificationEdit is a single mutation of the built-in attributes of one
// tank. Nil fields are left unspecified by the edit (as opposed to being
// cleared), which lets override files touch only some of the attributes.
type ClassificationEdit struct {
	Tank      string
	Version   Version
	Tombstone bool

	Country   *string
	Tier      *int
	Class     *TankClass
	Category  *Category
	ImageName *string
}

func (e ClassificationEdit) tank() string      { return e.Tank }
func (e ClassificationEdit) version() Version  { return e.Version }
func (e ClassificationEdit) tombstone() bool   { return e.Tombstone }
func (e ClassificationEdit) String() string    { return describeEdit(e.Tank, e.Version, e.Tombstone) }
func (ClassificationEdit) replacesOnSet() bool { return false }

// A ClassificationBatch holds the classification edits of a single source file.
//
// FileVersion orders files relative to each other; it never gates visibility.
// File version 0 is reserved for edits synthesised from live game data.
type ClassificationBatch struct {
	Source      string // file name, used in warnings
	FileVersion int
	Edits       []ClassificationEdit
}

// Ptr returns a pointer to v. It makes composite literals of edits bearable.
func Ptr[T any](v T) *T { return &v }

func describeEdit(tank string, v Version, tombstone bool) string {
	if tombstone {
		return fmt.Sprintf("tombstone %s@%v", tank, v)
	}
	return fmt.Sprintf("edit %s@%v", tank, v)
}
