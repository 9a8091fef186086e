package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielorbach/go-component"
)

// WarningKind classifies the recoverable data anomalies the engine detects.
type WarningKind int

const (
	// DuplicateEdit reports an edit discarded because a later edit in the same
	// file targets the same tank at the same effective version.
	DuplicateEdit WarningKind = iota + 1
	// RedundantTombstone reports a tombstone that directly follows another
	// tombstone of the same tank within one file.
	RedundantTombstone
	// DanglingInheritance reports a property dropped because the property it
	// inherits from does not exist (or was dropped itself).
	DanglingInheritance
	// InheritanceCycle reports a property dropped to break an inheritance cycle.
	InheritanceCycle
	// UnresolvableTank reports a tank excluded from a snapshot because one of its
	// required classification fields never resolved.
	UnresolvableTank
)

func (k WarningKind) String() string {
	switch k {
	case DuplicateEdit:
		return "duplicate-edit"
	case RedundantTombstone:
		return "redundant-tombstone"
	case DanglingInheritance:
		return "dangling-inheritance"
	case InheritanceCycle:
		return "inheritance-cycle"
	case UnresolvableTank:
		return "unresolvable-tank"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// A Warning describes one recoverable anomaly and the record(s) dropped because
// of it. Source, Tank and Property are empty when they do not apply.
type Warning struct {
	Kind     WarningKind
	Source   string
	Tank     string
	Property string
	Message  string
}

// String renders the warning as a single human-readable line. The rendering is
// stable: identical inputs produce identical text.
func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(w.Kind.String())
	if w.Source != "" {
		b.WriteString(" in ")
		b.WriteString(w.Source)
	}
	if w.Property != "" {
		b.WriteString(" property ")
		b.WriteString(w.Property)
	}
	if w.Tank != "" {
		b.WriteString(" tank ")
		b.WriteString(w.Tank)
	}
	b.WriteString(": ")
	b.WriteString(w.Message)
	return b.String()
}

// Warnings accumulates the warnings of a single resolution pass, in the order
// they were discovered. The zero value is ready to use.
//
// A Warnings is owned by one pass and is not safe for concurrent use.
type Warnings struct {
	list []Warning
}

// Add records w, logs it and counts it. Add never fails.
func (ws *Warnings) Add(ctx context.Context, w Warning) {
	ws.list = append(ws.list, w)
	component.Logger(ctx).WarnContext(ctx, "Dropped data while resolving overlays",
		slog.String("kind", w.Kind.String()),
		slog.String("warning", w.String()),
	)
	countWarning(ctx, w.Kind)
}

// Len returns the number of recorded warnings.
func (ws *Warnings) Len() int { return len(ws.list) }

// List returns a copy of the recorded warnings.
func (ws *Warnings) List() []Warning {
	l := make([]Warning, len(ws.list))
	copy(l, ws.list)
	return l
}

// Strings returns the recorded warnings rendered with Warning.String.
func (ws *Warnings) Strings() []string {
	return warningStrings(ws.list)
}
