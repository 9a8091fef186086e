package overlay

import (
	"context"
	"strings"
	"testing"
)

func hashInput(tier int, duplicate bool) Input {
	e := ClassificationEdit{
		Tank:     "T-34",
		Country:  Ptr("ussr"),
		Tier:     Ptr(tier),
		Class:    Ptr(MediumTank),
		Category: Ptr(TechTree),
	}
	edits := []ClassificationEdit{e}
	if duplicate {
		edits = append(edits, e)
	}
	return Input{
		Classifications: []ClassificationBatch{{Source: "tanks.1.csv", FileVersion: 1, Edits: edits}},
		Properties: []PropertyBatch{{
			Source: "properties/armor.wiki.1.csv", FileVersion: 1,
			Key:          PropertyKey{FileID: "armor", Author: "wiki"},
			Descriptions: map[string]string{"en": "Hull armor", "de": "Wannenpanzerung"},
			Edits:        []PropertyEdit{{Tank: "T-34", Value: "45"}},
		}},
	}
}

func TestSnapshotHash(t *testing.T) {
	ctx := context.Background()
	base := Resolve(ctx, hashInput(5, false), 10)
	if base.Hash().IsZero() {
		t.Fatal("Hash() is zero")
	}

	t.Run("IgnoresWarnings", func(t *testing.T) {
		s := Resolve(ctx, hashInput(5, true), 10)
		if len(s.Warnings()) == 0 {
			t.Fatal("Duplicate edit recorded no warning")
		}
		if s.Hash() != base.Hash() {
			t.Errorf("Hash() = %v, want %v", s.Hash(), base.Hash())
		}
	})

	t.Run("IgnoresVersion", func(t *testing.T) {
		s := Resolve(ctx, hashInput(5, false), 20)
		if s.Hash() != base.Hash() {
			t.Errorf("Hash() = %v, want %v", s.Hash(), base.Hash())
		}
	})

	t.Run("ContentChanges", func(t *testing.T) {
		s := Resolve(ctx, hashInput(6, false), 10)
		if s.Hash() == base.Hash() {
			t.Errorf("Hash() = %v for different content", s.Hash())
		}
	})

	t.Run("Text", func(t *testing.T) {
		text, err := base.Hash().MarshalText()
		if err != nil {
			t.Fatal("MarshalText() error:", err)
		}
		var h SnapshotHash
		if err := h.UnmarshalText(text); err != nil {
			t.Fatal("UnmarshalText() error:", err)
		}
		if h != base.Hash() {
			t.Errorf("UnmarshalText(%s) = %v, want %v", text, h, base.Hash())
		}
		if err := h.UnmarshalText(text[:10]); err == nil {
			t.Error("UnmarshalText() of a truncated hash succeeded")
		}
		if s := base.Hash().String(); !strings.HasPrefix(s, "snapshot(") || !strings.Contains(s, string(text)) {
			t.Errorf("String() = %q", s)
		}
	})
}
