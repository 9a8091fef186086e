package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/go-overlay/go-overlay"
)

func testSnapshot() *overlay.Snapshot {
	base := overlay.PropertyKey{FileID: "Speed", ColumnID: "Base", Author: "wiki"}
	return overlay.Resolve(context.Background(), overlay.Input{
		Classifications: []overlay.ClassificationBatch{{
			Source: "tanks.1.csv", FileVersion: 1,
			Edits: []overlay.ClassificationEdit{
				{Tank: "R04_T-34", Country: overlay.Ptr("ussr"), Tier: overlay.Ptr(5), Class: overlay.Ptr(overlay.MediumTank), Category: overlay.Ptr(overlay.TechTree)},
				{Tank: "A01_M4", Country: overlay.Ptr("usa"), Tier: overlay.Ptr(5), Class: overlay.Ptr(overlay.MediumTank)},
			},
		}},
		Properties: []overlay.PropertyBatch{
			{
				Source: "properties/Speed.wiki.1.csv", FileVersion: 1, Key: base,
				Descriptions: map[string]string{"en": "Base speed"},
				Edits:        []overlay.PropertyEdit{{Tank: "R04_T-34", Value: "54"}},
			},
			{
				Source: "properties/Speed.wiki.1.csv", FileVersion: 1,
				Key:          overlay.PropertyKey{FileID: "Speed", ColumnID: "Forward", Author: "wiki"},
				InheritsFrom: &base,
			},
		},
	}, 10)
}

func TestNewDocument(t *testing.T) {
	s := testSnapshot()
	hash, _ := s.Hash().MarshalText()
	want := Document{
		Version: 10,
		Hash:    string(hash),
		Tanks: []Tank{{
			Key:      "R04_T-34",
			Country:  "ussr",
			Tier:     5,
			Class:    "medium",
			Category: "techtree",
			Image:    "R04_T-34",
			Properties: map[string]string{
				"Speed/Base@wiki":    "54",
				"Speed/Forward@wiki": "54",
			},
		}},
		Properties: []Property{
			{Key: "Speed/Base@wiki", Descriptions: map[string]string{"en": "Base speed"}},
			{Key: "Speed/Forward@wiki", InheritsFrom: "Speed/Base@wiki", Descriptions: map[string]string{}},
		},
		Warnings: []string{"unresolvable-tank tank A01_M4: missing category at game version #10"},
	}
	if diff := cmp.Diff(want, NewDocument(s)); diff != "" {
		t.Errorf("NewDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteYAML(t *testing.T) {
	s := testSnapshot()
	var buf bytes.Buffer
	if err := WriteYAML(&buf, s); err != nil {
		t.Fatal("WriteYAML() error:", err)
	}

	var got Document
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error: %v\n%s", err, buf.String())
	}
	want := NewDocument(s)
	// Empty maps do not survive the trip.
	want.Properties[1].Descriptions = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decoded document mismatch (-want +got):\n%s", diff)
	}

	var again bytes.Buffer
	if err := WriteYAML(&again, s); err != nil {
		t.Fatal("WriteYAML() error:", err)
	}
	if buf.String() != again.String() {
		t.Error("WriteYAML() output is not stable")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, testSnapshot()); err != nil {
		t.Fatal("WriteText() error:", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		"R04_T-34\tussr\ttier 5\tmedium\ttechtree\tR04_T-34",
		"\tSpeed/Base@wiki = 54",
		"\tSpeed/Forward@wiki = 54",
		"warning: unresolvable-tank tank A01_M4: missing category at game version #10",
	}
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "snapshot at game version #10 (snapshot(") {
		t.Fatalf("WriteText() header = %q", lines)
	}
	if diff := cmp.Diff(want, lines[1:]); diff != "" {
		t.Errorf("WriteText() mismatch (-want +got):\n%s", diff)
	}
}
