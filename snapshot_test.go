package overlay

import (
	"context"
	"testing"
)

func TestSnapshotAccessorsReturnCopies(t *testing.T) {
	in := hashInput(5, false)
	armor := in.Properties[0].Key
	in.Properties = append(in.Properties, PropertyBatch{
		Source: "properties/front.wiki.1.csv", FileVersion: 1,
		Key:          PropertyKey{FileID: "front", Author: "wiki"},
		InheritsFrom: &armor,
		Descriptions: map[string]string{"en": "Front armor"},
	})
	s := Resolve(context.Background(), in, 10)

	for _, p := range s.Properties() {
		p.Descriptions["en"] = "Mutated"
		if p.InheritsFrom != nil {
			p.InheritsFrom.FileID = "Mutated"
		}
	}
	tank, _ := s.Tank("T-34")
	for k := range tank.Properties {
		tank.Properties[k] = "Mutated"
	}

	var inherited bool
	for _, p := range s.Properties() {
		if p.Descriptions["en"] == "Mutated" {
			t.Errorf("Property %v: description changed through a returned copy", p.Key)
		}
		if p.InheritsFrom != nil {
			inherited = true
			if p.InheritsFrom.FileID != "armor" {
				t.Errorf("Property %v inherits from %v, want armor@wiki", p.Key, p.InheritsFrom)
			}
		}
	}
	if !inherited {
		t.Fatal("Registry holds no inheriting property")
	}
	if v, _ := s.Tank("T-34"); v.Properties[armor] != "45" {
		t.Errorf("T-34 armor@wiki = %q, want 45", v.Properties[armor])
	}
}
