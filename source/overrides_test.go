package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-overlay/go-overlay"
)

var cmpVersion = cmp.Comparer(func(a, b overlay.Version) bool { return a == b })

func TestParseClassification(t *testing.T) {
	f := file{name: "tanks.2.csv", kind: classificationFile, fileVersion: 2}
	data := strings.Join([]string{
		"Tank, Version, Tombstone, Country, Tier, Class, Category, Image",
		"R04_T-34,,,ussr,5,medium,techtree,",
		"R04_T-34,#100,,,6,,,t34_v2",
		"R04_T-34,150,true,,,,,",
		"A01_M4,, ,, ,HEAVY,,",
	}, "\n")

	got, err := parseClassification(f, []byte(data))
	if err != nil {
		t.Fatal("parseClassification() error:", err)
	}
	want := overlay.ClassificationBatch{
		Source:      "tanks.2.csv",
		FileVersion: 2,
		Edits: []overlay.ClassificationEdit{
			{Tank: "R04_T-34", Country: overlay.Ptr("ussr"), Tier: overlay.Ptr(5), Class: overlay.Ptr(overlay.MediumTank), Category: overlay.Ptr(overlay.TechTree)},
			{Tank: "R04_T-34", Version: overlay.At(100), Tier: overlay.Ptr(6), ImageName: overlay.Ptr("t34_v2")},
			{Tank: "R04_T-34", Version: overlay.At(150), Tombstone: true},
			{Tank: "A01_M4", Class: overlay.Ptr(overlay.HeavyTank)},
		},
	}
	if diff := cmp.Diff(want, got, cmpVersion); diff != "" {
		t.Errorf("parseClassification() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseClassificationErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{name: "Empty", data: "", line: 1},
		{name: "NoTankColumn", data: "country,tier\nussr,5", line: 1},
		{name: "UnknownColumn", data: "tank,speed\nR04_T-34,54", line: 1},
		{name: "DuplicateColumn", data: "tank,Tier,tier\nR04_T-34,5,6", line: 1},
		{name: "EmptyTank", data: "tank,tier\nR04_T-34,5\n,6", line: 3},
		{name: "BadTier", data: "tank,tier\nR04_T-34,five", line: 2},
		{name: "BadClass", data: "tank,class\nR04_T-34,hovercraft", line: 2},
		{name: "BadCategory", data: "tank,category\nR04_T-34,stolen", line: 2},
		{name: "BadVersion", data: "tank,version\nR04_T-34,v100", line: 2},
		{name: "NegativeVersion", data: "tank,version\nR04_T-34,-5", line: 2},
		{name: "BadTombstone", data: "tank,tombstone\nR04_T-34,maybe", line: 2},
		{name: "FieldCount", data: "tank,tier\nR04_T-34,5,6", line: 2},
	}
	f := file{name: "tanks.1.csv", kind: classificationFile, fileVersion: 1}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseClassification(f, []byte(tt.data))
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("parseClassification() error = %v, want a *SyntaxError", err)
			}
			if serr.File != f.name || serr.Line != tt.line {
				t.Errorf("SyntaxError at %s:%d, want %s:%d (%v)", serr.File, serr.Line, f.name, tt.line, err)
			}
		})
	}
}

func TestParseProperties(t *testing.T) {
	f := file{name: "properties/Speed.wiki.1.csv", kind: propertyFile, fileVersion: 1, fileID: "Speed", author: "wiki"}
	data := strings.Join([]string{
		"# inherits Forward: Speed/Base",
		"# description en: Speed in km/h",
		"# description Forward en: Forward speed in km/h",
		"# maintained by hand",
		"tank,version,tombstone,Forward,Reverse",
		"R04_T-34,,,54,20",
		"R04_T-34,100,,56,",
		"A01_M4,,true,,",
	}, "\n")

	got, err := parseProperties(f, []byte(data))
	if err != nil {
		t.Fatal("parseProperties() error:", err)
	}
	want := []overlay.PropertyBatch{
		{
			Source:       f.name,
			FileVersion:  1,
			Key:          overlay.PropertyKey{FileID: "Speed", ColumnID: "Forward", Author: "wiki"},
			InheritsFrom: &overlay.PropertyKey{FileID: "Speed", ColumnID: "Base", Author: "wiki"},
			Descriptions: map[string]string{"en": "Forward speed in km/h"},
			Edits: []overlay.PropertyEdit{
				{Tank: "R04_T-34", Value: "54"},
				{Tank: "R04_T-34", Version: overlay.At(100), Value: "56"},
				{Tank: "A01_M4", Tombstone: true},
			},
		},
		{
			Source:       f.name,
			FileVersion:  1,
			Key:          overlay.PropertyKey{FileID: "Speed", ColumnID: "Reverse", Author: "wiki"},
			Descriptions: map[string]string{"en": "Speed in km/h"},
			Edits: []overlay.PropertyEdit{
				{Tank: "R04_T-34", Value: "20"},
				{Tank: "A01_M4", Tombstone: true},
			},
		},
	}
	if diff := cmp.Diff(want, got, cmpVersion); diff != "" {
		t.Errorf("parseProperties() mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePropertiesSingleColumn(t *testing.T) {
	f := file{name: "properties/armor.tanker.2.csv", kind: propertyFile, fileVersion: 2, fileID: "armor", author: "tanker"}
	data := "# inherits: armor@wiki\ntank,value\nR04_T-34,45\n"

	got, err := parseProperties(f, []byte(data))
	if err != nil {
		t.Fatal("parseProperties() error:", err)
	}
	want := []overlay.PropertyBatch{{
		Source:       f.name,
		FileVersion:  2,
		Key:          overlay.PropertyKey{FileID: "armor", Author: "tanker"},
		InheritsFrom: &overlay.PropertyKey{FileID: "armor", Author: "wiki"},
		Descriptions: map[string]string{},
		Edits:        []overlay.PropertyEdit{{Tank: "R04_T-34", Value: "45"}},
	}}
	if diff := cmp.Diff(want, got, cmpVersion); diff != "" {
		t.Errorf("parseProperties() mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePropertiesErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{name: "NoValueColumn", data: "tank,version\nR04_T-34,1", line: 1},
		{name: "NoTankColumn", data: "# description en: x\nname,value\nR04_T-34,1", line: 2},
		{name: "TombstoneWithValue", data: "tank,tombstone,value\nR04_T-34,,1\nR04_T-34,true,2", line: 3},
		{name: "UnknownDirectiveColumn", data: "# inherits Reverse: Speed/Base\ntank,Forward\nR04_T-34,1", line: 2},
		{name: "MalformedInherits", data: "# inherits a b: Speed/Base\ntank,value", line: 1},
		{name: "MalformedDescription", data: "# description: text\ntank,value", line: 1},
		{name: "EmptyInherits", data: "# inherits:\ntank,value", line: 1},
		{name: "BadInheritsKey", data: "# description en: x\n# inherits: Speed/@wiki\ntank,value\nR04_T-34,1", line: 2},
		{name: "BadColumnInheritsKey", data: "# inherits Forward: @wiki\ntank,Forward,Reverse\nR04_T-34,1,2", line: 1},
		{name: "RowAfterDirectives", data: "# description en: x\n# description de: y\ntank,value\nR04_T-34,1,2", line: 4},
	}
	f := file{name: "properties/Speed.wiki.1.csv", kind: propertyFile, fileVersion: 1, fileID: "Speed", author: "wiki"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProperties(f, []byte(tt.data))
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("parseProperties() error = %v, want a *SyntaxError", err)
			}
			if serr.Line != tt.line {
				t.Errorf("SyntaxError at line %d, want %d (%v)", serr.Line, tt.line, err)
			}
		})
	}
}
