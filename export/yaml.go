// Package export writes debug exports of resolved snapshots.
//
// The exports are one-way dumps meant for humans and diffing tools; nothing
// reads them back into the engine.
package export

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/go-overlay/go-overlay"
	"gopkg.in/yaml.v3"
)

// Document is the YAML form of a snapshot.
type Document struct {
	Version    int        `yaml:"version"`
	Hash       string     `yaml:"hash"`
	Tanks      []Tank     `yaml:"tanks"`
	Properties []Property `yaml:"properties,omitempty"`
	Warnings   []string   `yaml:"warnings,omitempty"`
}

// Tank is the YAML form of a resolved tank.
type Tank struct {
	Key        string            `yaml:"key"`
	Country    string            `yaml:"country"`
	Tier       int               `yaml:"tier"`
	Class      string            `yaml:"class"`
	Category   string            `yaml:"category"`
	Image      string            `yaml:"image"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// Property is the YAML form of an entry of the property registry.
type Property struct {
	Key          string            `yaml:"key"`
	InheritsFrom string            `yaml:"inheritsFrom,omitempty"`
	Descriptions map[string]string `yaml:"descriptions,omitempty"`
}

// NewDocument converts a snapshot to its YAML form. Tanks and properties keep
// the snapshot's order; yaml.v3 sorts map keys, so the output is stable.
func NewDocument(s *overlay.Snapshot) Document {
	hash, _ := s.Hash().MarshalText()
	doc := Document{Version: s.Version(), Hash: string(hash)}
	for _, t := range s.Tanks() {
		x := Tank{
			Key:      t.Key,
			Country:  t.Country,
			Tier:     t.Tier,
			Class:    string(t.Class),
			Category: string(t.Category),
			Image:    t.ImageName,
		}
		if len(t.Properties) > 0 {
			x.Properties = make(map[string]string, len(t.Properties))
			for k, v := range t.Properties {
				x.Properties[k.String()] = v
			}
		}
		doc.Tanks = append(doc.Tanks, x)
	}
	for _, p := range s.Properties() {
		x := Property{Key: p.Key.String(), Descriptions: p.Descriptions}
		if p.InheritsFrom != nil {
			x.InheritsFrom = p.InheritsFrom.String()
		}
		doc.Properties = append(doc.Properties, x)
	}
	for _, w := range s.Warnings() {
		doc.Warnings = append(doc.Warnings, w.String())
	}
	return doc
}

// WriteYAML writes the YAML form of s to w.
func WriteYAML(w io.Writer, s *overlay.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(s)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}
	return nil
}

// WriteText writes a compact, line-oriented rendering of s to w: one line per
// tank followed by its properties, then the warnings.
func WriteText(w io.Writer, s *overlay.Snapshot) error {
	doc := NewDocument(s)
	if _, err := fmt.Fprintf(w, "snapshot at game version #%d (%s)\n", doc.Version, s.Hash()); err != nil {
		return err
	}
	for _, t := range doc.Tanks {
		if _, err := fmt.Fprintf(w, "%s\t%s\ttier %d\t%s\t%s\t%s\n", t.Key, t.Country, t.Tier, t.Class, t.Category, t.Image); err != nil {
			return err
		}
		for _, k := range slices.Sorted(maps.Keys(t.Properties)) {
			if _, err := fmt.Fprintf(w, "\t%s = %s\n", k, t.Properties[k]); err != nil {
				return err
			}
		}
	}
	for _, warning := range doc.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}
