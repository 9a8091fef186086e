package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/go-overlay/go-overlay"
	"gopkg.in/yaml.v3"
)

// GameAuthor is the author of the properties synthesised from live game data.
const GameAuthor = "game"

// gameDataDoc is the YAML form of the live game data.
type gameDataDoc struct {
	Tanks      []gameTank              `yaml:"tanks"`
	Properties map[string]gameProperty `yaml:"properties"`
}

type gameTank struct {
	Key        string            `yaml:"key"`
	Country    string            `yaml:"country"`
	Tier       int               `yaml:"tier"`
	Class      string            `yaml:"class"`
	Category   string            `yaml:"category"`
	Image      string            `yaml:"image"`
	Properties map[string]string `yaml:"properties"`
}

type gameProperty struct {
	Descriptions map[string]string `yaml:"descriptions"`
}

// parseGameData translates the live game data into synthetic edits of file
// version 0: an unversioned classification edit per tank and one property per
// name used in the tanks' properties maps.
func parseGameData(name string, data []byte) (overlay.ClassificationBatch, []overlay.PropertyBatch, error) {
	cb := overlay.ClassificationBatch{Source: name, FileVersion: 0}

	var doc gameDataDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return cb, nil, &SyntaxError{File: name, Err: fmt.Errorf("decode yaml: %w", err)}
	}

	props := make(map[string]*overlay.PropertyBatch)
	for i, t := range doc.Tanks {
		if t.Key == "" {
			return cb, nil, &SyntaxError{File: name, Err: fmt.Errorf("tank #%d has no key", i+1)}
		}
		e := overlay.ClassificationEdit{Tank: t.Key}
		if t.Country != "" {
			e.Country = overlay.Ptr(t.Country)
		}
		if t.Tier != 0 {
			e.Tier = overlay.Ptr(t.Tier)
		}
		if t.Class != "" {
			c, err := overlay.ParseTankClass(t.Class)
			if err != nil {
				return cb, nil, &SyntaxError{File: name, Err: fmt.Errorf("tank %s: %w", t.Key, err)}
			}
			e.Class = &c
		}
		if t.Category != "" {
			c, err := overlay.ParseCategory(t.Category)
			if err != nil {
				return cb, nil, &SyntaxError{File: name, Err: fmt.Errorf("tank %s: %w", t.Key, err)}
			}
			e.Category = &c
		}
		if t.Image != "" {
			e.ImageName = overlay.Ptr(t.Image)
		}
		cb.Edits = append(cb.Edits, e)

		for _, prop := range slices.Sorted(maps.Keys(t.Properties)) {
			b, ok := props[prop]
			if !ok {
				b = &overlay.PropertyBatch{
					Source:       name,
					FileVersion:  0,
					Key:          overlay.PropertyKey{FileID: prop, Author: GameAuthor},
					Descriptions: doc.Properties[prop].Descriptions,
				}
				props[prop] = b
			}
			b.Edits = append(b.Edits, overlay.PropertyEdit{Tank: t.Key, Value: t.Properties[prop]})
		}
	}

	pbs := make([]overlay.PropertyBatch, 0, len(props))
	for _, prop := range slices.Sorted(maps.Keys(props)) {
		pbs = append(pbs, *props[prop])
	}
	return cb, pbs, nil
}
