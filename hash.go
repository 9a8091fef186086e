package overlay

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"maps"
	"slices"
	"strconv"
)

// SnapshotHash is a content address over the resolved tanks and the property
// registry of a Snapshot. Two snapshots with the same hash describe the same
// data, irrespective of the game version they were resolved at or the warnings
// recorded along the way.
//
// The hash is stable across processes: map contents are digested in sorted
// order and every string is length-prefixed.
type SnapshotHash [sha1.Size]byte

func (h SnapshotHash) MarshalText() ([]byte, error) {
	text := make([]byte, hex.EncodedLen(len(h)))
	hex.Encode(text, h[:])
	return text, nil
}

func (h *SnapshotHash) UnmarshalText(text []byte) error {
	n, err := hex.Decode(h[:], text)
	if err != nil {
		return fmt.Errorf("decode hex: %w", err)
	}
	if n != len(h) {
		return fmt.Errorf("not enough bytes: %w", io.ErrUnexpectedEOF)
	}
	return nil
}

func (h SnapshotHash) String() string { return "snapshot(" + hex.EncodeToString(h[:]) + ")" }

// IsZero reports whether h is the zero value of the type.
func (h SnapshotHash) IsZero() bool { return h == SnapshotHash{} }

func hashSnapshot(s *Snapshot) SnapshotHash {
	d := digest{sha1.New()}
	d.uvarint(uint64(len(s.keys)))
	for _, key := range s.keys {
		t := s.tanks[key]
		d.strings(t.Key, t.Country, strconv.Itoa(t.Tier), string(t.Class), string(t.Category), t.ImageName)

		props := slices.SortedFunc(maps.Keys(t.Properties), func(a, b PropertyKey) int {
			return compareCanonical(a, b)
		})
		d.uvarint(uint64(len(props)))
		for _, k := range props {
			d.strings(k.String(), t.Properties[k])
		}
	}

	d.uvarint(uint64(len(s.properties)))
	for _, p := range s.properties {
		d.strings(p.Key.String())
		if p.InheritsFrom != nil {
			d.strings(p.InheritsFrom.String())
		} else {
			d.strings("")
		}
		langs := slices.Sorted(maps.Keys(p.Descriptions))
		d.uvarint(uint64(len(langs)))
		for _, lang := range langs {
			d.strings(lang, p.Descriptions[lang])
		}
	}
	return SnapshotHash(d.Sum(nil))
}

func compareCanonical(a, b PropertyKey) int {
	return a.canonical().compare(b.canonical())
}

// digest writes length-prefixed values into a hash, so that adjacent values
// cannot collide ("ab"+"c" versus "a"+"bc").
type digest struct {
	hash.Hash
}

func (d digest) uvarint(n uint64) {
	buf := make([]byte, binary.MaxVarintLen64)
	d.Write(buf[:binary.PutUvarint(buf, n)])
}

func (d digest) strings(values ...string) {
	for _, v := range values {
		d.uvarint(uint64(len(v)))
		d.Write([]byte(v))
	}
}
