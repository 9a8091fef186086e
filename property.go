package overlay

import (
	"cmp"
	"errors"
	"strings"
)

// PropertyKey identifies a named property: the file that defines it, the column
// within that file, and the author of that file.
//
// An empty ColumnID denotes the sole column of the file. Two keys are equal iff
// all three parts match, FileID and Author compared case-insensitively; use
// Equal rather than ==.
type PropertyKey struct {
	FileID   string
	ColumnID string
	Author   string
}

// Equal reports whether k and o identify the same property.
func (k PropertyKey) Equal(o PropertyKey) bool {
	return k.canonical() == o.canonical()
}

// String formats k as "FileID[/ColumnID]@Author"; ParsePropertyKey reverses it.
func (k PropertyKey) String() string {
	var b strings.Builder
	b.WriteString(k.FileID)
	if k.ColumnID != "" {
		b.WriteByte('/')
		b.WriteString(k.ColumnID)
	}
	b.WriteByte('@')
	b.WriteString(k.Author)
	return b.String()
}

// canonicalKey is the case-folded form of a PropertyKey. It is used to index
// properties and to order them deterministically.
type canonicalKey struct {
	file, column, author string
}

func (k PropertyKey) canonical() canonicalKey {
	return canonicalKey{
		file:   strings.ToLower(k.FileID),
		column: k.ColumnID,
		author: strings.ToLower(k.Author),
	}
}

// compare orders canonical keys by file, then column, then author.
func (k canonicalKey) compare(o canonicalKey) int {
	return cmp.Or(
		cmp.Compare(k.file, o.file),
		cmp.Compare(k.column, o.column),
		cmp.Compare(k.author, o.author),
	)
}

// ParsePropertyKey parses "FileID[/ColumnID][@Author]". When the author part is
// omitted, defaultAuthor is used.
func ParsePropertyKey(s, defaultAuthor string) (PropertyKey, error) {
	s = strings.TrimSpace(s)
	var k PropertyKey
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s, k.Author = s[:i], s[i+1:]
	} else {
		k.Author = defaultAuthor
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s, k.ColumnID = s[:i], s[i+1:]
		if k.ColumnID == "" {
			return PropertyKey{}, errors.New("empty column id")
		}
	}
	k.FileID = s
	if k.FileID == "" {
		return PropertyKey{}, errors.New("empty file id")
	}
	if k.Author == "" {
		return PropertyKey{}, errors.New("empty author")
	}
	return k, nil
}

// A PropertyEdit sets (or, when Tombstone is true, retracts) the value of a
// single property for one tank from its effective Version onward.
type PropertyEdit struct {
	Tank      string
	Version   Version
	Tombstone bool
	Value     string
}

func (e PropertyEdit) tank() string      { return e.Tank }
func (e PropertyEdit) version() Version  { return e.Version }
func (e PropertyEdit) tombstone() bool   { return e.Tombstone }
func (e PropertyEdit) String() string    { return describeEdit(e.Tank, e.Version, e.Tombstone) }
func (PropertyEdit) replacesOnSet() bool { return true }

// A PropertyBatch holds the edits one source file makes to one property.
//
// Descriptions maps language codes to human-readable text. InheritsFrom, when
// not nil, names the property whose values fill in for tanks this property
// leaves unset.
type PropertyBatch struct {
	Source       string
	FileVersion  int
	Key          PropertyKey
	InheritsFrom *PropertyKey
	Descriptions map[string]string
	Edits        []PropertyEdit
}
