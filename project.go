package overlay

import (
	"context"
	"strconv"
	"strings"
)

// Tank is the resolved classification of one tank at a game version, plus the
// values of the properties that resolved for it.
type Tank struct {
	Key       string
	Country   string
	Tier      int
	Class     TankClass
	Category  Category
	ImageName string
	// Properties maps each property resolved for the tank to its value. Keys are
	// spelled the way the property's earliest file spelled them.
	Properties map[PropertyKey]string
}

// Property returns the resolved value of the given property, matching keys the
// way PropertyKey.Equal does.
func (t Tank) Property(key PropertyKey) (string, bool) {
	if v, ok := t.Properties[key]; ok {
		return v, true
	}
	for k, v := range t.Properties {
		if k.Equal(key) {
			return v, true
		}
	}
	return "", false
}

// applicable returns the suffix of the timeline that composes the snapshot at
// target: the edits visible at target that follow the last visible tombstone.
// It returns an empty slice when nothing is visible or the latest visible edit is a
// tombstone, i.e. the subject does not exist at target.
//
// The timeline is ordered by effective version, so the visible edits form a
// prefix of it.
func applicable[E edit](timeline []E, target int) []E {
	n := 0
	for n < len(timeline) && timeline[n].version().AppliesAt(target) {
		n++
	}
	visible := timeline[:n]
	start := 0
	for i, e := range visible {
		if e.tombstone() {
			start = i + 1
		}
	}
	return visible[start:]
}

// ProjectClassification resolves the classification of a single tank at the
// target version. Each field independently takes the value of the last
// applicable edit that sets it; ImageName falls back to the tank key.
//
// It reports ok == false when the tank does not exist at target. A tank that
// exists but misses one of its required fields is reported in ws and excluded.
func ProjectClassification(ctx context.Context, tank string, timeline []ClassificationEdit, target int, ws *Warnings) (t Tank, ok bool) {
	edits := applicable(timeline, target)
	if len(edits) == 0 {
		return Tank{}, false
	}

	var (
		country, image *string
		tier           *int
		class          *TankClass
		category       *Category
	)
	for _, e := range edits {
		country = latest(country, e.Country)
		tier = latest(tier, e.Tier)
		class = latest(class, e.Class)
		category = latest(category, e.Category)
		image = latest(image, e.ImageName)
	}

	var missing []string
	if country == nil {
		missing = append(missing, "country")
	}
	if tier == nil {
		missing = append(missing, "tier")
	}
	if class == nil {
		missing = append(missing, "class")
	}
	if category == nil {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		ws.Add(ctx, Warning{
			Kind:    UnresolvableTank,
			Tank:    tank,
			Message: "missing " + strings.Join(missing, ", ") + " at game version #" + strconv.Itoa(target),
		})
		return Tank{}, false
	}

	t = Tank{
		Key:       tank,
		Country:   *country,
		Tier:      *tier,
		Class:     *class,
		Category:  *category,
		ImageName: tank,
	}
	if image != nil {
		t.ImageName = *image
	}
	return t, true
}

func latest[T any](current, next *T) *T {
	if next != nil {
		return next
	}
	return current
}

// ProjectProperty resolves the value of a property for one tank at the target
// version: the value of the last applicable edit. It reports ok == false when
// no edit applies or the last applicable edit retracts the value.
func ProjectProperty(timeline []PropertyEdit, target int) (value string, ok bool) {
	edits := applicable(timeline, target)
	if len(edits) == 0 {
		return "", false
	}
	return edits[len(edits)-1].Value, true
}
