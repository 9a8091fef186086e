package source

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"

	"github.com/go-overlay/go-overlay"
)

// newBucket returns an in-memory bucket holding the given files.
func newBucket(t *testing.T, files map[string]string) *blob.Bucket {
	t.Helper()
	ctx := context.Background()
	b := memblob.OpenBucket(nil)
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Error("Failed to close bucket:", err)
		}
	})
	for key, data := range files {
		if err := b.WriteAll(ctx, key, []byte(data), nil); err != nil {
			t.Fatalf("WriteAll(%q) error: %v", key, err)
		}
	}
	return b
}

var testFiles = map[string]string{
	"gamedata.yaml": gameDataYAML,
	"tanks.2.csv":   "tank,version,tombstone,tier\nR04_T-34,50,,6\n",
	"tanks.1.csv":   "tank,version,tombstone\nR04_T-34,100,true\n",
	"README.md":     "# tank data\n",
	"properties/speed.game.1.csv": "tank,value\n" +
		"G04_PzVI_Tiger_I,45\n",
	"properties/Forward.wiki.1.csv": "# inherits: speed@game\n# description en: Forward speed\n" +
		"tank,version,value\n" +
		"R04_T-34,60,55\n",
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	for _, concurrency := range []int{0, 1, 3} {
		l := &Loader{Bucket: newBucket(t, testFiles), Concurrency: concurrency}
		in, err := l.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}

		var sources []string
		for _, b := range in.Classifications {
			sources = append(sources, b.Source)
		}
		for _, b := range in.Properties {
			sources = append(sources, b.Source+" "+b.Key.String())
		}
		want := []string{
			"gamedata.yaml",
			"tanks.1.csv",
			"tanks.2.csv",
			"gamedata.yaml hp@game",
			"gamedata.yaml speed@game",
			"properties/Forward.wiki.1.csv Forward@wiki",
			"properties/speed.game.1.csv speed@game",
		}
		if diff := cmp.Diff(want, sources); diff != "" {
			t.Errorf("Concurrency %d: batches mismatch (-want +got):\n%s", concurrency, diff)
		}
	}
}

func TestLoadResolve(t *testing.T) {
	ctx := context.Background()
	l := &Loader{Bucket: newBucket(t, testFiles)}
	in, err := l.Load(ctx)
	if err != nil {
		t.Fatal("Load() error:", err)
	}

	forward := overlay.PropertyKey{FileID: "forward", Author: "wiki"}
	tests := []struct {
		target  int
		tier    int
		exists  bool
		forward string
	}{
		{target: 10, tier: 5, exists: true, forward: "54"},
		{target: 75, tier: 6, exists: true, forward: "55"},
		{target: 150, exists: false},
	}
	for _, tt := range tests {
		s := overlay.Resolve(ctx, in, tt.target)
		tank, ok := s.Tank("R04_T-34")
		if ok != tt.exists {
			t.Errorf("Resolve(#%d): R04_T-34 exists = %t, want %t", tt.target, ok, tt.exists)
			continue
		}
		if !ok {
			continue
		}
		if tank.Tier != tt.tier {
			t.Errorf("Resolve(#%d): R04_T-34 tier = %d, want %d", tt.target, tank.Tier, tt.tier)
		}
		if got, _ := tank.Property(forward); got != tt.forward {
			t.Errorf("Resolve(#%d): R04_T-34 %v = %q, want %q", tt.target, forward, got, tt.forward)
		}

		tiger, _ := s.Tank("G04_PzVI_Tiger_I")
		if got, _ := tiger.Property(forward); got != "45" {
			t.Errorf("Resolve(#%d): Tiger %v = %q, want 45", tt.target, forward, got)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		data string
	}{
		{name: "ReservedFileVersion", key: "tanks.0.csv", data: "tank\nA\n"},
		{name: "MalformedPropertyName", key: "properties/speed.csv", data: "tank,value\nA,1\n"},
		{name: "MalformedClassification", key: "tanks.1.csv", data: "tank,tier\nA,five\n"},
		{name: "MalformedGameData", key: "gamedata.yaml", data: "tanks: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loader{Bucket: newBucket(t, map[string]string{tt.key: tt.data})}
			_, err := l.Load(context.Background())
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("Load() error = %v, want a *SyntaxError", err)
			}
			if serr.File != tt.key {
				t.Errorf("SyntaxError.File = %q, want %q", serr.File, tt.key)
			}
		})
	}
}
