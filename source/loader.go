package source

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/danielorbach/go-component"
	"github.com/go-overlay/go-overlay"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files a Loader reads in parallel unless
// told otherwise.
const DefaultConcurrency = 8

// A Loader reads the data files of a bucket and turns them into edit batches
// for the overlay engine. It implements [overlay.Loader].
type Loader struct {
	Bucket *blob.Bucket
	// Concurrency limits the number of files read in parallel. Zero means
	// DefaultConcurrency.
	Concurrency int
}

var _ overlay.Loader = (*Loader)(nil)

// Open opens the bucket at the given URL (e.g. "file:///srv/tankdata") and
// returns a Loader reading from it. The caller must Close the Loader.
//
// Callers link the blob drivers they need, e.g. with a blank import of
// gocloud.dev/blob/fileblob.
func Open(ctx context.Context, url string) (*Loader, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return &Loader{Bucket: b}, nil
}

// Close closes the underlying bucket.
func (l *Loader) Close() error { return l.Bucket.Close() }

// parsed holds the batches parsed from a single file.
type parsed struct {
	classification *overlay.ClassificationBatch
	properties     []overlay.PropertyBatch
}

// Load enumerates the data files of the bucket, reads and parses them
// concurrently, and returns their batches in a deterministic order: by file
// version, then by file name. It fails on the first malformed file.
func (l *Loader) Load(ctx context.Context) (in overlay.Input, err error) {
	ctx, span := tracer.Start(ctx, "source.Load")
	defer span.End()
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	logger := component.Logger(ctx)

	files, err := l.list(ctx)
	if err != nil {
		return in, err
	}
	span.AddEvent("listed", trace.WithAttributes(attribute.Int("files", len(files))))
	logger.Debug("Listed data files", slog.Int("files", len(files)))

	results := make([]parsed, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cmp.Or(l.Concurrency, DefaultConcurrency))
	for i, f := range files {
		g.Go(func() error {
			p, err := l.read(ctx, f)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return in, err
	}

	for _, p := range results {
		if p.classification != nil {
			in.Classifications = append(in.Classifications, *p.classification)
		}
		in.Properties = append(in.Properties, p.properties...)
	}
	logger.Info("Loaded data files",
		slog.Int("files", len(files)),
		slog.Int("classification-batches", len(in.Classifications)),
		slog.Int("property-batches", len(in.Properties)),
	)
	return in, nil
}

// list returns the recognised data files of the bucket, sorted by file version
// and then by name.
func (l *Loader) list(ctx context.Context) ([]file, error) {
	var files []file
	it := l.Bucket.List(nil)
	for {
		obj, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list bucket: %w", err)
		}
		if obj.IsDir {
			continue
		}
		f, err := classify(obj.Key)
		if err != nil {
			return nil, &SyntaxError{File: obj.Key, Err: err}
		}
		if f.kind == ignoredFile {
			continue
		}
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b file) int {
		if c := cmp.Compare(a.fileVersion, b.fileVersion); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return files, nil
}

func (l *Loader) read(ctx context.Context, f file) (parsed, error) {
	data, err := l.Bucket.ReadAll(ctx, f.name)
	if err != nil {
		return parsed{}, fmt.Errorf("read %s: %w", f.name, err)
	}

	switch f.kind {
	case gameData:
		cb, pbs, err := parseGameData(f.name, data)
		if err != nil {
			return parsed{}, err
		}
		return parsed{classification: &cb, properties: pbs}, nil
	case classificationFile:
		cb, err := parseClassification(f, data)
		if err != nil {
			return parsed{}, err
		}
		return parsed{classification: &cb}, nil
	case propertyFile:
		pbs, err := parseProperties(f, data)
		if err != nil {
			return parsed{}, err
		}
		return parsed{properties: pbs}, nil
	}
	panic("source: unexpected file kind")
}
