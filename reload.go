package overlay

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielorbach/go-component"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gocloud.dev/pubsub"
)

// A Loader produces the raw edit batches of one load. Implementations read and
// parse data files; they must surface malformed files as errors rather than
// passing them on.
type Loader interface {
	Load(ctx context.Context) (Input, error)
}

// Current holds the latest resolved Snapshot of a long-running process.
//
// The zero value holds no snapshot and is ready to use. Current is safe for
// concurrent use; the snapshots it hands out are immutable.
type Current struct {
	mu sync.RWMutex
	s  *Snapshot
}

// Load returns the latest snapshot, or nil if none was stored yet.
func (c *Current) Load() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s
}

// Store replaces the latest snapshot and returns the one it replaced.
func (c *Current) Store(s *Snapshot) (previous *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, c.s = c.s, s
	return previous
}

// Find looks up a tank in the latest snapshot. If no snapshot was stored yet, or
// the tank does not exist in it, Find indicates that by returning ok == false.
func (c *Current) Find(tank string) (t Tank, ok bool) {
	s := c.Load()
	if s == nil {
		return Tank{}, false
	}
	return s.Tank(tank)
}

// SnapshotResolved notifies that a reload produced a snapshot whose content
// differs from the previous one.
type SnapshotResolved struct {
	Version  int
	Hash     SnapshotHash
	Tanks    int
	Warnings []string
	// The time, in UTC, the snapshot was resolved.
	Timestamp time.Time
}

type reloader struct {
	loader  Loader
	target  int
	source  *pubsub.Subscription
	sink    *pubsub.Topic
	current *Current
}

// NewReloader returns a [component.Procedure] that keeps current up to date.
//
// It resolves the data produced by loader at the target game version once on
// start, and again every time a message arrives on source (the content of the
// message is ignored; it only signals that data files changed). Whenever the
// resolved content differs from the previous snapshot, it publishes a
// gob-encoded SnapshotResolved to sink.
//
// A failed reload is logged and counted; current keeps the previous snapshot.
func NewReloader(loader Loader, target int, source *pubsub.Subscription, sink *pubsub.Topic, current *Current) component.Procedure {
	return reloader{
		loader:  loader,
		target:  target,
		source:  source,
		sink:    sink,
		current: current,
	}
}

func (r reloader) Exec(l *component.L) {
	logger := component.Logger(l.Context())
	r.reloadLogged(l.GraceContext(), logger)
	for l.Continue() {
		msg, err := r.source.Receive(l.GraceContext())
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return
			}
			l.Fatal(fmt.Errorf("receive: %w", err))
		}
		// Notices carry no data: acknowledging before reloading lets bursts of notices
		// collapse into the reloads that follow.
		msg.Ack()
		r.reloadLogged(l.GraceContext(), logger)
	}
}

func (r reloader) reloadLogged(ctx context.Context, logger *slog.Logger) {
	if err := r.reload(ctx, logger); err != nil {
		logger.Error("Couldn't reload snapshot; keeping the previous one", slog.Any("error", err))
		reloadFailures.Add(ctx, 1)
	}
}

// reload loads and resolves a fresh snapshot, stores it, and notifies sink if
// the content changed.
func (r reloader) reload(ctx context.Context, logger *slog.Logger) (err error) {
	ctx, span := tracer.Start(ctx, "reloader.reload", trace.WithAttributes(
		attribute.Int("game.version", r.target),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	logger.Debug("Loading data files...")
	in, err := r.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	s := Resolve(ctx, in, r.target)
	previous := r.current.Store(s)
	if previous != nil && previous.Hash() == s.Hash() {
		logger.Info("Reloaded snapshot is unchanged, notification skipped", slog.Any("hash", s.Hash()))
		return nil
	}

	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(SnapshotResolved{
		Version:   s.Version(),
		Hash:      s.Hash(),
		Tanks:     s.Len(),
		Warnings:  warningStrings(s.warnings),
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}

	logger.Debug("Sending SnapshotResolved message...")
	msg := &pubsub.Message{Body: b.Bytes(), Metadata: map[string]string{"snapshotHash": s.Hash().String()}}
	if err := r.sink.Send(ctx, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	logger.Info("Published reloaded snapshot", slog.Any("hash", s.Hash()), slog.Int("tanks", s.Len()))
	return nil
}

func warningStrings(ws []Warning) []string {
	s := make([]string, len(ws))
	for i, w := range ws {
		s[i] = w.String()
	}
	return s
}
