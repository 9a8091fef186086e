package main

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/danielorbach/go-component"
	"github.com/spf13/cobra"
	"gocloud.dev/pubsub"

	"github.com/go-overlay/go-overlay"
	"github.com/go-overlay/go-overlay/source"
)

type watchOptions struct {
	interval time.Duration
	notices  string
	resolved string
}

func newWatchCmd(a *app) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Resolve the source whenever it changes and report new snapshots",
		Long: `watch resolves the source once, then again for every notice received on the
notices topic. With a positive --interval it also sends itself a notice at that
interval, for sources that cannot announce their changes. Every snapshot whose
content changed is published to the resolved topic and printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.watch(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	flags := cmd.Flags()
	flags.DurationVar(&opts.interval, "interval", time.Minute, "period of self-sent notices; 0 disables them")
	flags.StringVar(&opts.notices, "notices", "mem://overlay-notices", "URL of the topic announcing source changes")
	flags.StringVar(&opts.resolved, "resolved", "mem://overlay-resolved", "URL of the topic receiving resolved snapshots")
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer, opts *watchOptions) error {
	logger := component.Logger(ctx)

	loader, err := source.Open(ctx, a.config.Source)
	if err != nil {
		return err
	}
	defer loader.Close()

	// Topics are opened before their subscriptions; in-memory subscriptions
	// attach to an existing topic of the same name.
	noticeTopic, err := pubsub.OpenTopic(ctx, opts.notices)
	if err != nil {
		return fmt.Errorf("open topic %s: %w", opts.notices, err)
	}
	defer noticeTopic.Shutdown(context.Background())
	notices, err := pubsub.OpenSubscription(ctx, opts.notices)
	if err != nil {
		return fmt.Errorf("open subscription %s: %w", opts.notices, err)
	}
	defer notices.Shutdown(context.Background())

	resolvedTopic, err := pubsub.OpenTopic(ctx, opts.resolved)
	if err != nil {
		return fmt.Errorf("open topic %s: %w", opts.resolved, err)
	}
	defer resolvedTopic.Shutdown(context.Background())
	resolved, err := pubsub.OpenSubscription(ctx, opts.resolved)
	if err != nil {
		return fmt.Errorf("open subscription %s: %w", opts.resolved, err)
	}
	defer resolved.Shutdown(context.Background())

	current := new(overlay.Current)
	component.RunProc(func(l *component.L) {
		l.Fork("reloader", overlay.NewReloader(loader, a.config.Version, notices, resolvedTopic, current))
		if opts.interval > 0 {
			l.Go("ticker", func(l *component.L) {
				ticker := time.NewTicker(opts.interval)
				defer ticker.Stop()
				for l.Continue() {
					select {
					case <-ticker.C:
					case <-l.Context().Done():
						return
					}
					if err := noticeTopic.Send(l.GraceContext(), &pubsub.Message{}); err != nil {
						logger.Error("Failed to send notice", slog.Any("error", err))
					}
				}
			})
		}
		l.Go("printer", func(l *component.L) {
			for l.Continue() {
				msg, err := resolved.Receive(l.GraceContext())
				if err != nil {
					return
				}
				msg.Ack()
				var r overlay.SnapshotResolved
				if err := gob.NewDecoder(bytes.NewReader(msg.Body)).Decode(&r); err != nil {
					logger.Error("Dropped undecodable SnapshotResolved message", slog.Any("error", err))
					continue
				}
				_, err = fmt.Fprintf(out, "%s\tgame version #%d\t%d tanks\t%d warnings\t%s\n",
					r.Timestamp.Format(time.RFC3339), r.Version, r.Tanks, len(r.Warnings), r.Hash)
				if err != nil {
					logger.Error("Stopped printing resolved snapshots", slog.Any("error", err))
					return
				}
			}
		})
	}, component.WithContext(ctx))
	return nil
}
