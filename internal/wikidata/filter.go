package wikidata

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Stats accumulates the end-of-run counters for one filter pass.
type Stats struct {
	TotalEntities int64
	Geographic    int64
	Person        int64
	Organization  int64
	ParseErrors   int64
}

// Sinks bundles the three per-kind output destinations. A nil sink for a
// given kind drops matching entities instead of writing them.
type Sinks struct {
	Geographic   *sink
	Person       *sink
	Organization *sink
}

// Options controls filter behavior.
type Options struct {
	// ProgressEvery logs a progress line every N entities scanned (0
	// disables progress logging).
	ProgressEvery int64
	// ChannelCapacity bounds the parser/writer handoff channel.
	ChannelCapacity int
}

// Filter performs the single-pass classification of a Wikidata JSON dump
// into the three output streams.
type Filter struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a Filter. A nil logger discards log output.
func New(opts Options, logger *slog.Logger) *Filter {
	if opts.ChannelCapacity <= 0 {
		opts.ChannelCapacity = 4
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Filter{opts: opts, logger: logger}
}

// Run scans r line by line (one JSON entity object per line, with the dump's
// enclosing "[" / "]" / trailing commas already stripped by the caller's
// reader), classifies each entity, and routes it to the matching sink. A
// parser goroutine and a writer goroutine overlap across a bounded channel
// so sink I/O never blocks JSON decoding.
func (f *Filter) Run(ctx context.Context, r *bufio.Reader, sinks Sinks) (Stats, error) {
	var stats Stats

	records := make(chan record, f.opts.ChannelCapacity)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(records)
		return f.parse(ctx, r, records, &stats)
	})

	g.Go(func() error {
		return f.write(ctx, records, sinks, &stats)
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (f *Filter) parse(ctx context.Context, r *bufio.Reader, out chan<- record, stats *Stats) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.ReadString('\n')
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, ","))
		if trimmed == "" || trimmed == "[" || trimmed == "]" {
			if err != nil {
				break
			}
			continue
		}

		var e rawEntity
		if jsonErr := json.Unmarshal([]byte(trimmed), &e); jsonErr != nil {
			stats.ParseErrors++
			if err != nil {
				break
			}
			continue
		}

		stats.TotalEntities++
		if f.opts.ProgressEvery > 0 && stats.TotalEntities%f.opts.ProgressEvery == 0 {
			f.logger.Info("wikidata filter progress", "entities", stats.TotalEntities)
		}

		rec := classifyEntity(e)
		if rec.kind != kindNone {
			select {
			case out <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err != nil {
			break
		}
	}
	return nil
}

func (f *Filter) write(ctx context.Context, in <-chan record, sinks Sinks, stats *Stats) error {
	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return nil
			}
			if err := f.dispatch(rec, sinks, stats); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Filter) dispatch(rec record, sinks Sinks, stats *Stats) error {
	switch rec.kind {
	case kindGeographic:
		stats.Geographic++
		if sinks.Geographic != nil {
			return sinks.Geographic.write(rec.place)
		}
	case kindPerson:
		stats.Person++
		if sinks.Person != nil {
			return sinks.Person.write(rec.person)
		}
	case kindOrganization:
		stats.Organization++
		if sinks.Organization != nil {
			return sinks.Organization.write(rec.org)
		}
	}
	return nil
}
