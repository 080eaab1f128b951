package related

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tourism-backend/internal/instrument"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Options tunes a Resolver. Zero values fall back to the package defaults;
// a zero LookupTimeout means lookups are bounded only by the caller's context.
type Options struct {
	DefaultLimit  int
	MaxLimit      int
	LookupTimeout time.Duration
	Strategies    []MatchStrategy
}

// Source identifies the record whose related content is being resolved.
type Source struct {
	Collection string
	ID         string
	Slug       string
	Fields     SourceMatchFields
}

func (s Source) excludeKeys() []string {
	var keys []string
	for _, k := range []string{s.ID, s.Slug} {
		if k != "" && !containsString(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Resolver fans lookups out to every target collection and gathers the
// results into a Bundle.
type Resolver struct {
	ds     Datastore
	prober *Prober
	opts   Options
	log    *zap.Logger
}

func NewResolver(ds Datastore, prober *Prober, opts Options, log *zap.Logger) *Resolver {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	if len(opts.Strategies) == 0 {
		opts.Strategies = DefaultStrategies()
	}
	return &Resolver{ds: ds, prober: prober, opts: opts, log: log}
}

// Prober returns the capability prober shared by all lookups.
func (r *Resolver) Prober() *Prober { return r.prober }

// Limit clamps a requested limit to the configured bounds.
func (r *Resolver) Limit(n int) int {
	switch {
	case n <= 0:
		return r.opts.DefaultLimit
	case n > r.opts.MaxLimit:
		return r.opts.MaxLimit
	default:
		return n
	}
}

type lookupResult struct {
	records []Record
	err     error
}

// Resolve looks up related records in every target concurrently. A failed
// lookup yields an empty list and a Warning, never an error. The error is
// non-nil only when ctx ends before all lookups settle; the bundle is then
// all-empty.
func (r *Resolver) Resolve(ctx context.Context, src Source, targets []string, limit int) (*Bundle, []Warning, error) {
	bundle := NewBundle(targets)
	keys := bundle.Keys()
	limit = r.Limit(limit)

	if err := ctx.Err(); err != nil {
		return bundle, nil, err
	}

	ctx, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "related", "resolver", "resolve")
	defer span.End()
	span.SetEntity(src.Collection, src.ID)
	span.SetMetadata("targets", len(keys))

	results := make([]lookupResult, len(keys))
	var wg sync.WaitGroup
	for i, target := range keys {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			results[i] = r.lookup(ctx, src, target, limit)
		}(i, target)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		span.SetStatus("cancelled")
		r.log.Warn("related resolution cancelled",
			zap.String("collection", src.Collection), zap.String("id", src.ID), zap.Error(ctx.Err()))
		return NewBundle(keys), nil, ctx.Err()
	}

	var warnings []Warning
	for i, target := range keys {
		res := results[i]
		if res.err != nil {
			warnings = append(warnings, Warning{Collection: target, Err: res.err})
			continue
		}
		bundle.set(target, res.records)
	}
	if len(warnings) > 0 {
		span.SetStatus("degraded")
	}
	span.SetMetadata("records", bundle.Total())
	return bundle, warnings, nil
}

func (r *Resolver) lookup(ctx context.Context, src Source, target string, limit int) lookupResult {
	if r.opts.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.LookupTimeout)
		defer cancel()
	}

	ctx, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "related", "resolver", "lookup")
	defer span.End()
	span.SetEntity(target, "")

	capability, err := r.prober.Probe(ctx, target)
	if err != nil {
		return r.failed(span, src, target, "", err)
	}
	filter, ok := BuildFilter(r.opts.Strategies, src.Fields, capability, src.excludeKeys()...)
	if !ok {
		span.SetStatus("skipped")
		instrument.RelatedLookups.WithLabelValues(target, "skipped").Inc()
		return lookupResult{}
	}
	span.SetMetadata("strategy", filter.Strategy)

	records, err := r.ds.FindRelated(ctx, target, filter, capability, limit)
	if err != nil {
		return r.failed(span, src, target, filter.Strategy, err)
	}

	instrument.RelatedLookups.WithLabelValues(target, "ok").Inc()
	return lookupResult{records: withoutSource(records, filter.ExcludeKeys, limit)}
}

func (r *Resolver) failed(span instrument.Span, src Source, target, strategy string, err error) lookupResult {
	outcome := "failed"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		outcome = "cancelled"
	}
	span.SetStatus(outcome)
	instrument.RelatedLookups.WithLabelValues(target, outcome).Inc()
	r.log.Warn("related lookup failed",
		zap.String("source", src.Collection),
		zap.String("target", target),
		zap.String("strategy", strategy),
		zap.Error(err))
	return lookupResult{err: fmt.Errorf("lookup %s: %w", target, err)}
}

// withoutSource drops rows whose id or slug equals an excluded key and caps
// the result at limit.
func withoutSource(records []Record, exclude []string, limit int) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if matchesKey(rec[FieldID], exclude) || matchesKey(rec[FieldSlug], exclude) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}

func matchesKey(v any, keys []string) bool {
	if v == nil {
		return false
	}
	return containsString(keys, fmt.Sprint(v))
}
