package related

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tourism-backend/internal/instrument"
	"tourism-backend/internal/store"
)

// DefaultProbeTimeout bounds a shared sample read.
const DefaultProbeTimeout = 5 * time.Second

// Prober discovers CollectionCapability by sampling one row per collection and
// memoizes the answer for the life of the process. Concurrent first probes of
// the same collection share a single read. The shared read is detached from
// every caller's context and bounded by its own timeout; each caller stops
// waiting when its own context ends.
//
// Only probes that saw a row are memoized: an empty collection or a failed
// read reports "supports nothing" for this call and is sampled again next time.
type Prober struct {
	ds      Datastore
	log     *zap.Logger
	group   singleflight.Group
	timeout time.Duration

	mu   sync.RWMutex
	memo map[string]CollectionCapability
}

func NewProber(ds Datastore, log *zap.Logger) *Prober {
	return &Prober{
		ds:      ds,
		log:     log,
		timeout: DefaultProbeTimeout,
		memo:    make(map[string]CollectionCapability),
	}
}

// WithReadTimeout sets the bound of a shared sample read. Zero or negative
// keeps the current value.
func (p *Prober) WithReadTimeout(d time.Duration) *Prober {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// Probe returns the capability of collection. An empty collection is not an
// error. A failed read, or ctx ending before the read settles, returns the
// zero capability together with the cause.
func (p *Prober) Probe(ctx context.Context, collection string) (CollectionCapability, error) {
	if c, ok := p.cached(collection); ok {
		instrument.CapabilityProbes.WithLabelValues(collection, "hit").Inc()
		return c, nil
	}

	ch := p.group.DoChan(collection, func() (any, error) {
		return p.sample(context.WithoutCancel(ctx), collection)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return CollectionCapability{}, res.Err
		}
		return res.Val.(CollectionCapability), nil
	case <-ctx.Done():
		return CollectionCapability{}, ctx.Err()
	}
}

func (p *Prober) sample(ctx context.Context, collection string) (CollectionCapability, error) {
	if c, ok := p.cached(collection); ok {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	row, err := p.ds.SampleRow(ctx, collection)
	switch {
	case err != nil && !errors.Is(err, store.ErrNotFound):
		instrument.CapabilityProbes.WithLabelValues(collection, "failed").Inc()
		p.log.Warn("capability probe failed", zap.String("collection", collection), zap.Error(err))
		return CollectionCapability{}, fmt.Errorf("probe %s: %w", collection, err)
	case err != nil || row == nil:
		instrument.CapabilityProbes.WithLabelValues(collection, "empty").Inc()
		p.log.Debug("capability probe found no rows", zap.String("collection", collection))
		return CollectionCapability{}, nil
	}

	c := capabilityFromRow(row)
	p.mu.Lock()
	p.memo[collection] = c
	p.mu.Unlock()
	instrument.CapabilityProbes.WithLabelValues(collection, "sampled").Inc()
	return c, nil
}

func (p *Prober) cached(collection string) (CollectionCapability, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.memo[collection]
	return c, ok
}

// Snapshot returns a copy of the memoized capabilities.
func (p *Prober) Snapshot() map[string]CollectionCapability {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]CollectionCapability, len(p.memo))
	for k, v := range p.memo {
		out[k] = v
	}
	return out
}

// Forget drops the memoized capability of one collection.
func (p *Prober) Forget(collection string) {
	p.mu.Lock()
	delete(p.memo, collection)
	p.mu.Unlock()
}

// Reset drops every memoized capability.
func (p *Prober) Reset() {
	p.mu.Lock()
	p.memo = make(map[string]CollectionCapability)
	p.mu.Unlock()
}
