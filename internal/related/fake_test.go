package related

import (
	"context"
	"sync"
	"time"

	"tourism-backend/internal/store"
)

type findCall struct {
	collection string
	filter     RelationFilter
	limit      int
}

// fakeDatastore serves canned samples and rows and records every call.
type fakeDatastore struct {
	mu sync.Mutex

	samples   map[string]Record
	sampleErr map[string]error
	rows      map[string][]Record
	findErr   map[string]error
	hang      map[string]bool          // FindRelated blocks until ctx is done
	slow      map[string]time.Duration // SampleRow waits this long unless ctx ends first

	sampleCalls map[string]int
	finds       []findCall
}

func newFakeDatastore() *fakeDatastore {
	return &fakeDatastore{
		samples:     map[string]Record{},
		sampleErr:   map[string]error{},
		rows:        map[string][]Record{},
		findErr:     map[string]error{},
		hang:        map[string]bool{},
		slow:        map[string]time.Duration{},
		sampleCalls: map[string]int{},
	}
}

func (f *fakeDatastore) SampleRow(ctx context.Context, collection string) (Record, error) {
	f.mu.Lock()
	f.sampleCalls[collection]++
	delay := f.slow[collection]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sampleErr[collection]; err != nil {
		return nil, err
	}
	row, ok := f.samples[collection]
	if !ok {
		return nil, store.ErrNotFound
	}
	return row, nil
}

func (f *fakeDatastore) FindRelated(ctx context.Context, collection string, filter RelationFilter, _ CollectionCapability, limit int) ([]Record, error) {
	f.mu.Lock()
	f.finds = append(f.finds, findCall{collection: collection, filter: filter, limit: limit})
	hang := f.hang[collection]
	err := f.findErr[collection]
	rows := f.rows[collection]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *fakeDatastore) findCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.finds)
}

func (f *fakeDatastore) findsFor(collection string) []findCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []findCall
	for _, c := range f.finds {
		if c.collection == collection {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDatastore) samplesOf(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sampleCalls[collection]
}
