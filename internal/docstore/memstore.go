package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-process Store used by tests and local runs. Watch
// callbacks fire synchronously after each mutation, which keeps tests
// deterministic; the callback contract is otherwise identical to the
// Mongo implementation.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string]*memCollection)}
}

func (s *MemStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		col = &memCollection{
			docs:     make(map[string]map[string]any),
			watchers: make(map[int]*memWatcher),
		}
		s.collections[name] = col
	}
	return col
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Close(context.Context) error { return nil }

type memWatcher struct {
	query      Query
	onSnapshot func([]Document)
	onError    func(error)
	ctx        context.Context

	mu   sync.Mutex
	done bool
}

// deliver windows and hands one snapshot to the callbacks. The
// per-watcher lock makes Unsubscribe a delivery barrier: it marks the
// watcher done under the same lock, so once Unsubscribe returns no
// further callback can start.
func (w *memWatcher) deliver(docs []Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}
	paged, err := window(docs, w.query)
	if err != nil {
		w.onError(err)
		return
	}
	w.onSnapshot(paged)
}

type memCollection struct {
	mu       sync.RWMutex
	docs     map[string]map[string]any
	watchers map[int]*memWatcher
	nextID   int
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (c *memCollection) Get(_ context.Context, id string) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fields, ok := c.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (c *memCollection) Set(_ context.Context, id string, fields map[string]any) error {
	c.mu.Lock()
	c.docs[id] = cloneFields(fields)
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *memCollection) Update(_ context.Context, id string, fields map[string]any) error {
	c.mu.Lock()
	existing, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range fields {
		existing[k] = v
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *memCollection) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	delete(c.docs, id)
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *memCollection) Find(_ context.Context, q Query) ([]Document, error) {
	c.mu.RLock()
	docs := c.matching(q)
	c.mu.RUnlock()
	return window(docs, q)
}

func (c *memCollection) Count(_ context.Context, q Query) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matching(q)), nil
}

func (c *memCollection) Watch(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error) {
	w := &memWatcher{query: q, onSnapshot: onSnapshot, onError: onError, ctx: ctx}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = w
	docs := c.matching(q)
	c.mu.Unlock()

	w.deliver(docs)

	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()

		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
	}, nil
}

// notify redelivers every active watcher's full result set. Callbacks
// run outside the collection lock so they may read the collection; the
// watcher's own lock filters out anyone unsubscribed in between.
func (c *memCollection) notify() {
	c.mu.RLock()
	type delivery struct {
		w    *memWatcher
		docs []Document
	}
	deliveries := make([]delivery, 0, len(c.watchers))
	for _, w := range c.watchers {
		if w.ctx != nil && w.ctx.Err() != nil {
			continue
		}
		deliveries = append(deliveries, delivery{w: w, docs: c.matching(w.query)})
	}
	c.mu.RUnlock()

	for _, d := range deliveries {
		d.w.deliver(d.docs)
	}
}

// matching returns filtered, sorted documents. Caller holds at least a
// read lock.
func (c *memCollection) matching(q Query) []Document {
	docs := make([]Document, 0, len(c.docs))
	for id, fields := range c.docs {
		match := true
		for _, f := range q.Filters {
			if !valuesEqual(fields[f.Field], f.Value) {
				match = false
				break
			}
		}
		if match {
			docs = append(docs, Document{ID: id, Fields: cloneFields(fields)})
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			vi, vj := docs[i].Fields[q.OrderBy], docs[j].Fields[q.OrderBy]
			cmp := compareValues(vi, vj)
			if cmp == 0 {
				cmp = compareValues(docs[i].ID, docs[j].ID)
			}
			if q.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	} else {
		sort.SliceStable(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	}
	return docs
}

// window applies the keyset cursors and limit to an already sorted slice.
func window(docs []Document, q Query) ([]Document, error) {
	if q.StartAfter != "" {
		idx := indexOf(docs, q.StartAfter)
		if idx < 0 {
			return nil, fmt.Errorf("resolve pagination cursor %s: %w", q.StartAfter, ErrNotFound)
		}
		docs = docs[idx+1:]
		if q.Limit > 0 && len(docs) > q.Limit {
			docs = docs[:q.Limit]
		}
		return docs, nil
	}
	if q.EndBefore != "" {
		idx := indexOf(docs, q.EndBefore)
		if idx < 0 {
			return nil, fmt.Errorf("resolve pagination cursor %s: %w", q.EndBefore, ErrNotFound)
		}
		docs = docs[:idx]
		if q.Limit > 0 && len(docs) > q.Limit {
			docs = docs[len(docs)-q.Limit:]
		}
		return docs, nil
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func indexOf(docs []Document, id string) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func valuesEqual(a, b any) bool {
	return compareValues(a, b) == 0
}

// compareValues orders the field types this store sees: times, strings,
// numbers and bools. Unknown types fall back to their formatted form.
func compareValues(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	if af, aok := numeric(a); aok {
		if bf, bok := numeric(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return float64(n), true
	}
	return 0, false
}
