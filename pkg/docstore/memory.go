package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Memory is an in-process Store. Documents are kept BSON-encoded so they
// go through the same marshalling as the Mongo driver.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	failCommit  error
	failReads   error
}

type memCollection struct {
	order []string
	docs  map[string]bson.Raw
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: map[string]*memCollection{}}
}

// FailCommits makes every subsequent Commit fail with err before anything
// is applied. Pass nil to restore normal behaviour.
func (m *Memory) FailCommits(err error) {
	m.mu.Lock()
	m.failCommit = err
	m.mu.Unlock()
}

// FailReads makes every subsequent read fail with err.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.failReads = err
	m.mu.Unlock()
}

// Count returns the number of documents in collection.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.collections[collection]; ok {
		return len(c.order)
	}
	return 0
}

func (m *Memory) All(_ context.Context, collection string, out any) error {
	return m.read(collection, out)
}

func (m *Memory) Get(_ context.Context, collection, id string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failReads != nil {
		return m.failReads
	}
	c, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	if err := bson.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("docstore/memory: decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Memory) Batch() Batch { return &memBatch{store: m} }

func (m *Memory) read(collection string, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("docstore/memory: out must be a pointer to a slice, got %T", out)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failReads != nil {
		return m.failReads
	}

	sliceType := rv.Elem().Type()
	result := reflect.MakeSlice(sliceType, 0, 0)

	if c, ok := m.collections[collection]; ok {
		for _, id := range c.order {
			doc := c.docs[id]
			elem := reflect.New(sliceType.Elem())
			if err := bson.Unmarshal(doc, elem.Interface()); err != nil {
				return fmt.Errorf("docstore/memory: decode %s/%s: %w", collection, id, err)
			}
			result = reflect.Append(result, elem.Elem())
		}
	}

	rv.Elem().Set(result)
	return nil
}

func rawValueOf(v any) (bson.RawValue, error) {
	t, data, err := bson.MarshalValue(v)
	if err != nil {
		return bson.RawValue{}, fmt.Errorf("docstore/memory: encode filter value: %w", err)
	}
	return bson.RawValue{Type: t, Value: data}, nil
}

type memBatch struct {
	store *Memory
	ops   []op
}

func (b *memBatch) Set(collection, id string, doc any) Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: doc})
	return b
}

func (b *memBatch) DeleteWhere(collection, field string, value any) Batch {
	b.ops = append(b.ops, op{kind: opDeleteWhere, collection: collection, field: field, value: value})
	return b
}

func (b *memBatch) Len() int { return len(b.ops) }

// Commit stages every operation on a copy of the touched collections and
// swaps them in only when all operations succeeded.
func (b *memBatch) Commit(_ context.Context) error {
	m := b.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCommit != nil {
		return fmt.Errorf("docstore/memory: commit: %w", m.failCommit)
	}

	staged := map[string]*memCollection{}
	stage := func(name string) *memCollection {
		if c, ok := staged[name]; ok {
			return c
		}
		c := &memCollection{docs: map[string]bson.Raw{}}
		if orig, ok := m.collections[name]; ok {
			c.order = append(c.order, orig.order...)
			for id, doc := range orig.docs {
				c.docs[id] = doc
			}
		}
		staged[name] = c
		return c
	}

	for _, o := range b.ops {
		c := stage(o.collection)
		switch o.kind {
		case opSet:
			raw, err := bson.Marshal(o.doc)
			if err != nil {
				return fmt.Errorf("docstore/memory: encode %s/%s: %w", o.collection, o.id, err)
			}
			if _, exists := c.docs[o.id]; !exists {
				c.order = append(c.order, o.id)
			}
			c.docs[o.id] = raw
		case opDeleteWhere:
			want, err := rawValueOf(o.value)
			if err != nil {
				return err
			}
			kept := c.order[:0:0]
			for _, id := range c.order {
				got, err := c.docs[id].LookupErr(o.field)
				if err == nil && got.Equal(want) {
					delete(c.docs, id)
					continue
				}
				kept = append(kept, id)
			}
			c.order = kept
		}
	}

	for name, c := range staged {
		m.collections[name] = c
	}
	b.ops = nil
	return nil
}
