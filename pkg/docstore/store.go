// Package docstore is the document-database layer of the catalog.
//
// Documents live in named top-level collections keyed by a string id that
// is stored as the document's _id. Writes that must land together are
// grouped in a Batch and committed atomically: either every operation is
// applied or none is.
//
//	b := store.Batch()
//	b.Set("products", p.ID, p)
//	b.Set("readingPlan", item.ID, item)
//	if err := b.Commit(ctx); err != nil { ... }
//
// Two drivers exist: Mongo (multi-document transactions, needs a replica
// set) and Memory (tests and local development).
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("docstore: document not found")

// Store reads collections and hands out write batches.
type Store interface {
	// All decodes every document of collection into out, which must be a
	// pointer to a slice. Order is the store's iteration order.
	All(ctx context.Context, collection string, out any) error

	// Get decodes the document with id into out.
	Get(ctx context.Context, collection, id string, out any) error

	// Batch starts an empty write batch.
	Batch() Batch
}

// Batch accumulates writes for a single atomic commit.
type Batch interface {
	// Set creates or fully replaces the document with id.
	Set(collection, id string, doc any) Batch

	// DeleteWhere removes every document whose field equals value.
	DeleteWhere(collection, field string, value any) Batch

	// Len is the number of queued operations.
	Len() int

	// Commit applies all queued operations atomically.
	Commit(ctx context.Context) error
}

type opKind int

const (
	opSet opKind = iota
	opDeleteWhere
)

type op struct {
	kind       opKind
	collection string
	id         string
	doc        any
	field      string
	value      any
}
