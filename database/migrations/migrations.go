// Package migrations prepares the document store: the indexes the catalog
// queries rely on. Each migration registers itself from init() and is
// idempotent, so `catalog migrate` can run on every deploy.
package migrations

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Indexer creates single-field indexes. *docstore.Mongo implements it.
type Indexer interface {
	EnsureIndex(ctx context.Context, collection, field string) error
}

// Migration is one idempotent step.
type Migration func(ctx context.Context, db Indexer) error

type entry struct {
	name string
	fn   Migration
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a migration. Migrations run in registration order.
func Register(name string, fn Migration) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// Names lists the registered migrations.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
	}
	return names
}

// Run applies every migration, stopping at the first failure. Progress is
// written to out.
func Run(ctx context.Context, db Indexer, out io.Writer) error {
	mu.Lock()
	current := append([]entry(nil), entries...)
	mu.Unlock()

	for _, e := range current {
		fmt.Fprintf(out, "  • %s … ", e.name)
		if err := e.fn(ctx, db); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("migration %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
