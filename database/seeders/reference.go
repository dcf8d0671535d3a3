// Package seeders loads the read-only reference collections (schools,
// categories, publishers) the editing form offers as choices.
//
//	catalog seed                    # built-in reference data
//	catalog seed ./reference.json   # a file with the same shape
package seeders

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/app/repositories"
	"github.com/livraria-escolar/catalog/pkg/collection"
)

//go:embed reference.json
var builtin []byte

// Seeder stores reference data. *services.CatalogService implements it.
type Seeder interface {
	SeedReference(ctx context.Context, ref repositories.ReferenceData) (int, error)
}

// LoadReference reads reference data from path, or the built-in set when
// path is empty. Unknown fields are rejected so typos do not seed blanks.
func LoadReference(path string) (repositories.ReferenceData, error) {
	data := builtin
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return repositories.ReferenceData{}, fmt.Errorf("seeders: read %s: %w", path, err)
		}
	}

	var ref repositories.ReferenceData
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ref); err != nil {
		return repositories.ReferenceData{}, fmt.Errorf("seeders: parse reference data: %w", err)
	}
	if err := checkIDs(ref); err != nil {
		return repositories.ReferenceData{}, err
	}
	return ref, nil
}

func checkIDs(ref repositories.ReferenceData) error {
	if err := uniqueIDs("schools", collection.Map(ref.Schools, func(s models.School) string { return s.ID })); err != nil {
		return err
	}
	if err := uniqueIDs("categories", collection.Map(ref.Categories, func(c models.Category) string { return c.ID })); err != nil {
		return err
	}
	return uniqueIDs("publishers", collection.Map(ref.Publishers, func(p models.Publisher) string { return p.ID }))
}

// uniqueIDs rejects blank and repeated ids; a repeat would silently
// overwrite the earlier record.
func uniqueIDs(kind string, ids []string) error {
	byID := collection.KeyBy(ids, func(id string) string { return id })
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("seeders: %s[%d] has no id", kind, i)
		}
	}
	if len(byID) != len(ids) {
		return fmt.Errorf("seeders: %s has duplicate ids", kind)
	}
	return nil
}

// Run loads path and stores it through s.
func Run(ctx context.Context, s Seeder, path string, out io.Writer) error {
	ref, err := LoadReference(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  • schools: %d  categories: %d  publishers: %d … ",
		len(ref.Schools), len(ref.Categories), len(ref.Publishers))
	n, err := s.SeedReference(ctx, ref)
	if err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	fmt.Fprintf(out, "%d documents written\n", n)
	return nil
}
