package forms

import (
	"context"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/pkg/collection"
)

// Choice is one option of a select input.
type Choice struct {
	Value string
	Label string
}

// BookCategories lists the book categories. The stored value is the
// localized name, as the product's category is a display label.
func (f *BookForm) BookCategories(ctx context.Context, lang string) ([]Choice, error) {
	cats, err := f.data.Categories(ctx, models.ProductTypeBook)
	if err != nil {
		return nil, err
	}
	books := collection.Filter(cats, func(c models.Category) bool { return c.Type == models.ProductTypeBook })
	return collection.Map(books, func(c models.Category) Choice {
		name := c.Name.In(lang)
		return Choice{Value: name, Label: name}
	}), nil
}

// Schools lists the schools by id with their localized name.
func (f *BookForm) Schools(ctx context.Context, lang string) ([]Choice, error) {
	schools, err := f.data.Schools(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Map(schools, func(s models.School) Choice {
		return Choice{Value: s.ID, Label: s.Name.In(lang)}
	}), nil
}

// Publishers lists the publisher names.
func (f *BookForm) Publishers(ctx context.Context) ([]Choice, error) {
	pubs, err := f.data.Publishers(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Map(pubs, func(p models.Publisher) Choice {
		return Choice{Value: p.Name, Label: p.Name}
	}), nil
}
