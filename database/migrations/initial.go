package migrations

import (
	"context"

	"github.com/livraria-escolar/catalog/app/models"
)

func init() {
	Register("20260101000000_index_reading_plan_product", indexReadingPlanProduct)
	Register("20260101000001_index_categories_type", indexCategoriesType)
}

// Product updates delete a product's reading plan by productId.
func indexReadingPlanProduct(ctx context.Context, db Indexer) error {
	return db.EnsureIndex(ctx, models.ReadingPlanCollection, "productId")
}

func indexCategoriesType(ctx context.Context, db Indexer) error {
	return db.EnsureIndex(ctx, models.CategoriesCollection, "type")
}
