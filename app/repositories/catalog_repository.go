package repositories

import (
	"context"
	"time"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/pkg/docstore"
	"github.com/livraria-escolar/catalog/pkg/metrics"
)

// CatalogRepository handles document-store operations for the catalog.
type CatalogRepository struct {
	store docstore.Store
}

func NewCatalogRepository(store docstore.Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

// Products returns every product in store order. Never nil.
func (r *CatalogRepository) Products(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.store.All(ctx, models.ProductsCollection, &products)
	return products, err
}

// FindProduct looks up a product by id. Returns docstore.ErrNotFound when
// it does not exist.
func (r *CatalogRepository) FindProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.store.Get(ctx, models.ProductsCollection, id, &p)
	return p, err
}

// ReadingPlan returns every reading-plan item in store order.
func (r *CatalogRepository) ReadingPlan(ctx context.Context) ([]models.ReadingPlanItem, error) {
	items := make([]models.ReadingPlanItem, 0)
	err := r.store.All(ctx, models.ReadingPlanCollection, &items)
	return items, err
}

func (r *CatalogRepository) Schools(ctx context.Context) ([]models.School, error) {
	schools := make([]models.School, 0)
	err := r.store.All(ctx, models.SchoolsCollection, &schools)
	return schools, err
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	err := r.store.All(ctx, models.CategoriesCollection, &categories)
	return categories, err
}

func (r *CatalogRepository) Publishers(ctx context.Context) ([]models.Publisher, error) {
	publishers := make([]models.Publisher, 0)
	err := r.store.All(ctx, models.PublishersCollection, &publishers)
	return publishers, err
}

// SaveProduct writes p and items in one atomic batch. With replacePlan the
// product's existing reading-plan items are deleted in the same batch.
func (r *CatalogRepository) SaveProduct(ctx context.Context, p models.Product, items []models.ReadingPlanItem, replacePlan bool) error {
	b := r.store.Batch()
	if replacePlan {
		b.DeleteWhere(models.ReadingPlanCollection, "productId", p.ID)
	}
	b.Set(models.ProductsCollection, p.ID, p)
	for _, it := range items {
		b.Set(models.ReadingPlanCollection, it.ID, it)
	}

	start := time.Now()
	err := b.Commit(ctx)
	metrics.ObserveCommit(start, err)
	return err
}

// ReferenceData is the set of read-only collections loaded by the seeder.
type ReferenceData struct {
	Schools    []models.School    `json:"schools"`
	Categories []models.Category  `json:"categories"`
	Publishers []models.Publisher `json:"publishers"`
}

// SaveReference upserts reference records in one batch.
func (r *CatalogRepository) SaveReference(ctx context.Context, ref ReferenceData) (int, error) {
	b := r.store.Batch()
	for _, s := range ref.Schools {
		b.Set(models.SchoolsCollection, s.ID, s)
	}
	for _, c := range ref.Categories {
		b.Set(models.CategoriesCollection, c.ID, c)
	}
	for _, p := range ref.Publishers {
		b.Set(models.PublishersCollection, p.ID, p)
	}

	n := b.Len()
	start := time.Now()
	err := b.Commit(ctx)
	metrics.ObserveCommit(start, err)
	if err != nil {
		return 0, err
	}
	return n, nil
}
