package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/app/repositories"
	"github.com/livraria-escolar/catalog/config"
	"github.com/livraria-escolar/catalog/pkg/cache"
	"github.com/livraria-escolar/catalog/pkg/collection"
	"github.com/livraria-escolar/catalog/pkg/docstore"
	"github.com/livraria-escolar/catalog/pkg/logger"
	"github.com/livraria-escolar/catalog/pkg/metrics"
)

// ErrImageTooLarge rejects inline images that would push a product past the
// document-size ceiling.
var ErrImageTooLarge = errors.New("Product image is too large. Please upload images to object storage and use a URL instead.")

// ErrProductNotFound is returned when updating an unknown product.
var ErrProductNotFound = errors.New("product not found")

// Cache keys for the reference collections.
const (
	schoolsKey    = "schools"
	categoriesKey = "categories"
	publishersKey = "publishers"
)

// CatalogService implements the catalog read and write operations.
type CatalogService struct {
	repo          *repositories.CatalogRepository
	cache         *cache.Cache
	maxImageBytes int
	newID         func() string
}

// Option customises a CatalogService.
type Option func(*CatalogService)

// WithCache reads reference collections through c.
func WithCache(c *cache.Cache) Option {
	return func(s *CatalogService) { s.cache = c }
}

// WithMaxImageBytes overrides the inline image limit.
func WithMaxImageBytes(n int) Option {
	return func(s *CatalogService) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *CatalogService) { s.newID = fn }
}

func NewCatalogService(repo *repositories.CatalogRepository, opts ...Option) *CatalogService {
	s := &CatalogService{
		repo:          repo,
		maxImageBytes: config.DefaultMaxInlineImageBytes,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts returns every product in store order.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.Products(ctx)
}

// ReadingPlan returns every reading-plan item.
func (s *CatalogService) ReadingPlan(ctx context.Context) ([]models.ReadingPlanItem, error) {
	return s.repo.ReadingPlan(ctx)
}

// CreateProduct assigns fresh ids to the product and every reading-plan
// entry and stores them together. Nothing is written when the image is too
// large or the batch fails.
func (s *CatalogService) CreateProduct(ctx context.Context, in models.ProductPayload) (models.Product, error) {
	if err := s.checkImage(in.Product.Image); err != nil {
		return models.Product{}, err
	}

	p := in.Product
	p.ID = s.newID()
	items := s.buildItems(p.ID, in.ReadingPlan)

	if err := s.repo.SaveProduct(ctx, p, items, false); err != nil {
		return models.Product{}, fmt.Errorf("save product %s: %w", p.ID, err)
	}

	metrics.ProductsSaved.WithLabelValues("create").Inc()
	logger.WithCtx(ctx).Info("product created",
		"product_id", p.ID,
		"reading_plan_items", len(items),
	)
	return p, nil
}

// UpdateProduct replaces the product with id and its whole reading plan in
// one batch. The path id wins over any id in the payload. Concurrent
// updates are last-write-wins.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in models.ProductPayload) (models.Product, error) {
	if err := s.checkImage(in.Product.Image); err != nil {
		return models.Product{}, err
	}

	if _, err := s.repo.FindProduct(ctx, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, fmt.Errorf("load product %s: %w", id, err)
	}

	p := in.Product
	p.ID = id
	items := s.buildItems(id, in.ReadingPlan)

	if err := s.repo.SaveProduct(ctx, p, items, true); err != nil {
		return models.Product{}, fmt.Errorf("save product %s: %w", id, err)
	}

	metrics.ProductsSaved.WithLabelValues("update").Inc()
	logger.WithCtx(ctx).Info("product updated",
		"product_id", id,
		"reading_plan_items", len(items),
	)
	return p, nil
}

func (s *CatalogService) checkImage(image string) error {
	if len(image) > s.maxImageBytes {
		metrics.ImageRejections.Inc()
		return ErrImageTooLarge
	}
	return nil
}

func (s *CatalogService) buildItems(productID string, entries []models.ReadingPlanEntry) []models.ReadingPlanItem {
	return collection.Map(entries, func(e models.ReadingPlanEntry) models.ReadingPlanItem {
		return models.ReadingPlanItem{
			ID:        s.newID(),
			ProductID: productID,
			SchoolID:  e.SchoolID,
			Grade:     e.Grade,
			Status:    e.Status,
		}
	})
}

// Schools returns the school list, cached.
func (s *CatalogService) Schools(ctx context.Context) ([]models.School, error) {
	return cache.Remember(ctx, s.cache, schoolsKey, s.repo.Schools)
}

// Categories returns the categories, optionally only those of kind.
func (s *CatalogService) Categories(ctx context.Context, kind string) ([]models.Category, error) {
	all, err := cache.Remember(ctx, s.cache, categoriesKey, s.repo.Categories)
	if err != nil || kind == "" {
		return all, err
	}

	return collection.Filter(all, func(c models.Category) bool { return c.Type == kind }), nil
}

// Publishers returns the publisher list, cached.
func (s *CatalogService) Publishers(ctx context.Context) ([]models.Publisher, error) {
	return cache.Remember(ctx, s.cache, publishersKey, s.repo.Publishers)
}

// SeedReference stores reference data and drops the cached copies.
func (s *CatalogService) SeedReference(ctx context.Context, ref repositories.ReferenceData) (int, error) {
	n, err := s.repo.SaveReference(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("seed reference data: %w", err)
	}
	if err := s.cache.Forget(ctx, schoolsKey, categoriesKey, publishersKey); err != nil {
		logger.WithCtx(ctx).Warn("cache: forget reference keys", "error", err)
	}
	return n, nil
}
