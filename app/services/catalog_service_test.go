package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/app/repositories"
	"github.com/livraria-escolar/catalog/pkg/cache"
	"github.com/livraria-escolar/catalog/pkg/docstore"
)

func newService(t *testing.T, opts ...Option) (*CatalogService, *docstore.Memory) {
	t.Helper()
	store := docstore.NewMemory()
	return NewCatalogService(repositories.NewCatalogRepository(store), opts...), store
}

func principezinho() models.ProductPayload {
	return models.ProductPayload{
		Product: models.Product{
			Type:        models.ProductTypeBook,
			Name:        "O Principezinho",
			Description: "Um classico da literatura infantil",
			Price:       12.5,
			Stock:       10,
			Image:       "https://cdn.livraria.test/principezinho.jpg",
			Category:    "Ficção",
			StockStatus: models.InStock,
		},
		ReadingPlan: []models.ReadingPlanEntry{
			{SchoolID: "sch1", Grade: models.NumberGrade(3), Status: models.Mandatory},
		},
	}
}

func TestCreateProductExample(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	in := principezinho()
	in.Product.ID = "client-supplied"

	p, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.NotEqual(t, "client-supplied", p.ID)
	want := in.Product
	want.ID = p.ID
	assert.Equal(t, want, p)

	listed, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, p, listed[0])

	plan, err := svc.ReadingPlan(ctx)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, p.ID, plan[0].ProductID)
	assert.Equal(t, "sch1", plan[0].SchoolID)
	assert.Equal(t, models.NumberGrade(3), plan[0].Grade)
	assert.Equal(t, models.Mandatory, plan[0].Status)
	assert.NotEqual(t, p.ID, plan[0].ID)
}

func TestCreateProductIssuesFreshIDs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		in := principezinho()
		in.ReadingPlan = append(in.ReadingPlan, models.ReadingPlanEntry{SchoolID: "sch2", Grade: models.TextGrade("5A"), Status: models.Recommended})
		p, err := svc.CreateProduct(ctx, in)
		require.NoError(t, err)
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}

	plan, err := svc.ReadingPlan(ctx)
	require.NoError(t, err)
	assert.Len(t, plan, 40)
	for _, it := range plan {
		assert.False(t, seen[it.ID], "item id %s collides with a product id", it.ID)
	}
}

func TestListAfterNWritesCountsPreexisting(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	require.NoError(t, store.Batch().Set(models.ProductsCollection, "legacy", models.Product{ID: "legacy", Name: "Antigo"}).Commit(ctx))

	const n = 5
	for i := 0; i < n; i++ {
		in := principezinho()
		in.Product.Name = fmt.Sprintf("Livro %d", i)
		_, err := svc.CreateProduct(ctx, in)
		require.NoError(t, err)
	}

	listed, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, n+1)
}

func TestOversizedImageWritesNothing(t *testing.T) {
	svc, store := newService(t)

	in := principezinho()
	in.Product.Image = "data:image/png;base64," + strings.Repeat("A", 1048487)
	_, err := svc.CreateProduct(context.Background(), in)

	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Zero(t, store.Count(models.ProductsCollection))
	assert.Zero(t, store.Count(models.ReadingPlanCollection))
}

func TestImageAtTheLimitIsAccepted(t *testing.T) {
	svc, _ := newService(t)

	in := principezinho()
	in.Product.Image = strings.Repeat("A", 1048487)
	_, err := svc.CreateProduct(context.Background(), in)
	assert.NoError(t, err)
}

func TestFailedBatchLeavesNoDocuments(t *testing.T) {
	svc, store := newService(t)
	store.FailCommits(errors.New("deadline exceeded"))

	_, err := svc.CreateProduct(context.Background(), principezinho())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline exceeded")
	assert.Zero(t, store.Count(models.ProductsCollection))
	assert.Zero(t, store.Count(models.ReadingPlanCollection))
}

func TestUpdateReplacesProductAndPlan(t *testing.T) {
	ids := []string{"p1", "rp1", "rp2", "rp3"}
	next := 0
	svc, store := newService(t, WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))
	ctx := context.Background()

	in := principezinho()
	in.ReadingPlan = append(in.ReadingPlan, models.ReadingPlanEntry{SchoolID: "sch2", Grade: models.NumberGrade(4), Status: models.Recommended})
	_, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)
	require.NoError(t, store.Batch().Set(models.ReadingPlanCollection, "other", models.ReadingPlanItem{ID: "other", ProductID: "p2"}).Commit(ctx))

	edit := principezinho()
	edit.Product.ID = "ignored"
	edit.Product.Price = 9.99
	edit.ReadingPlan = []models.ReadingPlanEntry{{SchoolID: "sch9", Grade: models.TextGrade("Pré"), Status: models.Recommended}}

	p, err := svc.UpdateProduct(ctx, "p1", edit)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 9.99, p.Price)

	listed, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 9.99, listed[0].Price)

	plan, err := svc.ReadingPlan(ctx)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "other", plan[0].ID)
	assert.Equal(t, "rp3", plan[1].ID)
	assert.Equal(t, "sch9", plan[1].SchoolID)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc, store := newService(t)

	_, err := svc.UpdateProduct(context.Background(), "missing", principezinho())

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Zero(t, store.Count(models.ProductsCollection))
}

func TestUpdateRejectsOversizedImageFirst(t *testing.T) {
	svc, _ := newService(t, WithMaxImageBytes(10))

	in := principezinho()
	in.Product.Image = strings.Repeat("x", 11)
	_, err := svc.UpdateProduct(context.Background(), "missing", in)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestListProductsPropagatesReadFault(t *testing.T) {
	svc, store := newService(t)
	store.FailReads(errors.New("unavailable"))

	_, err := svc.ListProducts(context.Background())
	assert.Error(t, err)
}

func TestReferenceDataIsCachedAndSeedInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc, store := newService(t, WithCache(cache.New(rdb, time.Minute)))
	ctx := context.Background()

	_, err := svc.SeedReference(ctx, repositories.ReferenceData{
		Schools: []models.School{{ID: "sch1", Name: models.LocalizedName{PT: "Escola A"}}},
		Categories: []models.Category{
			{ID: "c1", Type: "book", Name: models.LocalizedName{PT: "Ficção", EN: "Fiction"}},
			{ID: "c2", Type: "stationery", Name: models.LocalizedName{PT: "Cadernos"}},
		},
		Publishers: []models.Publisher{{ID: "pub1", Name: "Porto Editora"}},
	})
	require.NoError(t, err)

	books, err := svc.Categories(ctx, "book")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "c1", books[0].ID)

	// Served from Redis even when the store is down.
	store.FailReads(errors.New("down"))
	_, err = svc.Schools(ctx)
	require.Error(t, err)
	all, err := svc.Categories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	store.FailReads(nil)

	n, err := svc.SeedReference(ctx, repositories.ReferenceData{
		Publishers: []models.Publisher{{ID: "pub2", Name: "Texto Editores"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, mr.Exists("catalog:categories"))

	pubs, err := svc.Publishers(ctx)
	require.NoError(t, err)
	assert.Len(t, pubs, 2)
}
