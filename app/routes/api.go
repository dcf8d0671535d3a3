package routes

import (
	"github.com/livraria-escolar/catalog/app/controllers"
	"github.com/livraria-escolar/catalog/app/services"
	"github.com/livraria-escolar/catalog/pkg/ctx"
	"github.com/livraria-escolar/catalog/pkg/router"
)

// Deps are the collaborators the API controllers need. A zero Deps is
// enough to register routes for listing.
type Deps struct {
	Catalog *services.CatalogService
	Images  controllers.ImageStore
}

func RegisterAPI(r *router.Router, d Deps) {
	products := controllers.NewProductController(d.Catalog)
	reference := controllers.NewReferenceController(d.Catalog)
	uploads := controllers.NewUploadController(d.Images)

	api := r.Group("/api")
	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Post("/products", "products.store", ctx.Wrap(products.Store))
	api.Put("/products/{id}", "products.update", ctx.Wrap(products.Update))

	api.Get("/reading-plan", "reading-plan.index", ctx.Wrap(reference.ReadingPlan))
	api.Get("/schools", "schools.index", ctx.Wrap(reference.Schools))
	api.Get("/categories", "categories.index", ctx.Wrap(reference.Categories))
	api.Get("/publishers", "publishers.index", ctx.Wrap(reference.Publishers))

	api.Post("/uploads", "uploads.store", ctx.Wrap(uploads.Store))
}
