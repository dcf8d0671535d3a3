package models

// Collection names in the document store.
const (
	ProductsCollection    = "products"
	ReadingPlanCollection = "readingPlan"
	SchoolsCollection     = "schools"
	CategoriesCollection  = "categories"
	PublishersCollection  = "publishers"
)

// ProductTypeBook is the type tag of products edited through the book form.
const ProductTypeBook = "book"

// StockStatus is the availability label shown in the storefront.
type StockStatus string

const (
	InStock    StockStatus = "in_stock"
	OutOfStock StockStatus = "out_of_stock"
	SoldOut    StockStatus = "sold_out"
)

// Product is a catalog entry. ID is assigned by the server on creation and
// never changes afterwards.
type Product struct {
	ID          string      `bson:"_id"                 json:"id"`
	Type        string      `bson:"type"                json:"type"`
	Name        string      `bson:"name"                json:"name"`
	Description string      `bson:"description"         json:"description"`
	Price       float64     `bson:"price"               json:"price"`
	Stock       float64     `bson:"stock"               json:"stock"`
	Image       string      `bson:"image"               json:"image"`
	Images      []string    `bson:"images,omitempty"    json:"images,omitempty"`
	Category    string      `bson:"category"            json:"category"`
	Publisher   string      `bson:"publisher,omitempty" json:"publisher,omitempty"`
	StockStatus StockStatus `bson:"stockStatus"         json:"stockStatus"`
}

// ProductPayload is the body of product create and update requests.
type ProductPayload struct {
	Product     Product            `json:"product"`
	ReadingPlan []ReadingPlanEntry `json:"readingPlan"`
}
