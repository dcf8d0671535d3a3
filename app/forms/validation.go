package forms

import (
	"math"
	"strconv"
	"strings"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/pkg/collection"
	"github.com/livraria-escolar/catalog/pkg/validate"
)

type bookInput struct {
	Name        string             `json:"name"        validate:"min=3"`
	Description string             `json:"description" validate:"min=10"`
	Price       float64            `json:"price"       validate:"gte=0"`
	Stock       float64            `json:"stock"       validate:"gte=0"`
	Image       string             `json:"image"       validate:"required"`
	Category    string             `json:"category"    validate:"required"`
	Publisher   string             `json:"publisher"`
	StockStatus models.StockStatus `json:"stockStatus" validate:"oneof=in_stock out_of_stock sold_out"`
	ReadingPlan []entryInput       `json:"readingPlan" validate:"dive"`
}

type entryInput struct {
	SchoolID string                   `json:"schoolId" validate:"required"`
	Grade    models.Grade             `json:"grade"    validate:"required"`
	Status   models.ReadingPlanStatus `json:"status"   validate:"oneof=mandatory recommended"`
}

var bookMessages = validate.Messages{
	"name":                   "O nome deve ter pelo menos 3 caracteres.",
	"description":            "A descrição deve ter pelo menos 10 caracteres.",
	"price":                  "O preço deve ser um número positivo.",
	"stock":                  "O stock deve ser um número positivo.",
	"image":                  "A imagem é obrigatória.",
	"category":               "A categoria é obrigatória.",
	"stockStatus":            "Selecione um estado de stock válido.",
	"readingPlan.*.schoolId": "A escola é obrigatória.",
	"readingPlan.*.grade":    "O ano é obrigatório.",
	"readingPlan.*.status":   "Selecione obrigatório ou recomendado.",
}

// parseNumber coerces a text input. Blank is zero.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseGrade turns "3" into a numeric grade and keeps any other text.
func parseGrade(s string) models.Grade {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Grade{}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return models.NumberGrade(n)
	}
	return models.TextGrade(s)
}

// assemble validates the values and builds what Submit sends. Callers hold
// f.mu.
func (f *BookForm) assemble() (models.Product, []models.ReadingPlanEntry, map[string]string) {
	v := f.values
	coerce := map[string]string{}

	price, ok := parseNumber(v.Price)
	if !ok {
		coerce["price"] = "O preço deve ser um número."
	}
	stock, ok := parseNumber(v.Stock)
	if !ok {
		coerce["stock"] = "O stock deve ser um número."
	}

	in := bookInput{
		Name:        v.Name,
		Description: v.Description,
		Price:       price,
		Stock:       stock,
		Image:       v.Image,
		Category:    v.Category,
		Publisher:   v.Publisher,
		StockStatus: v.StockStatus,
		ReadingPlan: collection.Map(v.ReadingPlan, func(e EntryValues) entryInput {
			return entryInput{SchoolID: e.SchoolID, Grade: parseGrade(e.Grade), Status: e.Status}
		}),
	}

	errs := validate.Struct(in, bookMessages)
	for path, msg := range coerce {
		errs[path] = msg
	}
	if len(errs) > 0 {
		return models.Product{}, nil, errs
	}

	p := models.Product{
		ID:          f.editingID,
		Type:        models.ProductTypeBook,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Image:       in.Image,
		Images:      []string{},
		Category:    in.Category,
		Publisher:   in.Publisher,
		StockStatus: in.StockStatus,
	}
	plan := collection.Map(in.ReadingPlan, func(e entryInput) models.ReadingPlanEntry {
		return models.ReadingPlanEntry{SchoolID: e.SchoolID, Grade: e.Grade, Status: e.Status}
	})
	return p, plan, errs
}
