// Package forms holds the state of the back-office editing forms.
//
// A BookForm is what the admin product editor binds to: field values as
// typed, per-field validation messages, the image preview and the save
// status. It never renders anything.
//
//	f := forms.NewBookForm(api, api)
//	f.OpenNew()
//	f.Update(func(v *forms.BookValues) { v.Name = "O Principezinho" })
//	if err := f.Submit(ctx); err != nil { ... f.Errors(), f.AsyncError() }
package forms

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/pkg/collection"
)

// DefaultSaveError is shown when a failed save carries no message.
const DefaultSaveError = "Erro ao guardar alterações. Tente novamente."

// ErrSaving is returned by Submit while a previous save is in flight.
var ErrSaving = errors.New("forms: save already in progress")

// ErrInvalid is returned by Submit when validation fails; the messages are
// in Errors.
var ErrInvalid = errors.New("forms: invalid input")

// DataAccess is the catalog backend the form saves to and reads its
// choices from.
type DataAccess interface {
	AddProduct(ctx context.Context, p models.Product, plan []models.ReadingPlanEntry) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product, plan []models.ReadingPlanEntry) (models.Product, error)
	ReadingPlan(ctx context.Context) ([]models.ReadingPlanItem, error)
	Schools(ctx context.Context) ([]models.School, error)
	Categories(ctx context.Context, kind string) ([]models.Category, error)
	Publishers(ctx context.Context) ([]models.Publisher, error)
}

// ImageUploader stores a picked file and returns its URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, name string, data []byte) (string, error)
}

// EntryValues is one reading-plan row. Grade is the raw text input; digits
// become a numeric grade, anything else stays text.
type EntryValues struct {
	SchoolID string
	Grade    string
	Status   models.ReadingPlanStatus
}

// BookValues are the form fields as the user typed them.
type BookValues struct {
	Name        string
	Description string
	Price       string
	Stock       string
	Image       string
	Category    string
	Publisher   string
	StockStatus models.StockStatus
	ReadingPlan []EntryValues
}

func defaultValues() BookValues {
	return BookValues{
		Price:       "0",
		Stock:       "0",
		StockStatus: models.InStock,
		ReadingPlan: []EntryValues{},
	}
}

func (v BookValues) clone() BookValues {
	v.ReadingPlan = append([]EntryValues{}, v.ReadingPlan...)
	return v
}

// BookForm is safe for concurrent use; an upload may finish while the user
// keeps typing.
type BookForm struct {
	data     DataAccess
	uploader ImageUploader

	mu         sync.Mutex
	open       bool
	editingID  string
	values     BookValues
	errs       map[string]string
	preview    string
	asyncError string
	saving     bool
}

func NewBookForm(data DataAccess, uploader ImageUploader) *BookForm {
	return &BookForm{
		data:     data,
		uploader: uploader,
		values:   defaultValues(),
		errs:     map[string]string{},
	}
}

// OpenNew opens the form for a new book with default values.
func (f *BookForm) OpenNew() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reset()
	f.open = true
}

// OpenEdit opens the form on p. Its reading plan is the items of the full
// collection whose productId is p.ID, in collection order.
func (f *BookForm) OpenEdit(ctx context.Context, p models.Product) error {
	items, err := f.data.ReadingPlan(ctx)
	if err != nil {
		return fmt.Errorf("load reading plan: %w", err)
	}

	own := collection.Filter(items, func(it models.ReadingPlanItem) bool { return it.ProductID == p.ID })
	plan := collection.Map(own, func(it models.ReadingPlanItem) EntryValues {
		return EntryValues{SchoolID: it.SchoolID, Grade: it.Grade.String(), Status: it.Status}
	})

	status := p.StockStatus
	if status == "" {
		status = models.InStock
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.reset()
	f.open = true
	f.editingID = p.ID
	f.values = BookValues{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Stock:       strconv.FormatFloat(p.Stock, 'f', -1, 64),
		Image:       p.Image,
		Category:    p.Category,
		Publisher:   p.Publisher,
		StockStatus: status,
		ReadingPlan: plan,
	}
	f.preview = p.Image
	return nil
}

func (f *BookForm) reset() {
	f.editingID = ""
	f.values = defaultValues()
	f.errs = map[string]string{}
	f.preview = ""
	f.asyncError = ""
}

// Close closes the form without saving.
func (f *BookForm) Close() {
	f.mu.Lock()
	f.open = false
	f.mu.Unlock()
}

// Update edits the field values in place.
func (f *BookForm) Update(fn func(v *BookValues)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.values)
}

// AppendEntry adds an empty mandatory row at the end of the reading plan.
func (f *BookForm) AppendEntry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.ReadingPlan = append(f.values.ReadingPlan, EntryValues{Status: models.Mandatory})
}

// RemoveEntry drops row i, keeping the order of the rest.
func (f *BookForm) RemoveEntry(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	plan := f.values.ReadingPlan
	if i < 0 || i >= len(plan) {
		return
	}
	f.values.ReadingPlan = append(plan[:i:i], plan[i+1:]...)
}

// UploadFile stores a picked file and puts its URL in the image field.
// Failures are returned to the caller and leave the field untouched.
func (f *BookForm) UploadFile(ctx context.Context, name string, data []byte) error {
	url, err := f.uploader.UploadImage(ctx, name, data)
	if err != nil {
		return fmt.Errorf("Failed to upload image: %w", err)
	}
	f.setImage(url)
	return nil
}

// PasteImage inlines pasted image data as a data URL. Clipboard items that
// are not images are ignored; the return value says whether data was used.
func (f *BookForm) PasteImage(mime string, data []byte) bool {
	if !strings.HasPrefix(mime, "image/") || len(data) == 0 {
		return false
	}
	f.setImage("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
	return true
}

func (f *BookForm) setImage(src string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Image = src
	f.preview = src
}

// Validate checks the current values and stores the messages. It returns
// true when there are none.
func (f *BookForm) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, _, errs := f.assemble()
	f.errs = errs
	return len(errs) == 0
}

// Submit validates and saves. A new book goes to AddProduct, an edited one
// to UpdateProduct. Success closes the form; a failed save keeps it open
// with AsyncError set.
func (f *BookForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.saving {
		f.mu.Unlock()
		return ErrSaving
	}
	p, plan, errs := f.assemble()
	f.errs = errs
	if len(errs) > 0 {
		f.mu.Unlock()
		return ErrInvalid
	}
	f.saving = true
	f.asyncError = ""
	f.mu.Unlock()

	var err error
	if p.ID != "" {
		_, err = f.data.UpdateProduct(ctx, p, plan)
	} else {
		_, err = f.data.AddProduct(ctx, p, plan)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false
	if err != nil {
		f.asyncError = err.Error()
		if f.asyncError == "" {
			f.asyncError = DefaultSaveError
		}
		return err
	}
	f.open = false
	return nil
}

func (f *BookForm) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *BookForm) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

// EditingID is the id of the product being edited, "" for a new one.
func (f *BookForm) EditingID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editingID
}

func (f *BookForm) Values() BookValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.clone()
}

// Errors returns the field messages of the last validation, keyed by path
// ("name", "readingPlan.0.schoolId").
func (f *BookForm) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *BookForm) ImagePreview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// AsyncError is the message of the last failed save.
func (f *BookForm) AsyncError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.asyncError
}
