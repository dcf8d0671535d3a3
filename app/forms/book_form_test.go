package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/livraria-escolar/catalog/app/models"
)

type mockData struct{ mock.Mock }

func (m *mockData) AddProduct(ctx context.Context, p models.Product, plan []models.ReadingPlanEntry) (models.Product, error) {
	args := m.Called(ctx, p, plan)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *mockData) UpdateProduct(ctx context.Context, p models.Product, plan []models.ReadingPlanEntry) (models.Product, error) {
	args := m.Called(ctx, p, plan)
	return args.Get(0).(models.Product), args.Error(1)
}

func (m *mockData) ReadingPlan(ctx context.Context) ([]models.ReadingPlanItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ReadingPlanItem), args.Error(1)
}

func (m *mockData) Schools(ctx context.Context) ([]models.School, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.School), args.Error(1)
}

func (m *mockData) Categories(ctx context.Context, kind string) ([]models.Category, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *mockData) Publishers(ctx context.Context) ([]models.Publisher, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Publisher), args.Error(1)
}

type uploaderFunc func(ctx context.Context, name string, data []byte) (string, error)

func (fn uploaderFunc) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	return fn(ctx, name, data)
}

func validBook(v *BookValues) {
	v.Name = "O Principezinho"
	v.Description = "Um classico da literatura infantil"
	v.Price = "12.5"
	v.Stock = "10"
	v.Image = "https://cdn.livraria.test/principezinho.jpg"
	v.Category = "Ficção"
	v.ReadingPlan = []EntryValues{{SchoolID: "sch1", Grade: "3", Status: models.Mandatory}}
}

func TestOpenNewDefaults(t *testing.T) {
	f := NewBookForm(&mockData{}, nil)
	f.OpenNew()

	assert.True(t, f.IsOpen())
	assert.Equal(t, "", f.EditingID())
	v := f.Values()
	assert.Equal(t, models.InStock, v.StockStatus)
	assert.Equal(t, "0", v.Price)
	assert.Empty(t, v.ReadingPlan)
	assert.Empty(t, f.ImagePreview())
}

func TestValidateMessages(t *testing.T) {
	f := NewBookForm(&mockData{}, nil)
	f.OpenNew()
	f.Update(func(v *BookValues) {
		v.Name = "O"
		v.Description = "curta"
		v.Price = "-1"
		v.Stock = "dez"
		v.StockStatus = "discontinued"
		v.ReadingPlan = []EntryValues{
			{SchoolID: "sch1", Grade: "3", Status: models.Mandatory},
			{SchoolID: "", Grade: " ", Status: "optional"},
		}
	})

	assert.False(t, f.Validate())
	assert.Equal(t, map[string]string{
		"name":                   "O nome deve ter pelo menos 3 caracteres.",
		"description":            "A descrição deve ter pelo menos 10 caracteres.",
		"price":                  "O preço deve ser um número positivo.",
		"stock":                  "O stock deve ser um número.",
		"image":                  "A imagem é obrigatória.",
		"category":               "A categoria é obrigatória.",
		"stockStatus":            "Selecione um estado de stock válido.",
		"readingPlan.1.schoolId": "A escola é obrigatória.",
		"readingPlan.1.grade":    "O ano é obrigatório.",
		"readingPlan.1.status":   "Selecione obrigatório ou recomendado.",
	}, f.Errors())
}

func TestGradeZeroIsPresent(t *testing.T) {
	f := NewBookForm(&mockData{}, nil)
	f.OpenNew()
	f.Update(func(v *BookValues) {
		validBook(v)
		v.ReadingPlan[0].Grade = "0"
	})
	assert.True(t, f.Validate(), f.Errors())
}

func TestPaddedTextCountsAsTyped(t *testing.T) {
	data := &mockData{}
	data.On("AddProduct", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.Name == " ab " && p.Description == "   abcdefg   " && p.Image == " https://cdn.test/a.jpg"
	}), mock.Anything).Return(models.Product{ID: "p1"}, nil).Once()

	f := NewBookForm(data, nil)
	f.OpenNew()
	f.Update(func(v *BookValues) {
		validBook(v)
		v.Name = " ab "
		v.Description = "   abcdefg   "
		v.Image = " https://cdn.test/a.jpg"
	})

	assert.True(t, f.Validate(), f.Errors())
	require.NoError(t, f.Submit(context.Background()))
	data.AssertExpectations(t)
}

func TestFractionalStockIsANumber(t *testing.T) {
	data := &mockData{}
	data.On("AddProduct", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.Stock == 2.5
	}), mock.Anything).Return(models.Product{ID: "p1"}, nil).Once()

	f := NewBookForm(data, nil)
	f.OpenNew()
	f.Update(func(v *BookValues) {
		validBook(v)
		v.Stock = "2,5"
	})

	require.NoError(t, f.Submit(context.Background()))
	data.AssertExpectations(t)
}

func TestSubmitNewCallsAddProduct(t *testing.T) {
	data := &mockData{}
	data.On("AddProduct", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.ID == "" && p.Type == models.ProductTypeBook && p.Price == 12.5 && p.Stock == 10 && len(p.Images) == 0
	}), []models.ReadingPlanEntry{{SchoolID: "sch1", Grade: models.NumberGrade(3), Status: models.Mandatory}}).
		Return(models.Product{ID: "p1"}, nil).Once()

	f := NewBookForm(data, nil)
	f.OpenNew()
	f.Update(validBook)

	require.NoError(t, f.Submit(context.Background()))
	assert.False(t, f.IsOpen())
	assert.False(t, f.Saving())
	data.AssertExpectations(t)
}

func TestSubmitInvalidMakesNoCall(t *testing.T) {
	data := &mockData{}
	f := NewBookForm(data, nil)
	f.OpenNew()

	assert.ErrorIs(t, f.Submit(context.Background()), ErrInvalid)
	assert.True(t, f.IsOpen())
	data.AssertNotCalled(t, "AddProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitFailureKeepsFormOpen(t *testing.T) {
	data := &mockData{}
	data.On("AddProduct", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Product{}, errors.New("Product image is too large. Please upload images to object storage and use a URL instead.")).Once()
	data.On("AddProduct", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Product{}, errors.New("")).Once()

	f := NewBookForm(data, nil)
	f.OpenNew()
	f.Update(validBook)

	assert.Error(t, f.Submit(context.Background()))
	assert.True(t, f.IsOpen())
	assert.False(t, f.Saving())
	assert.Equal(t, "Product image is too large. Please upload images to object storage and use a URL instead.", f.AsyncError())

	assert.Error(t, f.Submit(context.Background()))
	assert.Equal(t, DefaultSaveError, f.AsyncError())
}

func TestSubmitRefusedWhileSaving(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	data := &mockData{}
	data.On("AddProduct", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(models.Product{ID: "p1"}, nil).Once()

	f := NewBookForm(data, nil)
	f.OpenNew()
	f.Update(validBook)

	done := make(chan error)
	go func() { done <- f.Submit(context.Background()) }()
	<-started

	assert.True(t, f.Saving())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrSaving)

	close(release)
	require.NoError(t, <-done)
	data.AssertNumberOfCalls(t, "AddProduct", 1)
}

func TestOpenEditFiltersReadingPlan(t *testing.T) {
	data := &mockData{}
	data.On("ReadingPlan", mock.Anything).Return([]models.ReadingPlanItem{
		{ID: "rp1", ProductID: "p1", SchoolID: "sch2", Grade: models.TextGrade("Pré"), Status: models.Recommended},
		{ID: "rp2", ProductID: "p9", SchoolID: "sch1", Grade: models.NumberGrade(1), Status: models.Mandatory},
		{ID: "rp3", ProductID: "p1", SchoolID: "sch1", Grade: models.NumberGrade(4), Status: models.Mandatory},
	}, nil)
	p := models.Product{ID: "p1", Name: "Atlas Escolar", Description: "Atlas para o ensino básico", Price: 15.9, Stock: 3, Image: "https://cdn.test/atlas.jpg", Category: "Geografia"}
	data.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(got models.Product) bool {
		return got.ID == "p1" && got.StockStatus == models.InStock
	}), []models.ReadingPlanEntry{
		{SchoolID: "sch1", Grade: models.NumberGrade(4), Status: models.Mandatory},
	}).Return(p, nil).Once()

	f := NewBookForm(data, nil)
	require.NoError(t, f.OpenEdit(context.Background(), p))

	assert.Equal(t, "p1", f.EditingID())
	assert.Equal(t, "https://cdn.test/atlas.jpg", f.ImagePreview())
	v := f.Values()
	assert.Equal(t, "15.9", v.Price)
	assert.Equal(t, models.InStock, v.StockStatus)
	assert.Equal(t, []EntryValues{
		{SchoolID: "sch2", Grade: "Pré", Status: models.Recommended},
		{SchoolID: "sch1", Grade: "4", Status: models.Mandatory},
	}, v.ReadingPlan)

	f.RemoveEntry(0)
	require.NoError(t, f.Submit(context.Background()))
	data.AssertExpectations(t)
}

func TestAppendAndRemoveEntries(t *testing.T) {
	f := NewBookForm(&mockData{}, nil)
	f.OpenNew()
	f.AppendEntry()
	f.AppendEntry()
	f.AppendEntry()
	f.Update(func(v *BookValues) {
		v.ReadingPlan[0].SchoolID = "a"
		v.ReadingPlan[1].SchoolID = "b"
		v.ReadingPlan[2].SchoolID = "c"
	})

	f.RemoveEntry(1)
	f.RemoveEntry(7)

	plan := f.Values().ReadingPlan
	require.Len(t, plan, 2)
	assert.Equal(t, EntryValues{SchoolID: "a", Status: models.Mandatory}, plan[0])
	assert.Equal(t, "c", plan[1].SchoolID)
}

func TestUploadFile(t *testing.T) {
	up := uploaderFunc(func(_ context.Context, name string, _ []byte) (string, error) {
		if name == "bad.jpg" {
			return "", errors.New("quota exceeded")
		}
		return "https://cdn.test/products/1_" + name, nil
	})
	f := NewBookForm(&mockData{}, up)
	f.OpenNew()

	require.NoError(t, f.UploadFile(context.Background(), "capa.jpg", []byte("jpeg")))
	assert.Equal(t, "https://cdn.test/products/1_capa.jpg", f.Values().Image)
	assert.Equal(t, "https://cdn.test/products/1_capa.jpg", f.ImagePreview())

	err := f.UploadFile(context.Background(), "bad.jpg", []byte("jpeg"))
	assert.EqualError(t, err, "Failed to upload image: quota exceeded")
	assert.Equal(t, "https://cdn.test/products/1_capa.jpg", f.Values().Image)
	assert.Empty(t, f.Errors())
}

func TestPasteImage(t *testing.T) {
	f := NewBookForm(&mockData{}, nil)
	f.OpenNew()

	assert.False(t, f.PasteImage("text/plain", []byte("hello")))
	assert.Empty(t, f.Values().Image)

	assert.True(t, f.PasteImage("image/png", []byte{0x89, 'P', 'N', 'G'}))
	assert.Equal(t, "data:image/png;base64,iVBORw==", f.Values().Image)
	assert.Equal(t, f.Values().Image, f.ImagePreview())
}

func TestChoices(t *testing.T) {
	data := &mockData{}
	data.On("Categories", mock.Anything, "book").Return([]models.Category{
		{ID: "c1", Type: "book", Name: models.LocalizedName{PT: "Ficção", EN: "Fiction"}},
		{ID: "c3", Type: "book", Name: models.LocalizedName{PT: "Poesia"}},
	}, nil)
	data.On("Schools", mock.Anything).Return([]models.School{{ID: "sch1", Name: models.LocalizedName{PT: "Escola A", EN: "School A"}}}, nil)
	data.On("Publishers", mock.Anything).Return([]models.Publisher{{ID: "pub1", Name: "Porto Editora"}}, nil)

	f := NewBookForm(data, nil)
	ctx := context.Background()

	cats, err := f.BookCategories(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, []Choice{{Value: "Fiction", Label: "Fiction"}, {Value: "Poesia", Label: "Poesia"}}, cats)

	schools, err := f.Schools(ctx, "pt")
	require.NoError(t, err)
	assert.Equal(t, []Choice{{Value: "sch1", Label: "Escola A"}}, schools)

	pubs, err := f.Publishers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Choice{{Value: "Porto Editora", Label: "Porto Editora"}}, pubs)
}
