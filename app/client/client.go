// Package client calls the catalog API over HTTP. It is the data-access
// and image-upload backend of the admin editing form.
package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/livraria-escolar/catalog/app/models"
	catalogHTTP "github.com/livraria-escolar/catalog/pkg/http"
	"github.com/livraria-escolar/catalog/pkg/response"
)

// Client talks to one catalog deployment.
type Client struct {
	baseURL string
	timeout time.Duration
}

// New returns a Client for the API rooted at baseURL
// (e.g. "https://catalogo.livraria.pt").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (c *Client) url(path string) string { return c.baseURL + path }

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	resp, err := catalogHTTP.Get(c.url(path)).WithContext(ctx).Timeout(c.timeout).Send()
	if err != nil {
		return err
	}
	if !resp.OK() {
		return apiError(resp)
	}
	return resp.JSON(dest)
}

func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.get(ctx, "/api/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReadingPlan(ctx context.Context) ([]models.ReadingPlanItem, error) {
	var out []models.ReadingPlanItem
	if err := c.get(ctx, "/api/reading-plan", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Schools(ctx context.Context) ([]models.School, error) {
	var out []models.School
	if err := c.get(ctx, "/api/schools", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories lists categories, only those of kind when it is not empty.
func (c *Client) Categories(ctx context.Context, kind string) ([]models.Category, error) {
	path := "/api/categories"
	if kind != "" {
		path += "?type=" + url.QueryEscape(kind)
	}
	var out []models.Category
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Publishers(ctx context.Context) ([]models.Publisher, error) {
	var out []models.Publisher
	if err := c.get(ctx, "/api/publishers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddProduct creates p with its reading plan and returns the stored record.
func (c *Client) AddProduct(ctx context.Context, p models.Product, plan []models.ReadingPlanEntry) (models.Product, error) {
	return c.save(ctx, catalogHTTP.Post(c.url("/api/products")), p, plan)
}

// UpdateProduct replaces p (by p.ID) and its reading plan.
func (c *Client) UpdateProduct(ctx context.Context, p models.Product, plan []models.ReadingPlanEntry) (models.Product, error) {
	if p.ID == "" {
		return models.Product{}, errors.New("client: update without product id")
	}
	return c.save(ctx, catalogHTTP.Put(c.url("/api/products/"+url.PathEscape(p.ID))), p, plan)
}

func (c *Client) save(ctx context.Context, req *catalogHTTP.Request, p models.Product, plan []models.ReadingPlanEntry) (models.Product, error) {
	if plan == nil {
		plan = []models.ReadingPlanEntry{}
	}
	resp, err := req.WithContext(ctx).Timeout(c.timeout).
		Body(models.ProductPayload{Product: p, ReadingPlan: plan}).
		Send()
	if err != nil {
		return models.Product{}, err
	}
	if !resp.OK() {
		return models.Product{}, apiError(resp)
	}

	var out models.Product
	if err := resp.JSON(&out); err != nil {
		return models.Product{}, err
	}
	return out, nil
}

// UploadImage sends data to the upload endpoint and returns the stored
// image's URL.
func (c *Client) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	resp, err := catalogHTTP.Post(c.url("/api/uploads")).WithContext(ctx).Timeout(c.timeout).
		File("file", name, data).
		Send()
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", apiError(resp)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("client: upload response has no url")
	}
	return out.URL, nil
}

// apiError turns a failure envelope into an error carrying the most
// specific message: details, then error, then the raw status.
func apiError(resp *catalogHTTP.Response) error {
	var body response.ErrorBody
	if err := resp.JSON(&body); err == nil {
		if body.Details != "" {
			return errors.New(body.Details)
		}
		if body.Error != "" {
			return errors.New(body.Error)
		}
	}
	return resp.Throw()
}
