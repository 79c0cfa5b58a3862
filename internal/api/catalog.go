package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListQuery is the filter/sort/pagination shape shared by the product and
// supplier list endpoints.
type ListQuery struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	SortBy   string `json:"sortBy,omitempty"`
	Order    string `json:"order,omitempty"`
	Page     int    `json:"page,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (q ListQuery) params() map[string]string {
	params := map[string]string{}
	if s := strings.TrimSpace(q.Search); s != "" {
		params["search"] = s
	}
	if q.Category != "" {
		params["category"] = q.Category
	}
	if q.SortBy != "" {
		params["sortBy"] = q.SortBy
	}
	if q.Order != "" {
		params["order"] = q.Order
	}
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	return params
}

func itemPath(base, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("id is required")
	}
	return fmt.Sprintf("%s/%s", base, url.PathEscape(id)), nil
}

func (c *Client) ListProducts(ctx context.Context, q ListQuery) (Page[Product], error) {
	var resp Page[Product]
	if err := c.doGet(ctx, "/api/products", q.params(), &resp); err != nil {
		return Page[Product]{}, err
	}
	return resp, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var resp Product
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", in, &resp); err != nil {
		return Product{}, err
	}
	return resp, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	path, err := itemPath("/api/products", id)
	if err != nil {
		return Product{}, err
	}
	var resp Product
	if err := c.doJSON(ctx, http.MethodPatch, path, patch, &resp); err != nil {
		return Product{}, err
	}
	return resp, nil
}

// ImportProducts uploads a spreadsheet as multipart form field "file".
func (c *Client) ImportProducts(ctx context.Context, filename string, content io.Reader) (ImportResult, error) {
	var resp ImportResult
	req, err := c.authed(ctx, &resp)
	if err != nil {
		return ImportResult{}, err
	}
	req.SetFileReader("file", filename, content)
	if err := c.send(req, http.MethodPost, "/api/products/import"); err != nil {
		return ImportResult{}, err
	}
	return resp, nil
}

func (c *Client) ListSuppliers(ctx context.Context, q ListQuery) (Page[Supplier], error) {
	var resp Page[Supplier]
	if err := c.doGet(ctx, "/api/suppliers", q.params(), &resp); err != nil {
		return Page[Supplier]{}, err
	}
	return resp, nil
}

func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) (Supplier, error) {
	var resp Supplier
	if err := c.doJSON(ctx, http.MethodPost, "/api/suppliers", in, &resp); err != nil {
		return Supplier{}, err
	}
	return resp, nil
}

func (c *Client) UpdateSupplier(ctx context.Context, id string, in SupplierInput) (Supplier, error) {
	path, err := itemPath("/api/suppliers", id)
	if err != nil {
		return Supplier{}, err
	}
	var resp Supplier
	if err := c.doJSON(ctx, http.MethodPut, path, in, &resp); err != nil {
		return Supplier{}, err
	}
	return resp, nil
}

func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	path, err := itemPath("/api/suppliers", id)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}
