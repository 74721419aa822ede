package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
)

func (c *Client) ListBooks(ctx context.Context) ([]domain.Book, error) {
	var resp []wire.Book
	if err := c.do(ctx, request{method: http.MethodGet, path: "/books"}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Book, 0, len(resp))
	for _, b := range resp {
		out = append(out, b.ToDomain())
	}
	return out, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (domain.Book, error) {
	var resp wire.Book
	if err := c.do(ctx, request{method: http.MethodGet, path: bookPath(id)}, &resp); err != nil {
		return domain.Book{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) CreateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	var resp wire.Book
	if err := c.do(ctx, request{method: http.MethodPost, path: "/books", body: wire.BookFromDomain(book)}, &resp); err != nil {
		return domain.Book{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, book domain.Book) (domain.Book, error) {
	var resp wire.Book
	if err := c.do(ctx, request{method: http.MethodPut, path: bookPath(id), body: wire.BookFromDomain(book)}, &resp); err != nil {
		return domain.Book{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: bookPath(id)}, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var resp []wire.Category
	if err := c.do(ctx, request{method: http.MethodGet, path: "/categories"}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(resp))
	for _, cat := range resp {
		out = append(out, cat.ToDomain())
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var resp wire.Category
	if err := c.do(ctx, request{method: http.MethodGet, path: categoryPath(id)}, &resp); err != nil {
		return domain.Category{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) CreateCategory(ctx context.Context, cat domain.Category) (domain.Category, error) {
	var resp wire.Category
	if err := c.do(ctx, request{method: http.MethodPost, path: "/categories", body: wire.CategoryFromDomain(cat)}, &resp); err != nil {
		return domain.Category{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, cat domain.Category) (domain.Category, error) {
	var resp wire.Category
	if err := c.do(ctx, request{method: http.MethodPut, path: categoryPath(id), body: wire.CategoryFromDomain(cat)}, &resp); err != nil {
		return domain.Category{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: categoryPath(id)}, nil)
}

func bookPath(id string) string {
	return "/books/" + url.PathEscape(id)
}

func categoryPath(id string) string {
	return "/categories/" + url.PathEscape(id)
}
