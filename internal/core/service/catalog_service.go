package service

import (
	"context"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CatalogService exposes the catalog; every mutation is admin-only and is
// refused locally for anyone else.
type CatalogService struct {
	api  port.CatalogAPI
	gate *AccessGate
}

func NewCatalogService(api port.CatalogAPI, sessions SessionReader) *CatalogService {
	return &CatalogService{api: api, gate: NewAccessGate(sessions)}
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.api.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (domain.Book, error) {
	book, err := s.api.GetBook(ctx, id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return book, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	if _, err := s.gate.Require(domain.RouteAdminOnly); err != nil {
		return domain.Book{}, err
	}
	created, err := s.api.CreateBook(ctx, book)
	if err != nil {
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	return created, nil
}

func (s *CatalogService) UpdateBook(ctx context.Context, id string, book domain.Book) (domain.Book, error) {
	if _, err := s.gate.Require(domain.RouteAdminOnly); err != nil {
		return domain.Book{}, err
	}
	updated, err := s.api.UpdateBook(ctx, id, book)
	if err != nil {
		return domain.Book{}, fmt.Errorf("update book %s: %w", id, err)
	}
	return updated, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.gate.Require(domain.RouteAdminOnly); err != nil {
		return err
	}
	if err := s.api.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	category, err := s.api.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if _, err := s.gate.Require(domain.RouteAdminOnly); err != nil {
		return domain.Category{}, err
	}
	created, err := s.api.CreateCategory(ctx, c)
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, c domain.Category) (domain.Category, error) {
	if _, err := s.gate.Require(domain.RouteAdminOnly); err != nil {
		return domain.Category{}, err
	}
	updated, err := s.api.UpdateCategory(ctx, id, c)
	if err != nil {
		return domain.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	return updated, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.gate.Require(domain.RouteAdminOnly); err != nil {
		return err
	}
	if err := s.api.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}
