package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItemRef is the snapshot of a book taken when it entered the cart.
// It is not re-validated against the catalog until checkout.
type CatalogItemRef struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	CoverURL string          `json:"coverUrl,omitempty"`
}

type Book struct {
	ID            string
	Title         string
	Author        string
	Price         decimal.Decimal
	Description   string
	Genre         string
	Publisher     string
	Language      string
	StockQuantity int
	CoverImageURL string
	PublishedDate time.Time
}

func (b Book) Ref() CatalogItemRef {
	return CatalogItemRef{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		Price:    b.Price,
		Stock:    b.StockQuantity,
		CoverURL: b.CoverImageURL,
	}
}

type Category struct {
	ID          string
	Name        string
	Description string
}
