package handler

import "github.com/rl1809/storefront/internal/adapter/wire"

// Seed fills an empty catalog with a few demo entries.
func (b *Backend) Seed() error {
	categories := []wire.Category{
		{Name: "Programming", Description: "Languages, tools and practice"},
		{Name: "Fiction"},
	}
	for _, c := range categories {
		if _, err := b.PutCategory("", c); err != nil {
			return err
		}
	}

	books := []wire.Book{
		{Title: "The Go Programming Language", Author: "Alan Donovan", Price: 32.50, Genre: "Programming", StockQuantity: 12, PublishedDate: "2015-10-26"},
		{Title: "Concurrency in Go", Author: "Katherine Cox-Buday", Price: 28.99, Genre: "Programming", StockQuantity: 5, PublishedDate: "2017-07-19"},
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Price: 12.50, Genre: "Fiction", StockQuantity: 3, PublishedDate: "1969-03-01"},
	}
	for _, book := range books {
		if _, err := b.PutBook("", book); err != nil {
			return err
		}
	}
	return nil
}
