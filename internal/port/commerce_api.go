package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type Authenticator interface {
	// Login exchanges credentials for a session and its bearer token
	Login(ctx context.Context, creds domain.Credentials) (domain.Session, string, error)
}

type OrderAPI interface {
	// CreateOrder submits a draft once and returns the order as persisted by the service
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)

	// ListOrders returns every order (admin view)
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// OrderHistory returns the orders owned by userID
	OrderHistory(ctx context.Context, userID string) ([]domain.Order, error)

	// UpdateOrderStatus asks the service to set the status of an order
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
}

type CatalogAPI interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	GetBook(ctx context.Context, id string) (domain.Book, error)
	CreateBook(ctx context.Context, book domain.Book) (domain.Book, error)
	UpdateBook(ctx context.Context, id string, book domain.Book) (domain.Book, error)
	DeleteBook(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	UpdateCategory(ctx context.Context, id string, c domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type AccountAPI interface {
	// Register creates an account; it does not log in
	Register(ctx context.Context, reg domain.Registration) (domain.Profile, error)

	// Me returns the profile of the token holder
	Me(ctx context.Context) (domain.Profile, error)

	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.Profile, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}
