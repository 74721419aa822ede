// Package wire holds the JSON shapes exchanged with the commerce service.
// Money travels as a JSON number and is held as a decimal on both sides.
package wire

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const dateLayout = "2006-01-02"

// localTimeLayout is a zone-less timestamp as produced by some backends;
// it is read as UTC.
const localTimeLayout = "2006-01-02T15:04:05.999999999"

type ErrorResponse struct {
	Message string `json:"message"`
}

type Book struct {
	ID            string  `json:"book_id,omitempty"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Price         float64 `json:"price"`
	Description   string  `json:"description,omitempty"`
	Genre         string  `json:"genre,omitempty"`
	Publisher     string  `json:"publisher,omitempty"`
	Language      string  `json:"language,omitempty"`
	StockQuantity int     `json:"stockQuantity"`
	CoverImageURL string  `json:"coverImageUrl,omitempty"`
	PublishedDate string  `json:"publishedDate,omitempty"`
}

func BookFromDomain(b domain.Book) Book {
	out := Book{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Price:         b.Price.InexactFloat64(),
		Description:   b.Description,
		Genre:         b.Genre,
		Publisher:     b.Publisher,
		Language:      b.Language,
		StockQuantity: b.StockQuantity,
		CoverImageURL: b.CoverImageURL,
	}
	if !b.PublishedDate.IsZero() {
		out.PublishedDate = b.PublishedDate.Format(dateLayout)
	}
	return out
}

func (b Book) ToDomain() domain.Book {
	out := domain.Book{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Price:         decimal.NewFromFloat(b.Price),
		Description:   b.Description,
		Genre:         b.Genre,
		Publisher:     b.Publisher,
		Language:      b.Language,
		StockQuantity: b.StockQuantity,
		CoverImageURL: b.CoverImageURL,
	}
	if t, err := time.Parse(dateLayout, b.PublishedDate); err == nil {
		out.PublishedDate = t
	}
	return out
}

type Category struct {
	ID          string `json:"category_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func CategoryFromDomain(c domain.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (c Category) ToDomain() domain.Category {
	return domain.Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

type OrderItem struct {
	BookID   string  `json:"book_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID          string      `json:"order_id,omitempty"`
	UserID      string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	OrderDate   string      `json:"orderDate,omitempty"`
}

func OrderFromDraft(d domain.OrderDraft) Order {
	return Order{
		UserID:      d.OwnerID,
		Items:       itemsFromDomain(d.Items()),
		TotalAmount: d.TotalAmount.InexactFloat64(),
		Status:      string(d.Status),
	}
}

func OrderFromDomain(o domain.Order) Order {
	out := Order{
		ID:          o.ID,
		UserID:      o.OwnerID,
		Items:       itemsFromDomain(o.Items),
		TotalAmount: o.TotalAmount.InexactFloat64(),
		Status:      string(o.Status),
	}
	if !o.OrderDate.IsZero() {
		out.OrderDate = o.OrderDate.UTC().Format(time.RFC3339)
	}
	return out
}

// ToDomain keeps an unrecognised status text as is; it renders with the
// unknown display treatment.
func (o Order) ToDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, domain.OrderItem{
			ItemID:   it.BookID,
			Title:    it.Title,
			Price:    decimal.NewFromFloat(it.Price),
			Quantity: it.Quantity,
		})
	}
	status, ok := domain.ParseOrderStatus(o.Status)
	if !ok {
		status = domain.OrderStatus(o.Status)
	}
	return domain.Order{
		ID:          o.ID,
		OwnerID:     o.UserID,
		Items:       items,
		TotalAmount: decimal.NewFromFloat(o.TotalAmount),
		Status:      status,
		OrderDate:   ParseTimestamp(o.OrderDate),
	}
}

// ParseTimestamp accepts RFC 3339 or a zone-less local timestamp. It
// returns the zero time for anything else.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(localTimeLayout, s); err == nil {
		return t
	}
	return time.Time{}
}

func itemsFromDomain(items []domain.OrderItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItem{
			BookID:   it.ItemID,
			Title:    it.Title,
			Price:    it.Price.InexactFloat64(),
			Quantity: it.Quantity,
		})
	}
	return out
}

type StatusUpdate struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID          string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

func (u User) ToProfile() domain.Profile {
	return domain.Profile{
		UserID:      u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        domain.ParseRole(u.Role),
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
	}
}

func (u User) ToSession() domain.Session {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return domain.Session{UserID: u.ID, DisplayName: name, Role: domain.ParseRole(u.Role)}
}

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type ProfileUpdate struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
