package handler

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already exists")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrWrongPassword  = errors.New("current password is incorrect")
	ErrInvalidInput   = errors.New("invalid input")
)

type user struct {
	wire.User
	passwordHash []byte
}

// Backend is the in-memory state of the commerce service. Orders are
// stored as received; only the id, date and a missing status are filled
// in.
type Backend struct {
	mu         sync.RWMutex
	users      map[string]*user
	byEmail    map[string]string
	books      map[string]wire.Book
	categories map[string]wire.Category
	orders     []wire.Order

	hashCost int
	now      func() time.Time
}

func NewBackend() *Backend {
	return &Backend{
		users:      make(map[string]*user),
		byEmail:    make(map[string]string),
		books:      make(map[string]wire.Book),
		categories: make(map[string]wire.Category),
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

func (b *Backend) CreateUser(req wire.RegisterRequest, role domain.Role) (wire.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return wire.User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), b.hashCost)
	if err != nil {
		return wire.User{}, fmt.Errorf("hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, taken := b.byEmail[email]; taken {
		return wire.User{}, ErrEmailTaken
	}

	u := &user{
		User: wire.User{
			ID:          uuid.NewString(),
			Name:        strings.TrimSpace(req.Name),
			Email:       email,
			Role:        string(role),
			Address:     req.Address,
			PhoneNumber: req.PhoneNumber,
		},
		passwordHash: hash,
	}
	b.users[u.ID] = u
	b.byEmail[email] = u.ID
	return u.User, nil
}

// EnsureAdmin creates the admin account unless the email is already
// registered.
func (b *Backend) EnsureAdmin(email, password string) error {
	_, err := b.CreateUser(wire.RegisterRequest{Name: "Admin User", Email: email, Password: password}, domain.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("backend: admin account %s created", normalizeEmail(email))
	return nil
}

func (b *Backend) Authenticate(email, password string) (wire.User, error) {
	b.mu.RLock()
	u, ok := b.users[b.byEmail[normalizeEmail(email)]]
	var found wire.User
	var hash []byte
	if ok {
		found, hash = u.User, u.passwordHash
	}
	b.mu.RUnlock()
	if !ok {
		return wire.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return wire.User{}, ErrBadCredentials
	}
	return found, nil
}

func (b *Backend) User(id string) (wire.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.users[id]
	if !ok {
		return wire.User{}, ErrNotFound
	}
	return u.User, nil
}

// UpdateUser applies the non-empty fields of upd.
func (b *Backend) UpdateUser(id string, upd wire.ProfileUpdate) (wire.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[id]
	if !ok {
		return wire.User{}, ErrNotFound
	}

	if email := normalizeEmail(upd.Email); email != "" && email != u.Email {
		if _, taken := b.byEmail[email]; taken {
			return wire.User{}, ErrEmailTaken
		}
		delete(b.byEmail, u.Email)
		b.byEmail[email] = id
		u.Email = email
	}
	if upd.Name != "" {
		u.Name = strings.TrimSpace(upd.Name)
	}
	if upd.Address != "" {
		u.Address = upd.Address
	}
	if upd.PhoneNumber != "" {
		u.PhoneNumber = upd.PhoneNumber
	}
	return u.User, nil
}

func (b *Backend) ChangePassword(id, current, next string) error {
	if next == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}

	b.mu.RLock()
	u, ok := b.users[id]
	var hash []byte
	if ok {
		hash = u.passwordHash
	}
	b.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(current)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), b.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u.passwordHash = hash
	return nil
}

func (b *Backend) Books() []wire.Book {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]wire.Book, 0, len(b.books))
	for _, book := range b.books {
		out = append(out, book)
	}
	slices.SortFunc(out, func(x, y wire.Book) int {
		if c := strings.Compare(x.Title, y.Title); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return out
}

func (b *Backend) Book(id string) (wire.Book, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	book, ok := b.books[id]
	if !ok {
		return wire.Book{}, ErrNotFound
	}
	return book, nil
}

func (b *Backend) PutBook(id string, book wire.Book) (wire.Book, error) {
	if strings.TrimSpace(book.Title) == "" {
		return wire.Book{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if book.Price < 0 || book.StockQuantity < 0 {
		return wire.Book{}, fmt.Errorf("%w: price and stock must not be negative", ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	} else if _, ok := b.books[id]; !ok {
		return wire.Book{}, ErrNotFound
	}
	book.ID = id
	b.books[id] = book
	return book, nil
}

func (b *Backend) DeleteBook(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.books[id]; !ok {
		return ErrNotFound
	}
	delete(b.books, id)
	return nil
}

func (b *Backend) Categories() []wire.Category {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]wire.Category, 0, len(b.categories))
	for _, c := range b.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y wire.Category) int {
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return out
}

func (b *Backend) Category(id string) (wire.Category, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.categories[id]
	if !ok {
		return wire.Category{}, ErrNotFound
	}
	return c, nil
}

func (b *Backend) PutCategory(id string, c wire.Category) (wire.Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return wire.Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	} else if _, ok := b.categories[id]; !ok {
		return wire.Category{}, ErrNotFound
	}
	c.ID = id
	b.categories[id] = c
	return c, nil
}

func (b *Backend) DeleteCategory(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.categories[id]; !ok {
		return ErrNotFound
	}
	delete(b.categories, id)
	return nil
}

func (b *Backend) CreateOrder(o wire.Order) wire.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	o.ID = uuid.NewString()
	o.OrderDate = b.now().UTC().Format(time.RFC3339)
	if o.Status == "" {
		o.Status = string(domain.OrderStatusPending)
	}
	if o.Items == nil {
		o.Items = []wire.OrderItem{}
	}
	b.orders = append(b.orders, o)
	return o
}

func (b *Backend) Orders() []wire.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.orders)
}

func (b *Backend) OrdersOf(userID string) []wire.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []wire.Order
	for _, o := range b.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

// SetOrderStatus accepts any known status regardless of the current one.
func (b *Backend) SetOrderStatus(id, status string) (wire.Order, error) {
	s, ok := domain.ParseOrderStatus(status)
	if !ok {
		return wire.Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == id {
			b.orders[i].Status = string(s)
			return b.orders[i], nil
		}
	}
	return wire.Order{}, ErrNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
