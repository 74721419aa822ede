package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
)

var errSinkDown = errors.New("disk full")

func newSnapshots() *storage.Snapshots {
	return storage.NewSnapshots(storage.NewMemoryStore())
}

func ref(id, price string) domain.CatalogItemRef {
	return domain.CatalogItemRef{ID: id, Title: "Title " + id, Author: "Author " + id, Price: decimal.RequireFromString(price), Stock: 20}
}

// failingCartSink fails every save once failing is set.
type failingCartSink struct {
	mu      sync.Mutex
	inner   *storage.Snapshots
	failing bool
}

func (f *failingCartSink) LoadCart(ctx context.Context) (domain.Cart, error) {
	return f.inner.LoadCart(ctx)
}

func (f *failingCartSink) SaveCart(ctx context.Context, cart domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errSinkDown
	}
	return f.inner.SaveCart(ctx, cart)
}

type staticSessions struct {
	sess    domain.Session
	present bool
}

func (s staticSessions) Current() (domain.Session, bool) {
	return s.sess, s.present
}

var (
	anonymous = staticSessions{}
	customer  = staticSessions{sess: domain.Session{UserID: "u1", DisplayName: "Uma", Role: domain.RoleCustomer}, present: true}
	admin     = staticSessions{sess: domain.Session{UserID: "a1", DisplayName: "Ada", Role: domain.RoleAdmin}, present: true}
)

type mockAuth struct {
	sess  domain.Session
	token string
	err   error
	calls int
}

func (m *mockAuth) Login(_ context.Context, _ domain.Credentials) (domain.Session, string, error) {
	m.calls++
	if m.err != nil {
		return domain.Session{}, "", m.err
	}
	return m.sess, m.token, nil
}

type mockOrderAPI struct {
	mu sync.Mutex

	drafts       []domain.OrderDraft
	createErr    error
	release      chan struct{}
	started      chan struct{}
	accepted     func()
	nextID       int
	historyErr   error
	history      []domain.Order
	statusCalls  []domain.OrderStatus
	statusErr    error
	listCalls    int
	historyCalls int
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	m.mu.Lock()
	m.drafts = append(m.drafts, draft)
	m.nextID++
	id := m.nextID
	release, started, accepted := m.release, m.started, m.accepted
	err := m.createErr
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.Order{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.Order{}, err
	}
	if accepted != nil {
		accepted()
	}

	return domain.Order{
		ID:          fmt.Sprintf("o%d", id),
		OwnerID:     draft.OwnerID,
		Items:       draft.Items(),
		TotalAmount: draft.TotalAmount,
		Status:      draft.Status,
	}, nil
}

func (m *mockOrderAPI) ListOrders(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.history, nil
}

func (m *mockOrderAPI) OrderHistory(context.Context, string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyCalls++
	return m.history, m.historyErr
}

func (m *mockOrderAPI) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls = append(m.statusCalls, status)
	if m.statusErr != nil {
		return domain.Order{}, m.statusErr
	}
	return domain.Order{ID: orderID, Status: status}, nil
}

func (m *mockOrderAPI) draftCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

type mockCatalogAPI struct {
	calls []string
}

func (m *mockCatalogAPI) record(name string) { m.calls = append(m.calls, name) }

func (m *mockCatalogAPI) ListBooks(context.Context) ([]domain.Book, error) {
	m.record("ListBooks")
	return []domain.Book{{ID: "b1"}}, nil
}

func (m *mockCatalogAPI) GetBook(_ context.Context, id string) (domain.Book, error) {
	m.record("GetBook")
	return domain.Book{ID: id}, nil
}

func (m *mockCatalogAPI) CreateBook(_ context.Context, b domain.Book) (domain.Book, error) {
	m.record("CreateBook")
	b.ID = "new"
	return b, nil
}

func (m *mockCatalogAPI) UpdateBook(_ context.Context, id string, b domain.Book) (domain.Book, error) {
	m.record("UpdateBook")
	b.ID = id
	return b, nil
}

func (m *mockCatalogAPI) DeleteBook(context.Context, string) error {
	m.record("DeleteBook")
	return nil
}

func (m *mockCatalogAPI) ListCategories(context.Context) ([]domain.Category, error) {
	m.record("ListCategories")
	return nil, nil
}

func (m *mockCatalogAPI) GetCategory(_ context.Context, id string) (domain.Category, error) {
	m.record("GetCategory")
	return domain.Category{ID: id}, nil
}

func (m *mockCatalogAPI) CreateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	m.record("CreateCategory")
	return c, nil
}

func (m *mockCatalogAPI) UpdateCategory(_ context.Context, _ string, c domain.Category) (domain.Category, error) {
	m.record("UpdateCategory")
	return c, nil
}

func (m *mockCatalogAPI) DeleteCategory(context.Context, string) error {
	m.record("DeleteCategory")
	return nil
}

type mockAccountAPI struct {
	registerErr error
	updatedFor  string
	passwordFor string
	meCalls     int
}

func (m *mockAccountAPI) Register(_ context.Context, reg domain.Registration) (domain.Profile, error) {
	if m.registerErr != nil {
		return domain.Profile{}, m.registerErr
	}
	return domain.Profile{UserID: "new", Name: reg.Name, Email: reg.Email, Role: domain.RoleCustomer}, nil
}

func (m *mockAccountAPI) Me(context.Context) (domain.Profile, error) {
	m.meCalls++
	return domain.Profile{UserID: "u1"}, nil
}

func (m *mockAccountAPI) UpdateProfile(_ context.Context, userID string, u domain.ProfileUpdate) (domain.Profile, error) {
	m.updatedFor = userID
	return domain.Profile{UserID: userID, Name: u.Name}, nil
}

func (m *mockAccountAPI) ChangePassword(_ context.Context, userID, _, _ string) error {
	m.passwordFor = userID
	return nil
}
