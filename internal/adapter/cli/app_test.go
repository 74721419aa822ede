package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rl1809/storefront/internal/adapter/api"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const (
	adminEmail    = "admin@bookstore.test"
	adminPassword = "admin123"
)

type testCLI struct {
	app     *App
	out     *bytes.Buffer
	baseURL string
	backend *handler.Backend
	snaps   *storage.Snapshots
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	backend := handler.NewBackend()
	require.NoError(t, backend.EnsureAdmin(adminEmail, adminPassword))
	require.NoError(t, backend.Seed())
	srv := httptest.NewServer(handler.NewHTTPHandler(backend, handler.NewTokenIssuer([]byte("cli-secret"), time.Hour)).Routes())
	t.Cleanup(srv.Close)

	return openCLI(t, srv.URL+"/api", backend, storage.NewSnapshots(storage.NewMemoryStore()))
}

func openCLI(t *testing.T, baseURL string, backend *handler.Backend, snaps *storage.Snapshots) *testCLI {
	t.Helper()
	ctx := context.Background()

	client := api.NewClient(baseURL)
	sessions, err := service.NewSessionHolder(ctx, snaps, client)
	require.NoError(t, err)
	client.UseSession(sessions)
	cart, err := service.NewCartStore(ctx, snaps)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	app := New(Services{
		Sessions: sessions,
		Cart:     cart,
		Orders:   service.NewOrderService(cart, sessions, client),
		Catalog:  service.NewCatalogService(client, sessions),
		Accounts: service.NewAccountService(client, sessions),
	}, Options{Out: out})
	t.Cleanup(app.Close)

	return &testCLI{app: app, out: out, baseURL: baseURL, backend: backend, snaps: snaps}
}

func (c *testCLI) run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	c.out.Reset()
	code := c.app.Run(context.Background(), args)
	return code, c.out.String()
}

func (c *testCLI) bookID(t *testing.T, title string) string {
	t.Helper()
	for _, b := range c.backend.Books() {
		if b.Title == title {
			return b.ID
		}
	}
	t.Fatalf("book %q not seeded", title)
	return ""
}

func (c *testCLI) loginCustomer(t *testing.T) {
	t.Helper()
	code, out := c.run(t, "register", "-name", "Reader", "-email", "reader@example.com", "-password", "secret")
	require.Equal(t, ExitOK, code, out)
	code, out = c.run(t, "login", "-email", "reader@example.com", "-password", "secret")
	require.Equal(t, ExitOK, code, out)
	require.Contains(t, out, "Welcome, Reader.")
}

func TestRun_AccessGate(t *testing.T) {
	c := newTestCLI(t)

	code, out := c.run(t, "orders")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Please log in to continue")

	code, out = c.run(t, "admin", "orders")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Please log in to continue")

	c.loginCustomer(t)

	code, out = c.run(t, "admin", "orders")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Administrator access required")

	code, _ = c.run(t, "orders")
	assert.Equal(t, ExitOK, code)
}

func TestRun_Usage(t *testing.T) {
	c := newTestCLI(t)

	code, out := c.run(t, "frobnicate")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, out, "unknown command")

	code, out = c.run(t, "book")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, out, "usage: storefront book <id>")

	code, _ = c.run(t)
	assert.Equal(t, ExitUsage, code)
}

func TestRun_CartStockCheck(t *testing.T) {
	c := newTestCLI(t)
	id := c.bookID(t, "The Left Hand of Darkness")

	code, out := c.run(t, "cart", "add", id, "2")
	require.Equal(t, ExitOK, code, out)

	// 2 in the cart plus 2 more exceeds the 3 in stock
	code, out = c.run(t, "cart", "add", id, "2")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Only 3 copies of The Left Hand of Darkness are in stock")

	code, out = c.run(t, "cart")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Total: $25.00")

	code, out = c.run(t, "cart", "set", id, "0")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Your cart is empty.")

	code, out = c.run(t, "cart", "add", "missing")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "not found")
}

func TestRun_CheckoutFlow(t *testing.T) {
	c := newTestCLI(t)
	id := c.bookID(t, "The Left Hand of Darkness")

	code, _ := c.run(t, "cart", "add", id, "2")
	require.Equal(t, ExitOK, code)

	code, out := c.run(t, "checkout")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Please log in to place an order")

	c.loginCustomer(t)

	code, out = c.run(t, "checkout")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Total: $25.00")

	code, out = c.run(t, "cart")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Your cart is empty.")

	code, out = c.run(t, "orders")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "$25.00")

	code, out = c.run(t, "checkout")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Your cart is empty")
}

func TestRun_AdminStatus(t *testing.T) {
	c := newTestCLI(t)
	placed := c.backend.CreateOrder(wire.Order{
		UserID:      "someone",
		Items:       []wire.OrderItem{{BookID: "b1", Title: "Go", Price: 10, Quantity: 1}},
		TotalAmount: 10,
	})

	code, out := c.run(t, "login", "-email", adminEmail, "-password", adminPassword)
	require.Equal(t, ExitOK, code, out)

	code, out = c.run(t, "admin", "status", placed.ID, "shipped")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "is now Shipped")

	code, out = c.run(t, "admin", "status", placed.ID, "LOST")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Unknown order status")

	code, out = c.run(t, "admin", "orders")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "someone")
	assert.Contains(t, out, "Shipped")

	code, out = c.run(t, "admin", "book-add", "-title", "New", "-author", "A", "-price", "abc")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Price must be")

	code, out = c.run(t, "admin", "category-add", "-name", "Poetry")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Category")
}

func TestRun_BookSearch(t *testing.T) {
	c := newTestCLI(t)

	code, out := c.run(t, "books", "-q", "GO")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "The Go Programming Language")
	assert.Contains(t, out, "Concurrency in Go")
	assert.NotContains(t, out, "The Left Hand of Darkness")

	code, out = c.run(t, "books", "-q", "le guin")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "The Left Hand of Darkness")
	assert.NotContains(t, out, "Concurrency in Go")

	code, out = c.run(t, "books", "-q", "fiction")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "The Left Hand of Darkness")
	assert.NotContains(t, out, "The Go Programming Language")

	code, out = c.run(t, "books", "-q", "cookery")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, `No books match "cookery".`)

	code, out = c.run(t, "books")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "The Go Programming Language")
	assert.Contains(t, out, "The Left Hand of Darkness")
}

func TestMatchBooks(t *testing.T) {
	books := []domain.Book{
		{ID: "1", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"},
		{ID: "2", Title: "Emma", Author: "Jane Austen", Genre: "Romance"},
	}

	assert.Len(t, matchBooks(books, ""), 2)
	assert.Len(t, matchBooks(books, "  "), 2)
	assert.Equal(t, "1", matchBooks(books, "herb")[0].ID)
	assert.Equal(t, "2", matchBooks(books, " ROMANCE ")[0].ID)
	assert.Empty(t, matchBooks(books, "poetry"))
}

func (c *testCLI) categoryID(t *testing.T, name string) string {
	t.Helper()
	for _, cat := range c.backend.Categories() {
		if cat.Name == name {
			return cat.ID
		}
	}
	t.Fatalf("category %q not seeded", name)
	return ""
}

func TestRun_Category(t *testing.T) {
	c := newTestCLI(t)

	code, out := c.run(t, "category", c.categoryID(t, "Programming"))
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Programming\n")
	assert.Contains(t, out, "Languages, tools and practice")

	code, _ = c.run(t, "category", "missing")
	assert.Equal(t, ExitError, code)

	code, _ = c.run(t, "category")
	assert.Equal(t, ExitUsage, code)
}

func TestRun_AdminCatalogUpdates(t *testing.T) {
	c := newTestCLI(t)
	bookID := c.bookID(t, "The Left Hand of Darkness")
	catID := c.categoryID(t, "Fiction")

	code, out := c.run(t, "admin", "book-update", bookID, "-price", "9.00")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Please log in to continue")

	code, out = c.run(t, "login", "-email", adminEmail, "-password", adminPassword)
	require.Equal(t, ExitOK, code, out)

	code, out = c.run(t, "admin", "book-update", bookID, "-price", "14.00", "-stock", "7")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Book "+bookID+" updated.")
	stored, err := c.backend.Book(bookID)
	require.NoError(t, err)
	assert.InDelta(t, 14.00, stored.Price, 0.001)
	assert.Equal(t, 7, stored.StockQuantity)
	assert.Equal(t, "The Left Hand of Darkness", stored.Title)
	assert.Equal(t, "Ursula K. Le Guin", stored.Author)
	assert.Equal(t, "Fiction", stored.Genre)

	code, out = c.run(t, "admin", "book-update", bookID, "-price", "abc")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Price must be")

	code, _ = c.run(t, "admin", "book-update")
	assert.Equal(t, ExitUsage, code)

	code, out = c.run(t, "admin", "category-update", catID, "-description", "Novels and stories")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Category Fiction updated.")
	cat, err := c.backend.Category(catID)
	require.NoError(t, err)
	assert.Equal(t, "Fiction", cat.Name)
	assert.Equal(t, "Novels and stories", cat.Description)

	code, out = c.run(t, "category", catID)
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Novels and stories")
}

func TestRun_SessionInvalidated(t *testing.T) {
	c := newTestCLI(t)
	ctx := context.Background()

	// Setup: restore a session whose token the service never issued
	snaps := storage.NewSnapshots(storage.NewMemoryStore())
	require.NoError(t, snaps.SaveSession(ctx, domain.SessionSnapshot{
		Session: domain.Session{UserID: "ghost", DisplayName: "Ghost", Role: domain.RoleCustomer},
		Token:   "forged",
	}))
	stale := openCLI(t, c.baseURL, c.backend, snaps)

	code, out := stale.run(t, "whoami")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Ghost (customer)")

	code, out = stale.run(t, "orders")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, msgSessionEnded)
	assert.Contains(t, out, "Your session has expired. Please log in again.")

	code, out = stale.run(t, "whoami")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Not logged in.")
}

func TestMoneyAndCount(t *testing.T) {
	a := &App{printer: message.NewPrinter(language.AmericanEnglish)}

	assert.Equal(t, "$1,234.50", a.money(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.00", a.money(decimal.Zero))
	assert.Equal(t, "12,000", a.count(12000))
}

func TestStatusColor(t *testing.T) {
	r, g, b, ok := parseHexColor("#666")
	require.True(t, ok)
	assert.Equal(t, [3]uint8{0x66, 0x66, 0x66}, [3]uint8{r, g, b})

	r, g, b, ok = parseHexColor("#ff9800")
	require.True(t, ok)
	assert.Equal(t, [3]uint8{0xff, 0x98, 0x00}, [3]uint8{r, g, b})

	_, _, _, ok = parseHexColor("orange")
	assert.False(t, ok)

	a := &App{color: true}
	assert.Equal(t, "\x1b[38;2;76;175;80mDelivered\x1b[0m", a.status(domain.OrderStatusDelivered))
	assert.Equal(t, "\x1b[38;2;102;102;102mUnknown\x1b[0m", a.status(domain.OrderStatus("LOST")))

	a.color = false
	assert.Equal(t, "Cancelled", a.status(domain.OrderStatusCancelled))
}
