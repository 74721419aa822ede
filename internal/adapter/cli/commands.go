package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (a *App) commandTable() map[string]command {
	return map[string]command{
		"login":    {domain.RoutePublic, "login [-email e] [-password p]", "log in", a.login},
		"logout":   {domain.RoutePublic, "logout", "log out", a.logout},
		"whoami":   {domain.RoutePublic, "whoami", "show the current session", a.whoami},
		"register": {domain.RoutePublic, "register -name n -email e [-password p] [-address a] [-phone p]", "create an account", a.register},

		"books":      {domain.RoutePublic, "books [-q term]", "list the catalog, optionally filtered by title, author or genre", a.books},
		"book":       {domain.RoutePublic, "book <id>", "show one book", a.book},
		"categories": {domain.RoutePublic, "categories", "list categories", a.categories},
		"category":   {domain.RoutePublic, "category <id>", "show one category", a.category},

		"cart show":   {domain.RoutePublic, "cart [show]", "show the cart", a.cartShow},
		"cart add":    {domain.RoutePublic, "cart add <book-id> [quantity]", "add a book to the cart", a.cartAdd},
		"cart remove": {domain.RoutePublic, "cart remove <book-id>", "remove a book from the cart", a.cartRemove},
		"cart set":    {domain.RoutePublic, "cart set <book-id> <quantity>", "change a quantity (0 removes)", a.cartSet},
		"cart clear":  {domain.RoutePublic, "cart clear", "empty the cart", a.cartClear},
		// checkout reports its own login requirement
		"checkout": {domain.RoutePublic, "checkout", "place an order for the cart", a.checkout},

		"orders":  {domain.RouteAuthenticated, "orders", "show your order history", a.orders},
		"profile": {domain.RouteAuthenticated, "profile [-name n] [-email e] [-address a] [-phone p]", "show or update your profile", a.profile},
		"passwd":  {domain.RouteAuthenticated, "passwd [-current p] [-new p]", "change your password", a.passwd},

		"admin orders":          {domain.RouteAdminOnly, "admin orders", "list every order", a.adminOrders},
		"admin status":          {domain.RouteAdminOnly, "admin status <order-id> <status>", "set an order status", a.adminStatus},
		"admin book-add":        {domain.RouteAdminOnly, "admin book-add -title t -author a -price p -stock n", "add a book", a.adminBookAdd},
		"admin book-update":     {domain.RouteAdminOnly, "admin book-update <id> [-title t] [-author a] [-price p] [-stock n] [-genre g] [-published d] [-description d]", "change a book", a.adminBookUpdate},
		"admin book-delete":     {domain.RouteAdminOnly, "admin book-delete <id>", "delete a book", a.adminBookDelete},
		"admin category-add":    {domain.RouteAdminOnly, "admin category-add -name n [-description d]", "add a category", a.adminCategoryAdd},
		"admin category-update": {domain.RouteAdminOnly, "admin category-update <id> [-name n] [-description d]", "change a category", a.adminCategoryUpdate},
		"admin category-delete": {domain.RouteAdminOnly, "admin category-delete <id>", "delete a category", a.adminCategoryDelete},
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.svc.Sessions.Login(ctx, domain.Credentials{
		Email:    a.prompt("Email", *email),
		Password: a.prompt("Password", *password),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s.\n", sess.DisplayName)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	a.svc.Sessions.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) whoami(context.Context, []string) error {
	sess, ok := a.svc.Sessions.Current()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", sess.DisplayName, strings.ToLower(string(sess.Role)))
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	address := fs.String("address", "", "shipping address")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, err := a.svc.Accounts.Register(ctx, domain.Registration{
		Name:        *name,
		Email:       *email,
		Password:    a.prompt("Password", *password),
		Address:     *address,
		PhoneNumber: *phone,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account created for %s. Log in to continue.\n", profile.Email)
	return nil
}

func (a *App) books(ctx context.Context, args []string) error {
	fs := a.flags("books")
	query := fs.String("q", "", "match title, author or genre")
	if err := fs.Parse(args); err != nil {
		return err
	}

	books, err := a.svc.Catalog.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(a.out, "No books available.")
		return nil
	}
	if books = matchBooks(books, *query); len(books) == 0 {
		fmt.Fprintf(a.out, "No books match %q.\n", *query)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPRICE\tSTOCK")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, a.money(b.Price), a.count(b.StockQuantity))
	}
	return tw.Flush()
}

// matchBooks keeps the books whose title, author or genre contains term,
// ignoring case. An empty term keeps everything.
func matchBooks(books []domain.Book, term string) []domain.Book {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return books
	}
	var out []domain.Book
	for _, b := range books {
		for _, field := range []string{b.Title, b.Author, b.Genre} {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

func (a *App) book(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	b, err := a.svc.Catalog.GetBook(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\nby %s\n", b.Title, b.Author)
	fmt.Fprintf(a.out, "Price: %s\n", a.money(b.Price))
	if b.StockQuantity > 0 {
		fmt.Fprintf(a.out, "In stock: %s\n", a.count(b.StockQuantity))
	} else {
		fmt.Fprintln(a.out, "Out of stock")
	}
	for _, f := range [][2]string{
		{"Genre", b.Genre},
		{"Publisher", b.Publisher},
		{"Language", b.Language},
	} {
		if f[1] != "" {
			fmt.Fprintf(a.out, "%s: %s\n", f[0], f[1])
		}
	}
	if !b.PublishedDate.IsZero() {
		fmt.Fprintf(a.out, "Published: %s\n", b.PublishedDate.Format("January 2, 2006"))
	}
	if b.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", b.Description)
	}
	return nil
}

func (a *App) categories(ctx context.Context, _ []string) error {
	cats, err := a.svc.Catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	return tw.Flush()
}

func (a *App) category(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c, err := a.svc.Catalog.GetCategory(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, c.Name)
	if c.Description != "" {
		fmt.Fprintln(a.out, c.Description)
	}
	return nil
}

func (a *App) cartShow(_ context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	cart := a.svc.Cart.Snapshot()
	if cart.IsEmpty() {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY\tSUBTOTAL")
	for _, l := range cart.Lines() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.Item.ID, l.Item.Title, a.money(l.Item.Price), a.count(l.Quantity), a.money(l.Subtotal()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Items: %s  Total: %s\n", a.count(cart.TotalQuantity()), a.money(cart.TotalPrice()))
	return nil
}

// cartAdd checks stock against the catalog; the cart itself never does.
func (a *App) cartAdd(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return domain.NewValidationError("Quantity must be a positive number")
		}
		qty = n
	}

	b, err := a.svc.Catalog.GetBook(ctx, args[0])
	if err != nil {
		return err
	}

	inCart := 0
	if l, ok := a.svc.Cart.Snapshot().Line(b.ID); ok {
		inCart = l.Quantity
	}
	if inCart+qty > b.StockQuantity {
		return domain.NewValidationError(a.printer.Sprintf("Only %d copies of %s are in stock", b.StockQuantity, b.Title))
	}

	if err := a.svc.Cart.AddItem(ctx, b.Ref(), qty); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s x %s to your cart.\n", a.count(qty), b.Title)
	return nil
}

func (a *App) cartRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.svc.Cart.RemoveItem(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed.")
	return nil
}

func (a *App) cartSet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return domain.NewValidationError("Quantity must be a number")
	}
	if err := a.svc.Cart.SetQuantity(ctx, args[0], qty); err != nil {
		return err
	}
	return a.cartShow(ctx, nil)
}

func (a *App) cartClear(ctx context.Context, _ []string) error {
	if err := a.svc.Cart.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Your cart is empty.")
	return nil
}

func (a *App) checkout(ctx context.Context, _ []string) error {
	order, err := a.svc.Orders.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s placed. Total: %s\n", order.ID, a.money(order.TotalAmount))
	return nil
}

func (a *App) orders(ctx context.Context, _ []string) error {
	orders, err := a.svc.Orders.History(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "You have no orders yet.")
		return nil
	}
	return a.printOrders(orders, false)
}

func (a *App) profile(ctx context.Context, args []string) error {
	fs := a.flags("profile")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	address := fs.String("address", "", "shipping address")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	update := domain.ProfileUpdate{Name: *name, Email: *email, Address: *address, PhoneNumber: *phone}
	var (
		p   domain.Profile
		err error
	)
	if update == (domain.ProfileUpdate{}) {
		p, err = a.svc.Accounts.Profile(ctx)
	} else {
		p, err = a.svc.Accounts.UpdateProfile(ctx, update)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Name:    %s\nEmail:   %s\nRole:    %s\n", p.Name, p.Email, strings.ToLower(string(p.Role)))
	if p.Address != "" {
		fmt.Fprintf(a.out, "Address: %s\n", p.Address)
	}
	if p.PhoneNumber != "" {
		fmt.Fprintf(a.out, "Phone:   %s\n", p.PhoneNumber)
	}
	return nil
}

func (a *App) passwd(ctx context.Context, args []string) error {
	fs := a.flags("passwd")
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.svc.Accounts.ChangePassword(ctx, a.prompt("Current password", *current), a.prompt("New password", *next))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

func (a *App) adminOrders(ctx context.Context, _ []string) error {
	orders, err := a.svc.Orders.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders.")
		return nil
	}
	return a.printOrders(orders, true)
}

func (a *App) adminStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	status, ok := domain.ParseOrderStatus(args[1])
	if !ok {
		// rejected by the order service
		status = domain.OrderStatus(args[1])
	}
	order, err := a.svc.Orders.UpdateStatus(ctx, args[0], status)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s is now %s.\n", order.ID, a.status(order.Status))
	return nil
}

func (a *App) adminBookAdd(ctx context.Context, args []string) error {
	fs := a.flags("book-add")
	title := fs.String("title", "", "title")
	author := fs.String("author", "", "author")
	price := fs.String("price", "", "price, e.g. 12.50")
	stock := fs.Int("stock", 0, "copies in stock")
	genre := fs.String("genre", "", "genre")
	published := fs.String("published", "", "publication date, YYYY-MM-DD")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := decimal.NewFromString(*price)
	if err != nil || p.IsNegative() {
		return domain.NewValidationError("Price must be a non-negative amount")
	}
	b := domain.Book{
		Title:         *title,
		Author:        *author,
		Price:         p,
		StockQuantity: *stock,
		Genre:         *genre,
		Description:   *description,
	}
	if *published != "" {
		d, err := time.Parse("2006-01-02", *published)
		if err != nil {
			return domain.NewValidationError("Published date must be YYYY-MM-DD")
		}
		b.PublishedDate = d
	}

	created, err := a.svc.Catalog.CreateBook(ctx, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Book %s created.\n", created.ID)
	return nil
}

// adminBookUpdate sends the stored book with only the given flags applied.
func (a *App) adminBookUpdate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	fs := a.flags("book-update")
	fs.String("title", "", "title")
	fs.String("author", "", "author")
	fs.String("price", "", "price, e.g. 12.50")
	fs.Int("stock", 0, "copies in stock")
	fs.String("genre", "", "genre")
	fs.String("published", "", "publication date, YYYY-MM-DD")
	fs.String("description", "", "description")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	b, err := a.svc.Catalog.GetBook(ctx, args[0])
	if err != nil {
		return err
	}
	var invalid error
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "title":
			b.Title = v
		case "author":
			b.Author = v
		case "price":
			p, err := decimal.NewFromString(v)
			if err != nil || p.IsNegative() {
				invalid = domain.NewValidationError("Price must be a non-negative amount")
				return
			}
			b.Price = p
		case "stock":
			b.StockQuantity, _ = strconv.Atoi(v)
		case "genre":
			b.Genre = v
		case "published":
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				invalid = domain.NewValidationError("Published date must be YYYY-MM-DD")
				return
			}
			b.PublishedDate = d
		case "description":
			b.Description = v
		}
	})
	if invalid != nil {
		return invalid
	}

	updated, err := a.svc.Catalog.UpdateBook(ctx, b.ID, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Book %s updated.\n", updated.ID)
	return nil
}

func (a *App) adminBookDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.svc.Catalog.DeleteBook(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Book deleted.")
	return nil
}

func (a *App) adminCategoryAdd(ctx context.Context, args []string) error {
	fs := a.flags("category-add")
	name := fs.String("name", "", "category name")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := a.svc.Catalog.CreateCategory(ctx, domain.Category{Name: *name, Description: *description})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Category %s created.\n", created.ID)
	return nil
}

func (a *App) adminCategoryUpdate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	fs := a.flags("category-update")
	name := fs.String("name", "", "category name")
	description := fs.String("description", "", "description")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	c, err := a.svc.Catalog.GetCategory(ctx, args[0])
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			c.Name = *name
		case "description":
			c.Description = *description
		}
	})

	updated, err := a.svc.Catalog.UpdateCategory(ctx, c.ID, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Category %s updated.\n", updated.Name)
	return nil
}

func (a *App) adminCategoryDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.svc.Catalog.DeleteCategory(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Category deleted.")
	return nil
}

func (a *App) printOrders(orders []domain.Order, withOwner bool) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	if withOwner {
		fmt.Fprintln(tw, "ORDER\tUSER\tDATE\tITEMS\tTOTAL\tSTATUS")
	} else {
		fmt.Fprintln(tw, "ORDER\tDATE\tITEMS\tTOTAL\tSTATUS")
	}
	for _, o := range orders {
		qty := 0
		for _, it := range o.Items {
			qty += it.Quantity
		}
		date := "-"
		if !o.OrderDate.IsZero() {
			date = o.OrderDate.Format("2006-01-02 15:04")
		}
		if withOwner {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.OwnerID, date, a.count(qty), a.money(o.TotalAmount), a.status(o.Status))
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, date, a.count(qty), a.money(o.TotalAmount), a.status(o.Status))
		}
	}
	return tw.Flush()
}
