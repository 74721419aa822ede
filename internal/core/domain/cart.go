package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartLine is one item of a Cart. Inside a Cart its Quantity is always >= 1.
type CartLine struct {
	Item     CatalogItemRef `json:"item"`
	Quantity int            `json:"quantity"`
}

// Subtotal is price times quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines with at most one line per item id and
// every quantity >= 1. Transitions never modify the receiver; they return
// a new Cart, so a value handed out earlier stays stable.
type Cart struct {
	lines []CartLine
}

// RestoreCart rebuilds a cart from persisted lines, re-applying the merge
// and positivity rules.
func RestoreCart(lines []CartLine) Cart {
	var c Cart
	for _, l := range lines {
		c = c.Add(l.Item, l.Quantity)
	}
	return c
}

// Add merges quantity into the existing line for item.ID or appends a new
// line. A non-positive quantity leaves the cart unchanged.
func (c Cart) Add(item CatalogItemRef, quantity int) Cart {
	if quantity <= 0 {
		return c
	}
	next := c.clone()
	if i := c.index(item.ID); i >= 0 {
		next.lines[i].Quantity += quantity
		return next
	}
	next.lines = append(next.lines, CartLine{Item: item, Quantity: quantity})
	return next
}

// Remove drops the line for itemID; an unknown id is a no-op.
func (c Cart) Remove(itemID string) Cart {
	i := c.index(itemID)
	if i < 0 {
		return c
	}
	next := Cart{lines: make([]CartLine, 0, len(c.lines)-1)}
	next.lines = append(next.lines, c.lines[:i]...)
	next.lines = append(next.lines, c.lines[i+1:]...)
	return next
}

// SetQuantity replaces the quantity of an existing line in place. A
// quantity <= 0 removes the line; an unknown item id is a no-op.
func (c Cart) SetQuantity(itemID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(itemID)
	}
	i := c.index(itemID)
	if i < 0 {
		return c
	}
	next := c.clone()
	next.lines[i].Quantity = quantity
	return next
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []CartLine {
	return c.clone().lines
}

func (c Cart) Line(itemID string) (CartLine, bool) {
	i := c.index(itemID)
	if i < 0 {
		return CartLine{}, false
	}
	return c.lines[i], true
}

func (c Cart) Len() int {
	return len(c.lines)
}

func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalPrice is the sum of every line's Subtotal.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.lines)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*c = RestoreCart(lines)
	return nil
}

func (c Cart) index(itemID string) int {
	for i, l := range c.lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	if c.lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.lines))
	copy(lines, c.lines)
	return Cart{lines: lines}
}
