package services

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/cafe-pos/models"
)

// Cart is a transient, ordered list of lines awaiting checkout. The unit price
// of a line is the item's price at the moment it was added.
type Cart struct {
	lines []CartLine
}

func (c *Cart) Add(item models.MenuItem, quantity int) (CartLine, error) {
	if quantity < 1 {
		verr := &ValidationError{}
		verr.add("quantity", "must be positive")
		return CartLine{}, verr
	}
	if !item.Active {
		return CartLine{}, ErrItemUnavailable
	}
	line := CartLine{
		MenuItemID: item.ID,
		Quantity:   quantity,
		UnitPrice:  item.Price,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	return append([]CartLine(nil), c.lines...)
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Subtotal() decimal.Decimal {
	return ComputeTotals(c.lines).Subtotal
}

func (c *Cart) Clear() {
	c.lines = nil
}

// CartRegistry keeps one cart per till terminal.
type CartRegistry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[string]*Cart)}
}

func (r *CartRegistry) cart(terminal string) *Cart {
	c, ok := r.carts[terminal]
	if !ok {
		c = &Cart{}
		r.carts[terminal] = c
	}
	return c
}

// Add resolves itemID in the catalog and appends a line to the terminal's cart.
func (r *CartRegistry) Add(terminal string, cache *CatalogCache, itemID uint, quantity int) ([]CartLine, error) {
	item, err := cache.Resolve(itemID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cart(terminal)
	if _, err := c.Add(item, quantity); err != nil {
		return nil, err
	}
	return c.Lines(), nil
}

// Lines returns the terminal's lines. Looking up a terminal without a cart
// does not create one.
func (r *CartRegistry) Lines(terminal string) []CartLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[terminal]
	if !ok {
		return nil
	}
	return c.Lines()
}

// Terminals reports how many terminals currently hold a cart.
func (r *CartRegistry) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

func (r *CartRegistry) Clear(terminal string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, terminal)
}

// Checkout commits the terminal's cart and clears it only when the commit
// succeeds. The registry stays locked for the duration of the commit so a
// second checkout cannot submit the same lines twice.
func (r *CartRegistry) Checkout(terminal string, commit func([]CartLine) (uint, error)) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[terminal]
	if !ok || c.Len() == 0 {
		return 0, ErrEmptyCart
	}
	orderID, err := commit(c.Lines())
	if err != nil {
		return 0, err
	}
	c.Clear()
	return orderID, nil
}
