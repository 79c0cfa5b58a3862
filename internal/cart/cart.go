// Package cart builds a sale line by line and submits it once.
package cart

import (
	"errors"
	"strings"
	"sync"

	"caixa/internal/api"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const QuantityPlaces = 3

var (
	ErrEmpty           = errors.New("cart is empty")
	ErrNoPaymentMethod = errors.New("payment method not chosen")
	ErrBadMethod       = errors.New("unknown payment method")
	ErrBadQuantity     = errors.New("quantity must be positive")
	ErrUnknownLine     = errors.New("product not in cart")
)

type Line struct {
	ProductID string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

func (l Line) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Round(2)
}

// Cart is safe for concurrent use. Lines keep insertion order.
type Cart struct {
	mu     sync.Mutex
	lines  []Line
	method api.PaymentMethod
	nfe    string
	key    string
}

func New() *Cart {
	return &Cart{}
}

// Add puts qty of product in the cart, merging with an existing line.
func (c *Cart) Add(p api.Product, qty decimal.Decimal) error {
	qty = qty.Round(QuantityPlaces)
	if !qty.IsPositive() {
		return ErrBadQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = ""
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity = c.lines[i].Quantity.Add(qty)
			return nil
		}
	}
	c.lines = append(c.lines, Line{ProductID: p.ID, Name: p.Name, Quantity: qty, UnitPrice: p.Price})
	return nil
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (c *Cart) SetQuantity(productID string, qty decimal.Decimal) error {
	qty = qty.Round(QuantityPlaces)
	if qty.IsNegative() {
		return ErrBadQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		c.key = ""
		if qty.IsZero() {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = qty
		}
		return nil
	}
	return ErrUnknownLine
}

func (c *Cart) Remove(productID string) error {
	return c.SetQuantity(productID, decimal.Zero)
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Cart) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) SetPaymentMethod(m api.PaymentMethod) error {
	if !m.Valid() {
		return ErrBadMethod
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method = m
	c.key = ""
	return nil
}

func (c *Cart) SetNFe(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nfe = strings.TrimSpace(key)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.method = ""
	c.nfe = ""
	c.key = ""
}

// Request builds the sale payload and its idempotency key. The key stays
// the same until the cart changes, so resubmitting after a lost response
// cannot create a second sale.
func (c *Cart) Request() (api.CreateSaleRequest, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return api.CreateSaleRequest{}, "", ErrEmpty
	}
	if c.method == "" {
		return api.CreateSaleRequest{}, "", ErrNoPaymentMethod
	}
	if c.key == "" {
		c.key = uuid.NewString()
	}
	req := api.CreateSaleRequest{
		PaymentMethod: c.method,
		Total:         c.totalLocked(),
		NFe:           c.nfe,
		Items:         make([]api.SaleItem, 0, len(c.lines)),
	}
	for _, l := range c.lines {
		req.Items = append(req.Items, api.SaleItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total(),
		})
	}
	return req, c.key, nil
}
