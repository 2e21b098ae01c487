package domain

import "time"

// CartLine is one product inside a cart. Price is the unit price captured
// when the product was first added; later catalog edits do not touch it.
type CartLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

// Cart holds the lines of one checkout session. It lives only in memory and
// is never persisted; losing it on session end is accepted behavior. The
// session store serializes access, so the type carries no lock of its own.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart() *Cart {
	return &Cart{UpdatedAt: time.Now()}
}

// Add puts one unit of the product into the cart. If a line for the product
// already exists its quantity grows by one, keeping at most one line per
// product id.
func (c *Cart) Add(p Product) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			c.touch()
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Quantity:    1,
	})
	c.touch()
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op, not an error.
func (c *Cart) Remove(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return
		}
	}
}

// IncrementQuantity adds one to the line for productID; no-op if absent.
func (c *Cart) IncrementQuantity(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity++
			c.touch()
			return
		}
	}
}

// DecrementQuantity subtracts one from the line for productID but clamps at
// 1. It never removes the line; emptying the cart is only possible through
// Remove. No-op if the product is absent.
func (c *Cart) DecrementQuantity(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			if c.Lines[i].Quantity > 1 {
				c.Lines[i].Quantity--
			}
			c.touch()
			return
		}
	}
}

// Total returns the sum of price*quantity over all lines. Integer math only.
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Price * int64(l.Quantity)
	}
	return total
}

func (c *Cart) Len() int { return len(c.Lines) }

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Clear drops every line. Called after a successful checkout.
func (c *Cart) Clear() {
	c.Lines = nil
	c.touch()
}

func (c *Cart) touch() { c.UpdatedAt = time.Now() }
