package cart

import "github.com/prakashtraders/checkout-service/internal/money"

// LineItem is one product entry in the cart. OriginalPrice is the MRP strike
// price; zero means the item is not discounted.
type LineItem struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	UnitPrice     money.Amount `json:"price"`
	OriginalPrice money.Amount `json:"original_price,omitempty"`
	Quantity      int          `json:"qty"`
	ImageURL      string       `json:"image,omitempty"`
}

// Cart holds the line items for one checkout session. Item order is kept for
// display; totals do not depend on it.
type Cart struct {
	Items []LineItem `json:"items"`
}

// SnapshotItem is the id+quantity pair sent to the order service. Prices are
// never trusted from the client side, so they are not part of the snapshot.
type SnapshotItem struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

// Totals is the live price breakdown for a cart.
type Totals struct {
	Subtotal  money.Amount `json:"subtotal"`
	TotalMRP  money.Amount `json:"total_mrp"`
	Discount  money.Amount `json:"discount"`
	Payable   money.Amount `json:"payable"`
	ItemCount int          `json:"item_count"`
}

// New builds a cart from line items, flooring every quantity at 1.
func New(items []LineItem) *Cart {
	out := make([]LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Quantity < 1 {
			out[i].Quantity = 1
		}
	}
	return &Cart{Items: out}
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// AdjustQuantity applies delta to the matching item's quantity, flooring the
// result at 1. Unknown ids are a no-op, not an error.
func (c *Cart) AdjustQuantity(itemID string, delta int) {
	for i := range c.Items {
		if c.Items[i].ID != itemID {
			continue
		}
		q := c.Items[i].Quantity + delta
		if q < 1 {
			q = 1
		}
		c.Items[i].Quantity = q
		return
	}
}

// Snapshot returns the id+quantity pairs for the order-creation request.
func (c *Cart) Snapshot() []SnapshotItem {
	out := make([]SnapshotItem, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, SnapshotItem{ID: it.ID, Qty: it.Quantity})
	}
	return out
}

// ComputeTotals returns the price breakdown. It is pure and never mutates the
// cart. Payable equals subtotal: delivery is free and there is no tax.
// Discount is reported only when the MRP total strictly exceeds the subtotal.
func (c *Cart) ComputeTotals() Totals {
	subtotal := money.Zero()
	totalMRP := money.Zero()
	for _, it := range c.Items {
		subtotal = subtotal.Add(it.UnitPrice.MulQty(it.Quantity))
		orig := it.OriginalPrice
		if orig.IsZero() {
			orig = it.UnitPrice
		}
		totalMRP = totalMRP.Add(orig.MulQty(it.Quantity))
	}
	discount := money.Zero()
	if totalMRP.GreaterThan(subtotal) {
		discount = totalMRP.Sub(subtotal)
	}
	return Totals{
		Subtotal:  subtotal,
		TotalMRP:  totalMRP,
		Discount:  discount,
		Payable:   subtotal,
		ItemCount: len(c.Items),
	}
}
