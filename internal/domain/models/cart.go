package models

// CartLine is one product/quantity pair. Quantity is always at least 1.
type CartLine struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"qty"`
}

// Cart is the ordered set of lines selected by the user, unique by product id.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find returns the index of the line for productID, or -1.
func (c Cart) Find(productID string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// Units sums the quantities of every line.
func (c Cart) Units() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Clone returns a deep copy safe to hand out to readers.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
