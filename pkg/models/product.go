package models

// Product is one product card scraped from a listing page.
// A nil field means the card had no matching element.
type Product struct {
	Name  *string
	Price *string // as displayed, e.g. "USh 450,000"
	Link  *string
}

// Row returns the product as CSV cells, nil fields become empty strings.
func (p Product) Row() []string {
	return []string{deref(p.Name), deref(p.Price), deref(p.Link)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr is a helper for building products in code and tests.
func StringPtr(s string) *string {
	return &s
}
