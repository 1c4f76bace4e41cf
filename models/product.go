package models

// Variant is a purchasable SKU of a product.
type Variant struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Product is the resolved identity of a product page.
type Product struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	URL      string    `json:"url" yaml:"url"`
	Variants []Variant `json:"variants" yaml:"variants"`
}

// SelectableVariants returns the product's variants, or a single variant
// carrying the product ID and title when the page exposed none.
func (p *Product) SelectableVariants() []Variant {
	if len(p.Variants) > 0 {
		return p.Variants
	}
	return []Variant{{ID: p.ID, Title: p.Title}}
}
