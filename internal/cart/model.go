package cart

// LineItem is one product+size(+color) entry in the cart. Identity is
// CartItemID rather than ProductID: the same product in another size or
// color is a separate line.
type LineItem struct {
	CartItemID string   `json:"cartItemId"`
	ProductID  string   `json:"productId"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Quantity   int      `json:"quantity"`
	Size       string   `json:"size"`
	Color      string   `json:"color,omitempty"`
	MainImage  string   `json:"mainImage,omitempty"`
	Images     []string `json:"images,omitempty"`
}

func (li LineItem) clone() LineItem {
	out := li
	if li.Images != nil {
		out.Images = make([]string, len(li.Images))
		copy(out.Images, li.Images)
	}
	return out
}
