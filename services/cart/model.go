package cart

import (
	"github.com/MarcGrol/storefront/services/catalog"
)

// LineItem is a product in the cart together with its quantity.
type LineItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

func (li LineItem) Subtotal() int64 {
	return li.Price * int64(li.Quantity)
}

type View struct {
	Items []LineItem `json:"items"`
	Total int64      `json:"total"`
	Count int        `json:"count"`
	Empty bool       `json:"empty"`
}

type AddItemRequest struct {
	ProductID string `form:"productId"`
}
