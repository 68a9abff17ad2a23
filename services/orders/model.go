package orders

import "encoding/json"

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Order is the payload recorded by the order service.
type Order struct {
	User  Customer `json:"user"`
	Items []Item   `json:"items"`
	Total int64    `json:"total"`
}

// Acknowledgement is the unparsed reply of the order service.
type Acknowledgement json.RawMessage
