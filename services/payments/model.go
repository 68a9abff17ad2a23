package payments

type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Currency string `json:"currency,omitempty"`
	Image    string `json:"image,omitempty"`
}

type createPreferenceRequest struct {
	Items []Item `json:"items"`
}

type createPreferenceResponse struct {
	ID string `json:"id"`
}
