package cartdto

// CartView is the cart snapshot returned by every cart endpoint. Money is
// rendered as fixed two-decimal strings so clients never see float drift.
type CartView struct {
	SessionID  string     `json:"session_id"`
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice string     `json:"total_price"`
	IsOpen     bool       `json:"is_open"`
}

// CartLine is one product entry inside CartView.
type CartLine struct {
	ProductID  string  `json:"product_id"`
	Title      string  `json:"title"`
	VendorName string  `json:"vendor_name"`
	UnitPrice  string  `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	Subtotal   string  `json:"subtotal"`
	ImageURL   *string `json:"image_url,omitempty"`
}
