package cartdto

// Quantity bounds mirror cart.MaxLineQuantity.

// AddItemRequest snapshots the product as the storefront displayed it.
type AddItemRequest struct {
	ProductID  string  `json:"product_id" validate:"required,max=128"`
	Title      string  `json:"title" validate:"required,max=255"`
	VendorName string  `json:"vendor_name" validate:"required,max=255"`
	UnitPrice  string  `json:"unit_price" validate:"required,price"`
	ImageURL   *string `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	Quantity   *int    `json:"quantity,omitempty" validate:"omitempty,max=9999"`
}

// UpdateQuantityRequest sets an absolute quantity; zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=9999"`
}
