package enums

// CartOperation names a cart service call for logs and metrics labels.
type CartOperation string

const (
	CartOperationGet            CartOperation = "get"
	CartOperationAdd            CartOperation = "add"
	CartOperationRemove         CartOperation = "remove"
	CartOperationUpdateQuantity CartOperation = "update_quantity"
	CartOperationClear          CartOperation = "clear"
	CartOperationOpen           CartOperation = "open"
	CartOperationClose          CartOperation = "close"
)

// String implements fmt.Stringer.
func (o CartOperation) String() string {
	return string(o)
}

// Mutates reports whether the operation writes the cart back to storage.
func (o CartOperation) Mutates() bool {
	return o != CartOperationGet && o != ""
}
