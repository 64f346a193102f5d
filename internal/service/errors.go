package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("no items in cart")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrAddressRequired      = errors.New("delivery address is required")
	ErrAddressNotFound      = errors.New("address not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
	ErrTotalMismatch        = errors.New("cart total does not match current prices")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidStatus        = errors.New("status cannot be set by admin")
	ErrStatusLocked         = errors.New("order is managed by delivery and can no longer be edited")
	ErrNotCancellable       = errors.New("order can only be cancelled while pending or confirmed")
	ErrInvalidAmount        = errors.New("invalid amount")

	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrDuplicateSKU       = errors.New("product with this SKU already exists")
	ErrDuplicateCategory  = errors.New("category with this name already exists")
	ErrProductInUse       = errors.New("cannot delete product, it is part of existing orders")
	ErrCategoryInUse      = errors.New("cannot delete category, it still has products")
	ErrMissingFields      = errors.New("please provide all required fields")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrInvalidStockAmount = errors.New("stock cannot be negative")

	ErrOrderNotAvailable = errors.New("order is not available for delivery")
	ErrDeliveryNotFound  = errors.New("delivery not found")
	ErrDeliveryDone      = errors.New("delivery already completed")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidPeriod      = errors.New("invalid period")
)

// StockError 某商品库存不足；errors.Is(err, ErrInsufficientStock) 为真
type StockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("not enough stock for %s (product %s): requested %d, available %d",
		name, e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
