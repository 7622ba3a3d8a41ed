package cart

import "errors"

var (
	ErrOutOfStock    = errors.New("requested quantity is out of stock")
	ErrAddProduct    = errors.New("failed to add product")
	ErrRemoveProduct = errors.New("failed to remove product")
	ErrUpdateAmount  = errors.New("failed to change product quantity")
	ErrNotInCart     = errors.New("product is not in the cart")
)
