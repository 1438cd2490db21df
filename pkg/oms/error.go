package oms

import "errors"

var (
	errDuplicateOrder     = errors.New("duplicate order")
	errOrderIDNotFound    = errors.New("orderID not found")
	errStaleClOrdID       = errors.New("origClOrdID is not the latest clOrdID")
	errUnknownSide        = errors.New("unknown side")
	errUnknownTimeInForce = errors.New("unknown time in force")
	errInvalidPrice       = errors.New("invalid price")
	errInvalidQuantity    = errors.New("invalid quantity")
	errRiskRule           = errors.New("risk rule rejected order")
)

// IsOrderNotFound reports whether a cancel or modify targeted an order that
// is no longer live.
func IsOrderNotFound(err error) bool {
	return errors.Is(err, errOrderIDNotFound)
}

// IsDuplicateOrder reports whether a request reused a live OrderID or a
// ClOrdID held by another live order.
func IsDuplicateOrder(err error) bool {
	return errors.Is(err, errDuplicateOrder)
}
