package orderbook

import "errors"

// ErrInvalidFill reports a fill larger than an order's remaining quantity.
// The matching loop never produces one; reaching it is a bug.
var ErrInvalidFill = errors.New("invalid fill")
