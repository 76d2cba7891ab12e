package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"orderharvest/internal/harvest"
	"orderharvest/internal/orders"
)

// describe turns err into the line printed before exiting, with a hint on
// how to recover where there is one.
func describe(err error) string {
	var inputErr *orders.UserInputError
	if errors.As(err, &inputErr) {
		return inputErr.Reason
	}

	var corruptErr *orders.CorruptStateError
	if errors.As(err, &corruptErr) {
		return fmt.Sprintf("%v\nrun `orderharvest reset` to discard it", err)
	}

	var transportErr *orders.TransportError
	if errors.As(err, &transportErr) {
		switch transportErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Sprintf("%v\nthe session cookie is missing or expired, log in again and update storefront.session_cookie", err)
		}
	}

	var loopErr *harvest.LoopError
	if errors.As(err, &loopErr) || errors.Is(err, harvest.ErrMaxPages) {
		return fmt.Sprintf("%v\nnothing was saved", err)
	}

	if errors.Is(err, context.Canceled) {
		return "interrupted, nothing was saved"
	}
	return err.Error()
}
