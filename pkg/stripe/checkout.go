package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
)

// CheckoutAPI exposes the subset of Stripe checkout operations used by the
// donation services so they can be tested against stubs.
type CheckoutAPI interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetSession(ctx context.Context, id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type checkoutWrapper struct{}

// NewCheckoutAPI wraps the initialized Stripe client for checkout calls.
func NewCheckoutAPI(api *Client) CheckoutAPI {
	if api == nil {
		return nil
	}
	return &checkoutWrapper{}
}

func (w *checkoutWrapper) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return session.New(params)
}

func (w *checkoutWrapper) GetSession(ctx context.Context, id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params == nil {
		params = &stripe.CheckoutSessionParams{}
	}
	params.Context = ctx
	return session.Get(id, params)
}
