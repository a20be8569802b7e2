// Package payment adapts the Stripe API: payment intents for the package
// catalog, customers, subscriptions, and verified webhook dispatch.
package payment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"aisim/internal/apierrors"
	"aisim/internal/storage"
)

// OrderStore is the persistence port the gateway writes through.
type OrderStore interface {
	UpsertOrder(o storage.Order) error
	RecordPaymentFailure(paymentIntentID string, amount int64, currency, reason string) error
	MarkWebhookSeen(eventID, eventType string) (bool, error)
}

// Gateway wraps the Stripe client.
type Gateway struct {
	api           *client.API
	webhookSecret string
	store         OrderStore
	log           *logrus.Logger
}

// NewGateway initializes the Stripe client with the secret key.
func NewGateway(secretKey, webhookSecret string, store OrderStore, log *logrus.Logger) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{
		api:           api,
		webhookSecret: webhookSecret,
		store:         store,
		log:           log,
	}
}

// CreatePaymentIntent opens a payment for a catalog package. The amount
// always comes from the catalog, never from the request.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, packageID, customerEmail string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	pkg, ok := PackageByID(packageID)
	if !ok {
		return nil, apierrors.New(apierrors.KindValidation, "invalid package ID")
	}

	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(pkg.Price),
		Currency:     stripe.String(string(stripe.CurrencyUSD)),
		ReceiptEmail: stripe.String(customerEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("packageId", pkg.ID)
	params.AddMetadata("packageName", pkg.Name)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindUpstream, "create payment intent", err)
	}
	return pi, nil
}

// CreateCustomer registers a customer with the payment provider.
func (g *Gateway) CreateCustomer(ctx context.Context, email, name string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("source", "aisim-ad-automation")

	c, err := g.api.Customers.New(params)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindUpstream, "create customer", err)
	}
	return c, nil
}

// CreateSubscription opens a recurring subscription in default_incomplete
// mode so the client confirms the first invoice's payment intent.
func (g *Gateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.confirmation_secret")

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindUpstream, "create subscription", err)
	}
	return sub, nil
}

// PaymentStatus fetches the current state of a payment intent.
func (g *Gateway) PaymentStatus(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindUpstream, fmt.Sprintf("retrieve payment intent %s", paymentIntentID), err)
	}
	return pi, nil
}
