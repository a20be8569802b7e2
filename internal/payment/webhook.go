package payment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"aisim/internal/apierrors"
	"aisim/internal/storage"
)

// HandleWebhook verifies the provider signature and dispatches the event.
// A bad signature is rejected outright; everything after verification is
// deduplicated by the provider's event id, so redelivered events are
// acknowledged without being processed twice.
func (g *Gateway) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return apierrors.Wrap(apierrors.KindSignature, "webhook signature verification failed", err)
	}

	fresh, err := g.store.MarkWebhookSeen(event.ID, string(event.Type))
	if err != nil {
		return err
	}
	if !fresh {
		g.log.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Info("Duplicate webhook delivery, skipping")
		return nil
	}

	return g.dispatch(event)
}

func (g *Gateway) dispatch(event stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		return g.handlePaymentSucceeded(event)
	case "payment_intent.payment_failed":
		return g.handlePaymentFailed(event)
	case "customer.subscription.created":
		return g.handleSubscriptionCreated(event)
	default:
		// Unknown types are dropped for forward compatibility.
		g.log.WithField("event_type", event.Type).Info("Unhandled webhook event type")
		return nil
	}
}

func (g *Gateway) handlePaymentSucceeded(event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return apierrors.Wrap(apierrors.KindUpstream, "decode payment intent", err)
	}

	g.log.WithField("payment_intent", pi.ID).Info("Payment succeeded")

	metadata := make(map[string]any, len(pi.Metadata))
	for k, v := range pi.Metadata {
		metadata[k] = v
	}

	order := storage.Order{
		ID:              fmt.Sprintf("order_%s", uuid.New().String()),
		CustomerEmail:   pi.ReceiptEmail,
		PackageID:       pi.Metadata["packageId"],
		Amount:          pi.Amount,
		Status:          "paid",
		PaymentIntentID: pi.ID,
		Metadata:        metadata,
		CreatedAt:       time.Now().UTC(),
	}
	if err := g.store.UpsertOrder(order); err != nil {
		return err
	}

	// Ad creation for paid orders runs through /api/intake/generate-ad once
	// the customer returns to the wizard; nothing to schedule here yet.
	g.log.WithField("payment_intent", pi.ID).Info("Order recorded, ad creation available")
	return nil
}

func (g *Gateway) handlePaymentFailed(event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return apierrors.Wrap(apierrors.KindUpstream, "decode payment intent", err)
	}

	reason := "Payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}

	g.log.WithFields(logrus.Fields{
		"payment_intent": pi.ID,
		"reason":         reason,
	}).Warn("Payment failed")

	return g.store.RecordPaymentFailure(pi.ID, pi.Amount, string(pi.Currency), reason)
}

func (g *Gateway) handleSubscriptionCreated(event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return apierrors.Wrap(apierrors.KindUpstream, "decode subscription", err)
	}

	// Recurring ad generation is not scheduled; the subscription is only
	// acknowledged here.
	g.log.WithField("subscription", sub.ID).Info("Subscription created")
	return nil
}
