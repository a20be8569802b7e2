package storage

import (
	"encoding/json"
	"time"

	"aisim/internal/apierrors"
)

// Order is a paid purchase of an ad package.
type Order struct {
	ID              string         `json:"id"`
	CustomerEmail   string         `json:"customerEmail"`
	PackageID       string         `json:"packageId"`
	Amount          int64          `json:"amount"`
	Status          string         `json:"status"`
	PaymentIntentID string         `json:"paymentIntentId"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// CustomerOrder is an order joined with the generated ad it paid for.
type CustomerOrder struct {
	Order
	AdHTML       string `json:"html,omitempty"`
	AdCSS        string `json:"css,omitempty"`
	AdJavaScript string `json:"javascript,omitempty"`
	AdPreview    string `json:"preview,omitempty"`
}

// UpsertOrder writes an order keyed by the payment intent id, the stable
// identifier carried by the provider's webhook. Duplicate deliveries update
// the row in place instead of inserting a second order.
func (d *DB) UpsertOrder(o Order) error {
	meta, err := json.Marshal(o.Metadata)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "marshal order metadata", err)
	}

	_, err = d.sql.Exec(`
		INSERT INTO orders (id, customer_email, package_id, amount, status, stripe_payment_intent_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (stripe_payment_intent_id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = NOW()`,
		o.ID, o.CustomerEmail, o.PackageID, o.Amount, o.Status, o.PaymentIntentID, meta, o.CreatedAt,
	)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "upsert order", err)
	}
	return nil
}

// OrdersByEmail lists a customer's orders, newest first, joined with any ad
// generated against the same payment intent.
func (d *DB) OrdersByEmail(email string) ([]CustomerOrder, error) {
	rows, err := d.sql.Query(`
		SELECT o.id, o.customer_email, o.package_id, o.amount, o.status,
		       COALESCE(o.stripe_payment_intent_id, ''), COALESCE(o.metadata, '{}'::jsonb), o.created_at,
		       COALESCE(a.html, ''), COALESCE(a.css, ''), COALESCE(a.javascript, ''), COALESCE(a.preview, '')
		FROM orders o
		LEFT JOIN ads a ON o.stripe_payment_intent_id = a.payment_intent_id
		WHERE o.customer_email = $1
		ORDER BY o.created_at DESC`, email)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindPersistence, "orders by email", err)
	}
	defer rows.Close()

	var orders []CustomerOrder
	for rows.Next() {
		var o CustomerOrder
		var meta []byte
		if err := rows.Scan(&o.ID, &o.CustomerEmail, &o.PackageID, &o.Amount, &o.Status,
			&o.PaymentIntentID, &meta, &o.CreatedAt,
			&o.AdHTML, &o.AdCSS, &o.AdJavaScript, &o.AdPreview); err != nil {
			return nil, apierrors.Wrap(apierrors.KindPersistence, "scan order", err)
		}
		_ = json.Unmarshal(meta, &o.Metadata)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// RecordPaymentFailure appends to the payment failure log.
func (d *DB) RecordPaymentFailure(paymentIntentID string, amount int64, currency, reason string) error {
	_, err := d.sql.Exec(`
		INSERT INTO payment_failures (stripe_payment_intent_id, amount, currency, failure_reason)
		VALUES ($1, $2, $3, $4)`,
		paymentIntentID, amount, currency, reason,
	)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "record payment failure", err)
	}
	return nil
}

// MarkWebhookSeen records a webhook event id. It returns false when the id
// was already recorded, signalling a duplicate delivery to skip.
func (d *DB) MarkWebhookSeen(eventID, eventType string) (bool, error) {
	res, err := d.sql.Exec(`
		INSERT INTO webhook_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING`,
		eventID, eventType,
	)
	if err != nil {
		return false, apierrors.Wrap(apierrors.KindPersistence, "mark webhook seen", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apierrors.Wrap(apierrors.KindPersistence, "mark webhook seen", err)
	}
	return n > 0, nil
}
