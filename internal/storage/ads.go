package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"aisim/internal/apierrors"
)

// Ad is a generated popup ad. Rows are immutable once written.
type Ad struct {
	ID              string         `json:"id"`
	PaymentIntentID string         `json:"paymentIntentId,omitempty"`
	HTML            string         `json:"html"`
	CSS             string         `json:"css"`
	JavaScript      string         `json:"javascript"`
	Preview         string         `json:"preview,omitempty"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// AdSummary is the listing shape: code blobs omitted.
type AdSummary struct {
	ID              string         `json:"id"`
	PaymentIntentID string         `json:"paymentIntentId,omitempty"`
	Preview         string         `json:"preview,omitempty"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// InsertAd stores a newly generated ad.
func (d *DB) InsertAd(a Ad) error {
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "marshal ad metadata", err)
	}

	_, err = d.sql.Exec(`
		INSERT INTO ads (id, payment_intent_id, html, css, javascript, preview, metadata, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)`,
		a.ID, a.PaymentIntentID, a.HTML, a.CSS, a.JavaScript, a.Preview, meta, a.CreatedAt,
	)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "insert ad", err)
	}
	return nil
}

// GetAd fetches an ad by id.
func (d *DB) GetAd(id string) (*Ad, error) {
	row := d.sql.QueryRow(`
		SELECT id, COALESCE(payment_intent_id, ''), html, css, javascript,
		       COALESCE(preview, ''), COALESCE(metadata, '{}'::jsonb), created_at
		FROM ads WHERE id = $1`, id)

	var a Ad
	var meta []byte
	err := row.Scan(&a.ID, &a.PaymentIntentID, &a.HTML, &a.CSS, &a.JavaScript, &a.Preview, &meta, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.KindNotFound, "ad not found")
	}
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindPersistence, "get ad", err)
	}
	_ = json.Unmarshal(meta, &a.Metadata)
	return &a, nil
}

// ListAds returns one page of ads, newest first, plus the total row count.
func (d *DB) ListAds(limit, offset int) ([]AdSummary, int, error) {
	rows, err := d.sql.Query(`
		SELECT id, COALESCE(payment_intent_id, ''), COALESCE(preview, ''),
		       COALESCE(metadata, '{}'::jsonb), created_at
		FROM ads
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apierrors.Wrap(apierrors.KindPersistence, "list ads", err)
	}
	defer rows.Close()

	var ads []AdSummary
	for rows.Next() {
		var a AdSummary
		var meta []byte
		if err := rows.Scan(&a.ID, &a.PaymentIntentID, &a.Preview, &meta, &a.CreatedAt); err != nil {
			return nil, 0, apierrors.Wrap(apierrors.KindPersistence, "scan ad", err)
		}
		_ = json.Unmarshal(meta, &a.Metadata)
		ads = append(ads, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apierrors.Wrap(apierrors.KindPersistence, "list ads", err)
	}

	var total int
	if err := d.sql.QueryRow(`SELECT COUNT(*) FROM ads`).Scan(&total); err != nil {
		return nil, 0, apierrors.Wrap(apierrors.KindPersistence, "count ads", err)
	}
	return ads, total, nil
}
