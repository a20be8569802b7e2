package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"aisim/internal/apierrors"
)

// Lead statuses advance forward only: new -> contacted -> qualified -> converted.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
)

// Lead is a sourced business prospect.
type Lead struct {
	ID            string         `json:"id"`
	CompanyName   string         `json:"companyName"`
	Website       string         `json:"website"`
	Industry      string         `json:"industry"`
	ContactEmail  string         `json:"contactEmail,omitempty"`
	ContactName   string         `json:"contactName,omitempty"`
	EstimatedSize string         `json:"estimatedSize"`
	Source        string         `json:"source"`
	Status        string         `json:"status"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// UpsertLead writes a lead keyed by its caller-stable id, so re-sourcing the
// same place or page updates the existing row instead of duplicating it.
func (d *DB) UpsertLead(l Lead) error {
	meta, err := json.Marshal(l.Metadata)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "marshal lead metadata", err)
	}

	_, err = d.sql.Exec(`
		INSERT INTO leads (id, company_name, website, industry, contact_email, contact_name, estimated_size, source, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			website = EXCLUDED.website,
			industry = EXCLUDED.industry,
			contact_email = EXCLUDED.contact_email,
			contact_name = EXCLUDED.contact_name,
			estimated_size = EXCLUDED.estimated_size,
			source = EXCLUDED.source,
			status = EXCLUDED.status,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()`,
		l.ID, l.CompanyName, l.Website, l.Industry, l.ContactEmail, l.ContactName,
		l.EstimatedSize, l.Source, l.Status, meta, l.CreatedAt,
	)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "upsert lead", err)
	}
	return nil
}

// UpdateLeadStatus advances a lead's status.
func (d *DB) UpdateLeadStatus(id, status string) error {
	res, err := d.sql.Exec(`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "update lead status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apierrors.New(apierrors.KindNotFound, "lead not found")
	}
	return nil
}

// GetLead fetches a single lead by id.
func (d *DB) GetLead(id string) (*Lead, error) {
	row := d.sql.QueryRow(`
		SELECT id, company_name, website, industry,
		       COALESCE(contact_email, ''), COALESCE(contact_name, ''),
		       COALESCE(estimated_size, ''), source, status, COALESCE(metadata, '{}'::jsonb), created_at
		FROM leads WHERE id = $1`, id)

	var l Lead
	var meta []byte
	err := row.Scan(&l.ID, &l.CompanyName, &l.Website, &l.Industry, &l.ContactEmail,
		&l.ContactName, &l.EstimatedSize, &l.Source, &l.Status, &meta, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierrors.New(apierrors.KindNotFound, "lead not found")
	}
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindPersistence, "get lead", err)
	}
	_ = json.Unmarshal(meta, &l.Metadata)
	return &l, nil
}
