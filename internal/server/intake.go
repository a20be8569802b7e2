package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"aisim/internal/adgen"
	"aisim/internal/analytics"
	"aisim/internal/intake"
	"aisim/internal/leads"
	"aisim/internal/payment"
	"aisim/internal/prospect"
	"aisim/internal/storage"
)

func (s *Server) handleIntakeSubmit(w http.ResponseWriter, r *http.Request) {
	var form adgen.IntakeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	validation := intake.ValidateForm(form)
	if !validation.Valid {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Error:   "Invalid form data",
			Details: validation.Errors,
		})
		return
	}

	preview, err := s.ads.GenerateAd(r.Context(), form, "preview")
	if err != nil {
		s.log.WithError(err).Error("Failed to generate ad preview")
		respondClassified(w, err, "Failed to process intake form")
		return
	}
	adsGenerated.Inc()

	// A completed brief is itself a conversion, tracked against the synthetic
	// intake_form ad id. Failure to record it never blocks the response.
	_, err = s.analytics.TrackEvent("intake_form", storage.EventConversion, analytics.TrackRequest{
		URL:       r.Referer(),
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
		IPAddress: r.RemoteAddr,
		Metadata:  map[string]any{"businessName": form.BusinessName, "industry": form.Industry},
	})
	if err != nil {
		s.log.WithError(err).Warn("Failed to track intake submission")
	} else {
		eventsTracked.WithLabelValues(storage.EventConversion).Inc()
	}

	respondOK(w, map[string]any{
		"adPreview": preview,
		"packages":  payment.Packages,
	})
}

func (s *Server) handleGetPackages(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, payment.Packages)
}

func (s *Server) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackageID     string          `json:"packageId"`
		CustomerEmail string          `json:"customerEmail"`
		FormData      adgen.IntakeForm `json:"formData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PackageID == "" || req.CustomerEmail == "" {
		respondError(w, http.StatusBadRequest, "Package ID and customer email are required")
		return
	}

	pi, err := s.gateway.CreatePaymentIntent(r.Context(), req.PackageID, req.CustomerEmail, map[string]string{
		"businessName": req.FormData.BusinessName,
		"industry":     req.FormData.Industry,
	})
	if err != nil {
		s.log.WithError(err).Error("Failed to create payment intent")
		respondClassified(w, err, "Failed to create payment intent")
		return
	}

	respondOK(w, map[string]any{
		"clientSecret":    pi.ClientSecret,
		"paymentIntentId": pi.ID,
	})
}

func (s *Server) handleGenerateAd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		adgen.IntakeForm
		PaymentIntentID string `json:"paymentIntentId"`
		PackageID       string `json:"packageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	validation := intake.ValidateForm(req.IntakeForm)
	if !validation.Valid {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Error:   "Invalid form data",
			Details: validation.Errors,
		})
		return
	}

	packageType := req.PackageID
	if packageType == "" {
		packageType = "pkg_basic"
	}

	ad, err := s.ads.GenerateAd(r.Context(), req.IntakeForm, packageType)
	if err != nil {
		s.log.WithError(err).Error("Failed to generate final ad")
		respondClassified(w, err, "Failed to generate final ad")
		return
	}
	adsGenerated.Inc()

	record := storage.Ad{
		ID:              ad.ID,
		PaymentIntentID: req.PaymentIntentID,
		HTML:            ad.HTML,
		CSS:             ad.CSS,
		JavaScript:      ad.JavaScript,
		Preview:         ad.Preview,
		Metadata: map[string]any{
			"package":        ad.Metadata.Package,
			"brandCompliant": ad.Metadata.BrandCompliant,
			"estimatedCTR":   ad.Metadata.EstimatedCTR,
		},
		CreatedAt: ad.Metadata.CreatedAt,
	}
	if err := s.store.InsertAd(record); err != nil {
		s.log.WithError(err).WithField("ad_id", ad.ID).Error("Failed to save generated ad")
		respondClassified(w, err, "Failed to save generated ad")
		return
	}

	respondOK(w, ad)
}

func (s *Server) handleGoogleLeads(w http.ResponseWriter, r *http.Request) {
	var criteria leads.Criteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(criteria.Industries) == 0 || len(criteria.Locations) == 0 {
		respondError(w, http.StatusBadRequest, "Industries and locations are required")
		return
	}
	if criteria.Radius == 0 {
		criteria.Radius = 50000
	}
	if criteria.Limit == 0 {
		criteria.Limit = 10
	}

	sourced, err := s.leads.GenerateLeadsFromGoogle(r.Context(), criteria)
	if err != nil {
		s.log.WithError(err).Error("Failed to generate Google leads")
		respondClassified(w, err, "Failed to generate Google leads")
		return
	}

	if s.outreach != nil && len(sourced) > 0 {
		// Qualification mutates its input, so the detached run gets a copy.
		go s.runOutreach(cloneLeads(sourced))
	}

	respondOK(w, map[string]any{
		"leads": sourced,
		"count": len(sourced),
	})
}

func cloneLeads(in []storage.Lead) []storage.Lead {
	out := make([]storage.Lead, len(in))
	for i, l := range in {
		meta := make(map[string]any, len(l.Metadata))
		for k, v := range l.Metadata {
			meta[k] = v
		}
		l.Metadata = meta
		out[i] = l
	}
	return out
}

// runOutreach qualifies freshly sourced leads and opens a campaign over the
// ones that score. It runs detached from the request so sourcing responds
// immediately; send pacing makes campaigns slow by design.
func (s *Server) runOutreach(sourced []storage.Lead) {
	ctx := context.Background()

	qualified := s.leads.QualifyLeads(ctx, sourced)
	if len(qualified) == 0 {
		s.log.Info("No sourced leads qualified for outreach")
		return
	}

	campaign, err := s.outreach.CreateCampaign(ctx, qualified, prospect.DefaultTemplate)
	if err != nil {
		s.log.WithError(err).Error("Outreach campaign failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"leads":       len(qualified),
		"sent":        campaign.Metrics.Sent,
	}).Info("Outreach campaign completed")
}

func (s *Server) handleAdInspiration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Industry string   `json:"industry"`
		Keywords []string `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Industry == "" {
		respondError(w, http.StatusBadRequest, "Industry is required")
		return
	}

	videos, err := s.google.AdInspiration(r.Context(), req.Industry, req.Keywords)
	if err != nil {
		s.log.WithError(err).Error("Failed to get ad inspiration")
		respondClassified(w, err, "Failed to get ad inspiration")
		return
	}
	respondOK(w, videos)
}

func (s *Server) handleValidateGoogle(w http.ResponseWriter, r *http.Request) {
	ks := s.google.ValidateKey(r.Context())
	respondOK(w, map[string]any{
		"valid": ks.Valid,
		"quota": map[string]string{
			"status":        ks.Status,
			"error_message": ks.ErrorMessage,
		},
	})
}
