package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v82"

	"aisim/internal/apierrors"
)

// webhookBodyLimit caps the webhook payload read.
const webhookBodyLimit = 64 * 1024

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		respondError(w, http.StatusBadRequest, "Missing stripe-signature header")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read webhook payload")
		return
	}

	if err := s.gateway.HandleWebhook(payload, signature); err != nil {
		s.log.WithError(err).Error("Webhook processing failed")
		if apierrors.Is(err, apierrors.KindSignature) {
			respondError(w, http.StatusBadRequest, "Webhook signature verification failed")
			return
		}
		respondError(w, http.StatusBadRequest, "Webhook processing failed")
		return
	}

	respondOK(w, map[string]bool{"received": true})
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentIntentID := chi.URLParam(r, "paymentIntentId")

	pi, err := s.gateway.PaymentStatus(r.Context(), paymentIntentID)
	if err != nil {
		s.log.WithError(err).Error("Failed to get payment status")
		respondClassified(w, err, "Failed to get payment status")
		return
	}

	respondOK(w, map[string]any{
		"status":   pi.Status,
		"amount":   pi.Amount,
		"currency": pi.Currency,
		"metadata": pi.Metadata,
	})
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "Email and name are required")
		return
	}

	customer, err := s.gateway.CreateCustomer(r.Context(), req.Email, req.Name)
	if err != nil {
		s.log.WithError(err).Error("Failed to create customer")
		respondClassified(w, err, "Failed to create customer")
		return
	}

	respondOK(w, map[string]any{
		"customerId": customer.ID,
		"email":      customer.Email,
		"name":       customer.Name,
	})
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customerId"`
		PriceID    string `json:"priceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomerID == "" || req.PriceID == "" {
		respondError(w, http.StatusBadRequest, "Customer ID and price ID are required")
		return
	}

	sub, err := s.gateway.CreateSubscription(r.Context(), req.CustomerID, req.PriceID)
	if err != nil {
		s.log.WithError(err).Error("Failed to create subscription")
		respondClassified(w, err, "Failed to create subscription")
		return
	}

	respondOK(w, map[string]any{
		"subscriptionId": sub.ID,
		"status":         sub.Status,
		"clientSecret":   subscriptionClientSecret(sub),
	})
}

// subscriptionClientSecret digs the confirmation secret out of the expanded
// latest invoice, empty when not present.
func subscriptionClientSecret(sub *stripe.Subscription) string {
	if sub.LatestInvoice == nil || sub.LatestInvoice.ConfirmationSecret == nil {
		return ""
	}
	return sub.LatestInvoice.ConfirmationSecret.ClientSecret
}

func (s *Server) handleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "customerEmail")

	orders, err := s.store.OrdersByEmail(email)
	if err != nil {
		s.log.WithError(err).Error("Failed to get customer orders")
		respondClassified(w, err, "Failed to get customer orders")
		return
	}
	respondOK(w, orders)
}

func (s *Server) handleDownloadAd(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "adId")

	ad, err := s.store.GetAd(adID)
	if err != nil {
		respondClassified(w, err, "Ad not found")
		return
	}

	doc, err := s.delivery.BuildEmbedDocument(toGeneratedAd(ad))
	if err != nil {
		s.log.WithError(err).Error("Failed to build download package")
		respondError(w, http.StatusInternalServerError, "Failed to download ad package")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="aisim-ad-%s.html"`, adID))
	_, _ = w.Write([]byte(doc))
}
