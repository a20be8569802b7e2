package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"aisim/internal/adgen"
	"aisim/internal/analytics"
	"aisim/internal/storage"
)

// toGeneratedAd rebuilds the pipeline shape from a stored row so the delivery
// builders can run against persisted ads.
func toGeneratedAd(ad *storage.Ad) *adgen.GeneratedAd {
	return &adgen.GeneratedAd{
		ID:         ad.ID,
		HTML:       ad.HTML,
		CSS:        ad.CSS,
		JavaScript: ad.JavaScript,
		Preview:    ad.Preview,
	}
}

func (s *Server) handleGetAd(w http.ResponseWriter, r *http.Request) {
	ad, err := s.store.GetAd(chi.URLParam(r, "adId"))
	if err != nil {
		respondClassified(w, err, "Ad not found")
		return
	}
	respondOK(w, ad)
}

func (s *Server) handleListAds(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	ads, total, err := s.store.ListAds(limit, (page-1)*limit)
	if err != nil {
		s.log.WithError(err).Error("Failed to list ads")
		respondClassified(w, err, "Failed to list ads")
		return
	}
	if ads == nil {
		ads = []storage.AdSummary{}
	}

	pages := (total + limit - 1) / limit
	respondOK(w, map[string]any{
		"ads": ads,
		"pagination": map[string]int{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

func (s *Server) handleAdPerformance(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "adId")

	var start, end time.Time
	if v := r.URL.Query().Get("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			start = t
		}
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			end = t
		}
	}

	respondOK(w, s.analytics.AdPerformance(adID, start, end))
}

func (s *Server) handleDeployAd(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "adId")

	var req struct {
		Website string `json:"website"`
		Method  string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Website == "" || req.Method == "" {
		respondError(w, http.StatusBadRequest, "Website and method are required")
		return
	}

	ad, err := s.store.GetAd(adID)
	if err != nil {
		respondClassified(w, err, "Ad not found")
		return
	}

	respondOK(w, s.delivery.Deploy(toGeneratedAd(ad), req.Website, req.Method))
}

func (s *Server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "adId")
	eventType := chi.URLParam(r, "eventType")

	var req analytics.TrackRequest
	// The popup script posts fire-and-forget; an empty or malformed body still
	// counts the event.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.URL == "" {
		req.URL = r.Referer()
	}
	if req.URL == "" {
		req.URL = "unknown"
	}
	if req.Referrer == "" {
		req.Referrer = r.Referer()
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}
	req.IPAddress = r.RemoteAddr

	if _, err := s.analytics.TrackEvent(adID, eventType, req); err != nil {
		s.log.WithError(err).Error("Failed to track event")
		respondClassified(w, err, "Failed to track event")
		return
	}
	eventsTracked.WithLabelValues(eventType).Inc()

	respondOK(w, map[string]string{"message": "Event tracked successfully"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, s.analytics.Dashboard())
}

func (s *Server) handleRealTime(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, s.analytics.RealTime())
}

func (s *Server) handleEmbedAd(w http.ResponseWriter, r *http.Request) {
	adID := chi.URLParam(r, "adId")

	ad, err := s.store.GetAd(adID)
	if err != nil {
		respondClassified(w, err, "Ad not found")
		return
	}

	doc, err := s.delivery.BuildEmbedDocument(toGeneratedAd(ad))
	if err != nil {
		s.log.WithError(err).Error("Failed to build embed document")
		respondError(w, http.StatusInternalServerError, "Failed to embed ad")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}
