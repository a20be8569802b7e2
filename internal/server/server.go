// Package server wires the HTTP surface: chi routing, request middleware, and
// the handlers fronting every service.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"aisim/internal/adgen"
	"aisim/internal/analytics"
	"aisim/internal/delivery"
	"aisim/internal/googleapi"
	"aisim/internal/leads"
	"aisim/internal/payment"
	"aisim/internal/prospect"
	"aisim/internal/storage"
)

// Store is the persistence surface the handlers touch directly. *storage.DB
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	InsertAd(a storage.Ad) error
	GetAd(id string) (*storage.Ad, error)
	ListAds(limit, offset int) ([]storage.AdSummary, int, error)
	OrdersByEmail(email string) ([]storage.CustomerOrder, error)
	Ping() error
}

// Server holds every service the handlers dispatch to.
type Server struct {
	log       *logrus.Logger
	store     Store
	ads       *adgen.Service
	analytics *analytics.Service
	gateway   *payment.Gateway
	google    *googleapi.Client
	leads     *leads.Service
	delivery  *delivery.Dispatcher

	// outreach is nil when no email provider is configured; sourced leads are
	// then left at status "new".
	outreach *prospect.Service
	started  time.Time
}

// New assembles a server over its constructor-injected dependencies.
func New(log *logrus.Logger, store Store, ads *adgen.Service, an *analytics.Service,
	gateway *payment.Gateway, google *googleapi.Client, leadSvc *leads.Service,
	dispatcher *delivery.Dispatcher, outreach *prospect.Service) *Server {
	return &Server{
		log:       log,
		store:     store,
		ads:       ads,
		analytics: an,
		gateway:   gateway,
		google:    google,
		leads:     leadSvc,
		delivery:  dispatcher,
		outreach:  outreach,
		started:   time.Now(),
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(requestMetrics)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/intake", func(r chi.Router) {
		r.Post("/submit", s.handleIntakeSubmit)
		r.Get("/packages", s.handleGetPackages)
		r.Post("/payment-intent", s.handleCreatePaymentIntent)
		r.Post("/generate-ad", s.handleGenerateAd)
		r.Post("/google-leads", s.handleGoogleLeads)
		r.Post("/ad-inspiration", s.handleAdInspiration)
		r.Get("/validate-google", s.handleValidateGoogle)
	})

	r.Route("/api/payment", func(r chi.Router) {
		r.Post("/webhook", s.handleWebhook)
		r.Get("/status/{paymentIntentId}", s.handlePaymentStatus)
		r.Post("/customer", s.handleCreateCustomer)
		r.Post("/subscription", s.handleCreateSubscription)
		r.Get("/orders/{customerEmail}", s.handleCustomerOrders)
		r.Get("/download/{adId}", s.handleDownloadAd)
	})

	r.Route("/api/ads", func(r chi.Router) {
		r.Get("/", s.handleListAds)
		r.Get("/{adId}", s.handleGetAd)
		r.Get("/{adId}/performance", s.handleAdPerformance)
		r.Post("/{adId}/deploy", s.handleDeployAd)
		r.Post("/{adId}/track/{eventType}", s.handleTrackEvent)
	})

	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/realtime", s.handleRealTime)
	})

	r.Get("/api/embed/{adId}", s.handleEmbedAd)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if err := s.store.Ping(); err != nil {
		status = "degraded"
		s.log.WithError(err).Warn("Health check database ping failed")
	}
	respondOK(w, map[string]any{
		"status": status,
		"uptime": time.Since(s.started).String(),
	})
}
