package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aisim/internal/adgen"
	"aisim/internal/analytics"
	"aisim/internal/apierrors"
	"aisim/internal/brand"
	"aisim/internal/delivery"
	"aisim/internal/googleapi"
	"aisim/internal/leads"
	"aisim/internal/payment"
	"aisim/internal/prospect"
	"aisim/internal/storage"
)

// fakeStore is an in-memory stand-in for *storage.DB covering every port the
// server's services touch. The mutex covers the leads map, which background
// outreach writes while the test polls.
type fakeStore struct {
	mu      sync.Mutex
	ads     map[string]storage.Ad
	events  []storage.AnalyticsEvent
	orders  []storage.Order
	leads   map[string]storage.Lead
	seen    map[string]bool
	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ads:   map[string]storage.Ad{},
		leads: map[string]storage.Lead{},
		seen:  map[string]bool{},
	}
}

func (f *fakeStore) InsertAd(a storage.Ad) error {
	f.ads[a.ID] = a
	return nil
}

func (f *fakeStore) GetAd(id string) (*storage.Ad, error) {
	a, ok := f.ads[id]
	if !ok {
		return nil, apierrors.New(apierrors.KindNotFound, "ad not found")
	}
	return &a, nil
}

func (f *fakeStore) ListAds(limit, offset int) ([]storage.AdSummary, int, error) {
	var out []storage.AdSummary
	for _, a := range f.ads {
		out = append(out, storage.AdSummary{ID: a.ID, Preview: a.Preview, CreatedAt: a.CreatedAt})
	}
	if offset >= len(out) {
		return nil, len(f.ads), nil
	}
	if offset+limit < len(out) {
		out = out[offset : offset+limit]
	}
	return out, len(f.ads), nil
}

func (f *fakeStore) OrdersByEmail(_ string) ([]storage.CustomerOrder, error) {
	return nil, nil
}

func (f *fakeStore) Ping() error { return f.pingErr }

func (f *fakeStore) InsertEvent(e storage.AnalyticsEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeStore) AdPerformance(adID string, _, _ time.Time) (storage.PerformanceRow, error) {
	return storage.PerformanceRow{AdID: adID}, nil
}

func (f *fakeStore) Dashboard() (storage.DashboardRow, []storage.TopAdRow, error) {
	return storage.DashboardRow{TotalAds: 2, TotalImpressions: 40, TotalClicks: 4, AverageCTR: 10},
		[]storage.TopAdRow{{AdID: "ad_best", CTR: 25}}, nil
}

func (f *fakeStore) RealTime() (storage.RealTimeRow, error) {
	return storage.RealTimeRow{}, nil
}

func (f *fakeStore) UpsertOrder(o storage.Order) error {
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeStore) RecordPaymentFailure(_ string, _ int64, _, _ string) error { return nil }

func (f *fakeStore) MarkWebhookSeen(eventID, _ string) (bool, error) {
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeStore) UpsertLead(l storage.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads[l.ID] = l
	return nil
}

func (f *fakeStore) UpdateLeadStatus(id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.leads[id]
	l.Status = status
	f.leads[id] = l
	return nil
}

func (f *fakeStore) leadStatus(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	return l.Status, ok
}

// fakeGenerator returns canned ad copy and counts invocations. Lead-scoring
// prompts get the fixed fit score instead.
type fakeGenerator struct {
	calls int
	fit   string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.calls++
	if f.fit != "" && strings.Contains(prompt, "Score from 0-1") {
		return f.fit, nil
	}
	return `{
		"headline": "Smiles Start Here",
		"subheadline": "Gentle dental care for the whole family",
		"bodyText": "Book today and get a free whitening session.",
		"ctaText": "Book Now",
		"bullets": ["Same-day appointments", "Insurance accepted", "5-star rated"]
	}`, nil
}

type testHarness struct {
	store   *fakeStore
	gen     *fakeGenerator
	handler http.Handler
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := newFakeStore()
	gen := &fakeGenerator{}

	renderer, err := adgen.NewRenderer(brand.AISim, "http://localhost:3000")
	require.NoError(t, err)
	ads := adgen.NewService(gen, renderer, log)

	an := analytics.NewService(store, log)
	gateway := payment.NewGateway("sk_test_fake", "whsec_test_secret", store, log)

	dispatcher, err := delivery.NewDispatcher("http://localhost:3000", log)
	require.NoError(t, err)

	srv := New(log, store, ads, an, gateway, nil, nil, dispatcher, nil)
	return &testHarness{store: store, gen: gen, handler: srv.Router()}
}

// fakeSender records outreach mail.
type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

type responseEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details []string        `json:"details"`
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env responseEnvelope
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func validForm() map[string]any {
	return map[string]any{
		"businessName":    "Acme Dental",
		"businessWebsite": "https://acmedental.com",
		"industry":        "dental",
		"adGoal":          "increase-sales",
		"targetAudience":  "local families",
		"keyMessage":      "Gentle care, modern clinic",
		"callToAction":    "Book Now",
		"ctaLink":         "https://acmedental.com/book",
	}
}

func TestIntakeSubmit(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodPost, "/api/intake/submit", validForm())
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var data struct {
		AdPreview adgen.GeneratedAd `json:"adPreview"`
		Packages  []payment.AdPackage `json:"packages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.True(t, strings.HasPrefix(data.AdPreview.ID, "ad_"))
	assert.NotEmpty(t, data.AdPreview.HTML)
	assert.NotEmpty(t, data.AdPreview.CSS)
	assert.NotEmpty(t, data.AdPreview.JavaScript)
	assert.Contains(t, data.AdPreview.HTML, "Smiles Start Here")
	assert.Len(t, data.Packages, 3)

	// The completed brief lands as a conversion event.
	require.Len(t, h.store.events, 1)
	assert.Equal(t, "intake_form", h.store.events[0].AdID)
	assert.Equal(t, storage.EventConversion, h.store.events[0].EventType)
}

func TestIntakeSubmit_InvalidForm(t *testing.T) {
	h := newTestHarness(t)

	form := validForm()
	delete(form, "businessName")
	delete(form, "ctaLink")

	rec, env := doJSON(t, h.handler, http.MethodPost, "/api/intake/submit", form)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid form data", env.Error)
	assert.Contains(t, env.Details, "Business name is required")
	assert.Contains(t, env.Details, "CTA link is required")

	// Rejected briefs never reach the model.
	assert.Zero(t, h.gen.calls)
}

func TestGetPackages(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodGet, "/api/intake/packages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pkgs []payment.AdPackage
	require.NoError(t, json.Unmarshal(env.Data, &pkgs))
	require.Len(t, pkgs, 3)
	assert.Equal(t, "pkg_basic", pkgs[0].ID)
}

func TestGenerateAd_PersistsRecord(t *testing.T) {
	h := newTestHarness(t)

	body := validForm()
	body["paymentIntentId"] = "pi_test_1"
	body["packageId"] = "pkg_pro"

	rec, env := doJSON(t, h.handler, http.MethodPost, "/api/intake/generate-ad", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var ad adgen.GeneratedAd
	require.NoError(t, json.Unmarshal(env.Data, &ad))
	assert.Equal(t, "pkg_pro", ad.Metadata.Package)

	stored, ok := h.store.ads[ad.ID]
	require.True(t, ok)
	assert.Equal(t, "pi_test_1", stored.PaymentIntentID)
	assert.Equal(t, ad.HTML, stored.HTML)
}

func TestWebhook_BadSignature(t *testing.T) {
	h := newTestHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook",
		strings.NewReader(`{"id": "evt_1", "type": "payment_intent.succeeded"}`))
	req.Header.Set("Stripe-Signature", "t=1234,v1=deadbeef")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Webhook signature verification failed")
	assert.Empty(t, h.store.orders)
}

func TestWebhook_MissingSignatureHeader(t *testing.T) {
	h := newTestHarness(t)

	rec, _ := doJSON(t, h.handler, http.MethodPost, "/api/payment/webhook", map[string]string{"id": "evt_1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmbedAndDownloadAreIdentical(t *testing.T) {
	h := newTestHarness(t)
	require.NoError(t, h.store.InsertAd(storage.Ad{
		ID:         "ad_1",
		HTML:       `<div class="aisim-popup-overlay">x</div>`,
		CSS:        ".aisim-popup-overlay { color: red; }",
		JavaScript: "(function(){})();",
		CreatedAt:  time.Now().UTC(),
	}))

	embed := httptest.NewRecorder()
	h.handler.ServeHTTP(embed, httptest.NewRequest(http.MethodGet, "/api/embed/ad_1", nil))
	require.Equal(t, http.StatusOK, embed.Code)
	assert.Contains(t, embed.Header().Get("Content-Type"), "text/html")

	download := httptest.NewRecorder()
	h.handler.ServeHTTP(download, httptest.NewRequest(http.MethodGet, "/api/payment/download/ad_1", nil))
	require.Equal(t, http.StatusOK, download.Code)
	assert.Contains(t, download.Header().Get("Content-Disposition"), `filename="aisim-ad-ad_1.html"`)

	assert.Equal(t, embed.Body.Bytes(), download.Body.Bytes())
}

func TestGetAd_NotFound(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodGet, "/api/ads/ad_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestListAds_EmptyIsNotNull(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodGet, "/api/ads", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"ads":[]`)
}

func TestAdPerformance_UnknownAdStillResponds(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodGet, "/api/ads/nonexistent-ad-id/performance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var perf analytics.Performance
	require.NoError(t, json.Unmarshal(env.Data, &perf))
	assert.Equal(t, "nonexistent-ad-id", perf.AdID)
	assert.Zero(t, perf.Impressions)
	assert.Zero(t, perf.CTR)
}

func TestTrackEvent_EmptyBodyStillCounts(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodPost, "/api/ads/ad_1/track/click", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	require.Len(t, h.store.events, 1)
	assert.Equal(t, "ad_1", h.store.events[0].AdID)
	assert.Equal(t, storage.EventClick, h.store.events[0].EventType)
	assert.Equal(t, "unknown", h.store.events[0].URL)
}

func TestDeployAd(t *testing.T) {
	h := newTestHarness(t)
	require.NoError(t, h.store.InsertAd(storage.Ad{ID: "ad_1", HTML: "<div/>", CSS: "c", JavaScript: "j"}))

	rec, env := doJSON(t, h.handler, http.MethodPost, "/api/ads/ad_1/deploy", map[string]string{
		"website": "https://acme.com",
		"method":  delivery.MethodIframe,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var target delivery.Target
	require.NoError(t, json.Unmarshal(env.Data, &target))
	assert.Equal(t, "deployed", target.Status)
	assert.NotEmpty(t, target.EmbedCode)
}

func TestGoogleLeads_QualifiesAndOpensOutreach(t *testing.T) {
	places := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/place/textsearch/json":
			_, _ = w.Write([]byte(`{"status": "OK", "results": [{
				"place_id": "place_abc",
				"name": "Acme Dental",
				"formatted_address": "1 Main St",
				"rating": 4.6,
				"user_ratings_total": 120
			}]}`))
		case "/place/details/json":
			_, _ = w.Write([]byte(`{"status": "OK", "result": {
				"name": "Acme Dental",
				"formatted_phone_number": "(408) 555-0000",
				"website": "https://acmedental.com"
			}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer places.Close()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := newFakeStore()
	gen := &fakeGenerator{fit: "0.9"}

	google := googleapi.NewClient("test_key")
	google.PlacesBaseURL = places.URL
	leadSvc := leads.NewService(nil, google, nil, gen, store, log)

	sender := &fakeSender{}
	outreach := prospect.NewService(gen, sender, store, log)

	renderer, err := adgen.NewRenderer(brand.AISim, "http://localhost:3000")
	require.NoError(t, err)
	dispatcher, err := delivery.NewDispatcher("http://localhost:3000", log)
	require.NoError(t, err)

	srv := New(log, store, adgen.NewService(gen, renderer, log), analytics.NewService(store, log),
		payment.NewGateway("sk_test_fake", "whsec_test_secret", store, log),
		google, leadSvc, dispatcher, outreach)
	handler := srv.Router()

	rec, env := doJSON(t, handler, http.MethodPost, "/api/intake/google-leads", map[string]any{
		"industries": []string{"dental"},
		"locations":  []string{"37.0,-122.0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"count":1`)

	// Sourcing persists the lead before responding; qualification runs
	// detached and advances it.
	_, ok := store.leadStatus("google_place_abc")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		status, _ := store.leadStatus("google_place_abc")
		return status == storage.LeadStatusQualified
	}, 3*time.Second, 10*time.Millisecond)

	// Places leads carry no contact email, so the campaign sends nothing.
	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Empty(t, sender.sent)
}

func TestDashboard_Idempotent(t *testing.T) {
	h := newTestHarness(t)

	first, env := doJSON(t, h.handler, http.MethodGet, "/api/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, first.Code)

	second, _ := doJSON(t, h.handler, http.MethodGet, "/api/analytics/dashboard", nil)
	assert.Equal(t, first.Body.String(), second.Body.String())

	var dash analytics.DashboardReport
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.Equal(t, int64(2), dash.TotalAds)
	require.Len(t, dash.TopPerformingAds, 1)
}

func TestHealth(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
}

func TestHealth_DegradedOnPingFailure(t *testing.T) {
	h := newTestHarness(t)
	h.store.pingErr = apierrors.New(apierrors.KindPersistence, "connection refused")

	rec, env := doJSON(t, h.handler, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"status":"degraded"`)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestHarness(t)

	rec, env := doJSON(t, h.handler, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Error)
}
