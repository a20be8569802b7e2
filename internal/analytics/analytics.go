// Package analytics records ad interaction events and serves the aggregate
// views: per-ad performance, the 30-day dashboard, and the real-time counters.
package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"aisim/internal/storage"
)

// EventStore is the persistence port the service reads and writes through.
type EventStore interface {
	InsertEvent(e storage.AnalyticsEvent) error
	AdPerformance(adID string, start, end time.Time) (storage.PerformanceRow, error)
	Dashboard() (storage.DashboardRow, []storage.TopAdRow, error)
	RealTime() (storage.RealTimeRow, error)
}

// Service fronts the event store. Reads degrade to zeroed aggregates when the
// store fails so dashboards render instead of erroring.
type Service struct {
	store EventStore
	log   *logrus.Logger
}

func NewService(store EventStore, log *logrus.Logger) *Service {
	return &Service{store: store, log: log}
}

// TrackRequest carries the client-reported context for one event.
type TrackRequest struct {
	URL       string         `json:"url"`
	Referrer  string         `json:"referrer"`
	UserAgent string         `json:"userAgent"`
	IPAddress string         `json:"-"`
	Metadata  map[string]any `json:"metadata"`
}

// TrackEvent appends one interaction event for an ad. The timestamp is
// assigned server-side.
func (s *Service) TrackEvent(adID, eventType string, req TrackRequest) (*storage.AnalyticsEvent, error) {
	event := storage.AnalyticsEvent{
		ID:        fmt.Sprintf("event_%s", uuid.New().String()),
		AdID:      adID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		URL:       req.URL,
		Referrer:  req.Referrer,
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
		Metadata:  req.Metadata,
	}
	if err := s.store.InsertEvent(event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Performance is the per-ad report with its query window echoed back.
type Performance struct {
	storage.PerformanceRow
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AdPerformance aggregates one ad over [start, end]. Zero times default to
// the last 30 days.
func (s *Service) AdPerformance(adID string, start, end time.Time) Performance {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}

	row, err := s.store.AdPerformance(adID, start, end)
	if err != nil {
		s.log.WithError(err).WithField("ad_id", adID).Warn("Ad performance query failed, returning zeroed metrics")
		row = storage.PerformanceRow{AdID: adID}
	}
	return Performance{PerformanceRow: row, Start: start, End: end}
}

// DashboardReport combines the cross-ad aggregates with the top performers.
type DashboardReport struct {
	storage.DashboardRow
	TopPerformingAds []storage.TopAdRow `json:"topPerformingAds"`
}

// Dashboard returns the fixed 30-day cross-ad view.
func (s *Service) Dashboard() DashboardReport {
	dash, top, err := s.store.Dashboard()
	if err != nil {
		s.log.WithError(err).Warn("Dashboard query failed, returning zeroed metrics")
		return DashboardReport{TopPerformingAds: []storage.TopAdRow{}}
	}
	if top == nil {
		top = []storage.TopAdRow{}
	}
	return DashboardReport{DashboardRow: dash, TopPerformingAds: top}
}

// RealTime returns the last-hour counters.
func (s *Service) RealTime() storage.RealTimeRow {
	rt, err := s.store.RealTime()
	if err != nil {
		s.log.WithError(err).Warn("Real-time query failed, returning zeroed metrics")
		return storage.RealTimeRow{}
	}
	return rt
}
