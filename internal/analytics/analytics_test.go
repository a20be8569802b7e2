package analytics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aisim/internal/storage"
)

// fakeEventStore is an in-memory EventStore with switchable failure.
type fakeEventStore struct {
	events []storage.AnalyticsEvent
	fail   bool

	performance storage.PerformanceRow
	dashboard   storage.DashboardRow
	topAds      []storage.TopAdRow
	realtime    storage.RealTimeRow
}

var errStore = errors.New("connection refused")

func (f *fakeEventStore) InsertEvent(e storage.AnalyticsEvent) error {
	if f.fail {
		return errStore
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventStore) AdPerformance(adID string, _, _ time.Time) (storage.PerformanceRow, error) {
	if f.fail {
		return storage.PerformanceRow{}, errStore
	}
	row := f.performance
	row.AdID = adID
	return row, nil
}

func (f *fakeEventStore) Dashboard() (storage.DashboardRow, []storage.TopAdRow, error) {
	if f.fail {
		return storage.DashboardRow{}, nil, errStore
	}
	return f.dashboard, f.topAds, nil
}

func (f *fakeEventStore) RealTime() (storage.RealTimeRow, error) {
	if f.fail {
		return storage.RealTimeRow{}, errStore
	}
	return f.realtime, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestTrackEvent(t *testing.T) {
	store := &fakeEventStore{}
	svc := NewService(store, testLogger())

	event, err := svc.TrackEvent("ad_1", storage.EventImpression, TrackRequest{URL: "https://acme.com"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(event.ID, "event_"))
	assert.Equal(t, "ad_1", event.AdID)
	assert.Equal(t, storage.EventImpression, event.EventType)
	assert.False(t, event.Timestamp.IsZero())
	require.Len(t, store.events, 1)
}

func TestTrackEvent_StoreFailurePropagates(t *testing.T) {
	svc := NewService(&fakeEventStore{fail: true}, testLogger())

	_, err := svc.TrackEvent("ad_1", storage.EventClick, TrackRequest{})
	assert.Error(t, err)
}

func TestAdPerformance_DefaultWindow(t *testing.T) {
	store := &fakeEventStore{performance: storage.PerformanceRow{Impressions: 10, Clicks: 5, CTR: 50}}
	svc := NewService(store, testLogger())

	perf := svc.AdPerformance("ad_1", time.Time{}, time.Time{})
	assert.Equal(t, int64(10), perf.Impressions)
	assert.Equal(t, "ad_1", perf.AdID)

	// Zero times default to a 30-day window ending now.
	assert.WithinDuration(t, time.Now().UTC(), perf.End, time.Minute)
	assert.WithinDuration(t, perf.End.AddDate(0, 0, -30), perf.Start, time.Minute)
}

func TestAdPerformance_ZeroedOnStoreFailure(t *testing.T) {
	svc := NewService(&fakeEventStore{fail: true}, testLogger())

	perf := svc.AdPerformance("nonexistent-ad-id", time.Time{}, time.Time{})
	assert.Equal(t, "nonexistent-ad-id", perf.AdID)
	assert.Zero(t, perf.Impressions)
	assert.Zero(t, perf.Clicks)
	assert.Zero(t, perf.Conversions)
	assert.Zero(t, perf.CTR)
	assert.Zero(t, perf.ConversionRate)
}

func TestDashboard_Idempotent(t *testing.T) {
	store := &fakeEventStore{
		dashboard: storage.DashboardRow{TotalAds: 3, TotalImpressions: 100, TotalClicks: 10, AverageCTR: 10},
		topAds:    []storage.TopAdRow{{AdID: "ad_1", CTR: 50}},
	}
	svc := NewService(store, testLogger())

	first := svc.Dashboard()
	second := svc.Dashboard()
	assert.Equal(t, first, second)
	assert.Equal(t, int64(3), first.TotalAds)
	require.Len(t, first.TopPerformingAds, 1)
}

func TestDashboard_ZeroedOnStoreFailure(t *testing.T) {
	svc := NewService(&fakeEventStore{fail: true}, testLogger())

	dash := svc.Dashboard()
	assert.Zero(t, dash.TotalAds)
	assert.Zero(t, dash.AverageCTR)
	assert.NotNil(t, dash.TopPerformingAds)
	assert.Empty(t, dash.TopPerformingAds)
}

func TestDashboard_NilTopAdsBecomesEmptySlice(t *testing.T) {
	svc := NewService(&fakeEventStore{}, testLogger())

	dash := svc.Dashboard()
	assert.NotNil(t, dash.TopPerformingAds)
}

func TestRealTime_ZeroedOnStoreFailure(t *testing.T) {
	svc := NewService(&fakeEventStore{fail: true}, testLogger())

	rt := svc.RealTime()
	assert.Zero(t, rt.ActiveAds)
	assert.Zero(t, rt.ImpressionsLastHour)
}
