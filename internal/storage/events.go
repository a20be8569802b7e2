package storage

import (
	"encoding/json"
	"time"

	"aisim/internal/apierrors"
)

// Analytics event types.
const (
	EventImpression = "impression"
	EventClick      = "click"
	EventClose      = "close"
	EventConversion = "conversion"
)

// AnalyticsEvent is an append-only record of end-user ad interaction.
type AnalyticsEvent struct {
	ID        string         `json:"id"`
	AdID      string         `json:"adId"`
	EventType string         `json:"eventType"`
	Timestamp time.Time      `json:"timestamp"`
	URL       string         `json:"url"`
	Referrer  string         `json:"referrer,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// PerformanceRow holds the per-ad aggregate counts and rates.
type PerformanceRow struct {
	AdID           string  `json:"adId"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversionRate"`
}

// DashboardRow holds the cross-ad aggregates for the fixed 30-day window.
type DashboardRow struct {
	TotalAds              int64   `json:"totalAds"`
	TotalImpressions      int64   `json:"totalImpressions"`
	TotalClicks           int64   `json:"totalClicks"`
	TotalConversions      int64   `json:"totalConversions"`
	AverageCTR            float64 `json:"averageCTR"`
	AverageConversionRate float64 `json:"averageConversionRate"`
}

// TopAdRow is one entry of the top-performing-ads listing.
type TopAdRow struct {
	AdID        string  `json:"adId"`
	CTR         float64 `json:"ctr"`
	Conversions int64   `json:"conversions"`
}

// RealTimeRow holds the last-hour counters scoped to events from the last day.
type RealTimeRow struct {
	ActiveAds           int64 `json:"activeAds"`
	ImpressionsLastHour int64 `json:"impressionsLastHour"`
	ClicksLastHour      int64 `json:"clicksLastHour"`
	ConversionsLastHour int64 `json:"conversionsLastHour"`
}

// InsertEvent appends an analytics event.
func (d *DB) InsertEvent(e AnalyticsEvent) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "marshal event metadata", err)
	}

	_, err = d.sql.Exec(`
		INSERT INTO analytics_events (id, ad_id, event_type, timestamp, url, referrer, user_agent, ip_address, metadata)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, '')::inet, $9)`,
		e.ID, e.AdID, e.EventType, e.Timestamp, e.URL, e.Referrer, e.UserAgent, e.IPAddress, meta,
	)
	if err != nil {
		return apierrors.Wrap(apierrors.KindPersistence, "insert event", err)
	}
	return nil
}

// AdPerformance aggregates counts and NULL-safe rates for one ad in a window.
// A missing ad or empty window yields an all-zero row, never an error.
func (d *DB) AdPerformance(adID string, start, end time.Time) (PerformanceRow, error) {
	row := d.sql.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE event_type = 'impression') AS impressions,
			COUNT(*) FILTER (WHERE event_type = 'click') AS clicks,
			COUNT(*) FILTER (WHERE event_type = 'conversion') AS conversions,
			COALESCE(COUNT(*) FILTER (WHERE event_type = 'click')::float
				/ NULLIF(COUNT(*) FILTER (WHERE event_type = 'impression'), 0) * 100, 0) AS ctr,
			COALESCE(COUNT(*) FILTER (WHERE event_type = 'conversion')::float
				/ NULLIF(COUNT(*) FILTER (WHERE event_type = 'click'), 0) * 100, 0) AS conversion_rate
		FROM analytics_events
		WHERE ad_id = $1 AND timestamp >= $2 AND timestamp <= $3`,
		adID, start, end)

	p := PerformanceRow{AdID: adID}
	if err := row.Scan(&p.Impressions, &p.Clicks, &p.Conversions, &p.CTR, &p.ConversionRate); err != nil {
		return PerformanceRow{AdID: adID}, apierrors.Wrap(apierrors.KindPersistence, "ad performance", err)
	}
	return p, nil
}

// Dashboard aggregates across all ads over the last 30 days.
func (d *DB) Dashboard() (DashboardRow, []TopAdRow, error) {
	row := d.sql.QueryRow(`
		SELECT
			COUNT(DISTINCT ad_id) AS total_ads,
			COUNT(*) FILTER (WHERE event_type = 'impression') AS total_impressions,
			COUNT(*) FILTER (WHERE event_type = 'click') AS total_clicks,
			COUNT(*) FILTER (WHERE event_type = 'conversion') AS total_conversions,
			COALESCE(COUNT(*) FILTER (WHERE event_type = 'click')::float
				/ NULLIF(COUNT(*) FILTER (WHERE event_type = 'impression'), 0) * 100, 0) AS avg_ctr,
			COALESCE(COUNT(*) FILTER (WHERE event_type = 'conversion')::float
				/ NULLIF(COUNT(*) FILTER (WHERE event_type = 'click'), 0) * 100, 0) AS avg_conversion_rate
		FROM analytics_events
		WHERE timestamp >= NOW() - INTERVAL '30 days'`)

	var dash DashboardRow
	if err := row.Scan(&dash.TotalAds, &dash.TotalImpressions, &dash.TotalClicks,
		&dash.TotalConversions, &dash.AverageCTR, &dash.AverageConversionRate); err != nil {
		return DashboardRow{}, nil, apierrors.Wrap(apierrors.KindPersistence, "dashboard metrics", err)
	}

	rows, err := d.sql.Query(`
		SELECT
			ad_id,
			COUNT(*) FILTER (WHERE event_type = 'click')::float
				/ NULLIF(COUNT(*) FILTER (WHERE event_type = 'impression'), 0) * 100 AS ctr,
			COUNT(*) FILTER (WHERE event_type = 'conversion') AS conversions
		FROM analytics_events
		WHERE timestamp >= NOW() - INTERVAL '30 days'
		GROUP BY ad_id
		HAVING COUNT(*) FILTER (WHERE event_type = 'impression') > 0
		ORDER BY ctr DESC
		LIMIT 10`)
	if err != nil {
		return DashboardRow{}, nil, apierrors.Wrap(apierrors.KindPersistence, "top ads", err)
	}
	defer rows.Close()

	var top []TopAdRow
	for rows.Next() {
		var t TopAdRow
		if err := rows.Scan(&t.AdID, &t.CTR, &t.Conversions); err != nil {
			return DashboardRow{}, nil, apierrors.Wrap(apierrors.KindPersistence, "scan top ad", err)
		}
		top = append(top, t)
	}
	return dash, top, rows.Err()
}

// RealTime counts last-hour activity among events from the last 24 hours.
func (d *DB) RealTime() (RealTimeRow, error) {
	row := d.sql.QueryRow(`
		SELECT
			COUNT(DISTINCT ad_id) AS active_ads,
			COUNT(*) FILTER (WHERE event_type = 'impression' AND timestamp >= NOW() - INTERVAL '1 hour') AS impressions_last_hour,
			COUNT(*) FILTER (WHERE event_type = 'click' AND timestamp >= NOW() - INTERVAL '1 hour') AS clicks_last_hour,
			COUNT(*) FILTER (WHERE event_type = 'conversion' AND timestamp >= NOW() - INTERVAL '1 hour') AS conversions_last_hour
		FROM analytics_events
		WHERE timestamp >= NOW() - INTERVAL '24 hours'`)

	var rt RealTimeRow
	if err := row.Scan(&rt.ActiveAds, &rt.ImpressionsLastHour, &rt.ClicksLastHour, &rt.ConversionsLastHour); err != nil {
		return RealTimeRow{}, apierrors.Wrap(apierrors.KindPersistence, "realtime metrics", err)
	}
	return rt, nil
}
