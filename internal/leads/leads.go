// Package leads sources business prospects from web search and Google Places,
// scrapes contact details, and scores each lead's fit.
package leads

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"aisim/internal/genai"
	"aisim/internal/googleapi"
	"aisim/internal/storage"
)

// qualifyThreshold is the minimum fit score for a lead to qualify.
const qualifyThreshold = 0.7

// detailPace is the fixed delay between Places detail calls.
const detailPace = 100 * time.Millisecond

// LeadStore is the persistence port for sourced leads.
type LeadStore interface {
	UpsertLead(l storage.Lead) error
}

// Criteria narrows a sourcing run.
type Criteria struct {
	Industries []string `json:"industries"`
	Locations  []string `json:"locations"`
	Keywords   []string `json:"keywords"`
	Radius     int      `json:"radius"`
	Limit      int      `json:"limit"`
}

// Service runs the sourcing pipelines.
type Service struct {
	brave   *BraveClient
	google  *googleapi.Client
	scraper *Scraper
	gen     genai.Generator
	store   LeadStore
	log     *logrus.Logger

	pace time.Duration
}

// NewService wires the sourcing clients. pace throttles Places detail calls.
func NewService(brave *BraveClient, google *googleapi.Client, scraper *Scraper, gen genai.Generator, store LeadStore, log *logrus.Logger) *Service {
	return &Service{
		brave:   brave,
		google:  google,
		scraper: scraper,
		gen:     gen,
		store:   store,
		log:     log,
		pace:    detailPace,
	}
}

// GenerateLeads sources leads through web search plus page scraping. Failures
// on individual results are logged and skipped; every sourced lead is
// persisted before return.
func (s *Service) GenerateLeads(ctx context.Context, criteria Criteria) ([]storage.Lead, error) {
	var sourced []storage.Lead

	for _, industry := range criteria.Industries {
		query := fmt.Sprintf("%s companies %s contact", industry, strings.Join(criteria.Keywords, " "))
		results, err := s.brave.Search(ctx, query, criteria.Limit)
		if err != nil {
			s.log.WithError(err).WithField("industry", industry).Error("Web search failed")
			continue
		}

		for rank, result := range results {
			info, err := s.scraper.Fetch(ctx, result.URL)
			if err != nil {
				s.log.WithError(err).WithField("url", result.URL).Warn("Failed to scrape company page")
				info = CompanyInfo{Name: "Unknown Company"}
			}

			name := info.Name
			if name == "" || name == "Unknown Company" {
				name = result.Title
			}

			lead := storage.Lead{
				ID:            fmt.Sprintf("lead_%s", uuid.New().String()),
				CompanyName:   name,
				Website:       result.URL,
				Industry:      industry,
				ContactEmail:  info.Email,
				EstimatedSize: estimateCompanySize(info),
				Source:        "brave-search",
				Status:        storage.LeadStatusNew,
				Metadata: map[string]any{
					"description": result.Description,
					"phone":       info.Phone,
					"searchRank":  rank + 1,
				},
				CreatedAt: time.Now().UTC(),
			}
			sourced = append(sourced, lead)
		}
	}

	s.saveLeads(sourced)
	return sourced, nil
}

// GenerateLeadsFromGoogle sources leads through Places text search and the
// per-place detail endpoint, pacing detail calls to respect quota. Lead ids
// are stable per place so re-sourcing updates rather than duplicates.
func (s *Service) GenerateLeadsFromGoogle(ctx context.Context, criteria Criteria) ([]storage.Lead, error) {
	var sourced []storage.Lead

	for _, industry := range criteria.Industries {
		for _, location := range criteria.Locations {
			places, err := s.google.SearchBusinesses(ctx, industry+" companies", location)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"industry": industry,
					"location": location,
				}).Error("Places search failed")
				continue
			}

			if len(places) > 10 {
				places = places[:10]
			}
			limit := criteria.Limit
			if limit > 0 && len(places) > limit {
				places = places[:limit]
			}

			for _, place := range places {
				details, err := s.google.BusinessDetails(ctx, place.PlaceID)
				if err != nil {
					s.log.WithError(err).WithField("place_id", place.PlaceID).Warn("Places details failed")
					s.sleep(ctx)
					continue
				}

				meta := map[string]any{
					"placeId":     place.PlaceID,
					"address":     place.FormattedAddress,
					"phone":       details.FormattedPhoneNumber,
					"rating":      place.Rating,
					"reviewCount": place.UserRatingsTotal,
					"location": map[string]float64{
						"lat": place.Geometry.Location.Lat,
						"lng": place.Geometry.Location.Lng,
					},
				}
				if details.OpeningHours != nil {
					meta["openingHours"] = details.OpeningHours.WeekdayText
				}
				if len(details.Reviews) > 0 {
					reviews := details.Reviews
					if len(reviews) > 3 {
						reviews = reviews[:3]
					}
					meta["reviews"] = reviews
				}

				lead := storage.Lead{
					ID:            fmt.Sprintf("google_%s", place.PlaceID),
					CompanyName:   place.Name,
					Website:       details.Website,
					Industry:      industry,
					EstimatedSize: estimateCompanySizeFromGoogle(place, details),
					Source:        "google-places",
					Status:        storage.LeadStatusNew,
					Metadata:      meta,
					CreatedAt:     time.Now().UTC(),
				}
				sourced = append(sourced, lead)

				s.sleep(ctx)
			}
		}
	}

	s.saveLeads(sourced)
	return sourced, nil
}

// QualifyLeads scores each lead and keeps those at or above the threshold,
// advancing their status to qualified.
func (s *Service) QualifyLeads(ctx context.Context, sourced []storage.Lead) []storage.Lead {
	var qualified []storage.Lead
	for i := range sourced {
		score := s.fitScore(ctx, sourced[i])
		if score < qualifyThreshold {
			continue
		}
		sourced[i].Status = storage.LeadStatusQualified
		if sourced[i].Metadata == nil {
			sourced[i].Metadata = map[string]any{}
		}
		sourced[i].Metadata["fitScore"] = score
		if err := s.store.UpsertLead(sourced[i]); err != nil {
			s.log.WithError(err).WithField("lead_id", sourced[i].ID).Error("Failed to save qualified lead")
		}
		qualified = append(qualified, sourced[i])
	}
	return qualified
}

// fitScore asks the model for a 0-1 score. Anything unparseable defaults to
// the neutral 0.5.
func (s *Service) fitScore(ctx context.Context, lead storage.Lead) float64 {
	prompt := fmt.Sprintf(`Evaluate this lead for our AI automated ad company:

Company: %s
Industry: %s
Website: %s
Size: %s

Score from 0-1 based on:
1. Likelihood they need digital advertising
2. Budget availability
3. Technical sophistication
4. Current digital presence

Return only a number between 0 and 1.`,
		lead.CompanyName, lead.Industry, lead.Website, lead.EstimatedSize)

	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.log.WithError(err).WithField("lead_id", lead.ID).Warn("Fit scoring failed, using default")
		return 0.5
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || score < 0 || score > 1 {
		return 0.5
	}
	return score
}

func (s *Service) saveLeads(sourced []storage.Lead) {
	for _, lead := range sourced {
		if err := s.store.UpsertLead(lead); err != nil {
			s.log.WithError(err).WithField("lead_id", lead.ID).Error("Failed to save lead")
		}
	}
}

func (s *Service) sleep(ctx context.Context) {
	if s.pace <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.pace):
	}
}

// estimateCompanySize grades a scraped lead by how much contact info the site
// exposes.
func estimateCompanySize(info CompanyInfo) string {
	switch {
	case info.Email != "" && info.Phone != "":
		return "medium"
	case info.Email != "" || info.Phone != "":
		return "small"
	default:
		return "startup"
	}
}

// estimateCompanySizeFromGoogle grades a Places lead by review volume, rating,
// and contact surface.
func estimateCompanySizeFromGoogle(place googleapi.Place, details *googleapi.PlaceDetails) string {
	hasWebsite := details.Website != ""
	hasPhone := details.FormattedPhoneNumber != ""

	switch {
	case place.UserRatingsTotal > 100 && place.Rating > 4.0 && hasWebsite && hasPhone:
		return "large"
	case place.UserRatingsTotal > 20 && place.Rating > 3.5 && (hasWebsite || hasPhone):
		return "medium"
	case place.UserRatingsTotal > 0 || hasWebsite || hasPhone:
		return "small"
	default:
		return "startup"
	}
}
