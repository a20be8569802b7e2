package main

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"aisim/internal/googleapi"
)

// CONFIG: queries exercised against each API surface.
var placeQueries = []struct {
	Label string
	Query string
}{
	{"Tech_SF", "software companies in San Francisco"},
	{"Dental_SJ", "dental clinics in San Jose"},
	{"Restaurants_MV", "restaurants in Mountain View"},
}

var videoQueries = []string{
	"saas marketing advertising",
	"restaurant promotion popup",
}

func main() {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		log.Fatal("GOOGLE_API_KEY is not set")
	}

	// Log to console AND a dump file, the raw responses get large.
	f, err := os.Create("google_probe_dump.txt")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	mw := io.MultiWriter(os.Stdout, f)
	logger := log.New(mw, "", log.LstdFlags)

	client := googleapi.NewClient(strings.TrimSpace(apiKey))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Println("========================================")
	logger.Println("   GOOGLE API DIAGNOSTIC PROBE")
	logger.Println("========================================")

	// 1. Key validation first: a disabled key explains everything below.
	status := client.ValidateKey(ctx)
	logger.Printf("Key status: valid=%v status=%q error=%q", status.Valid, status.Status, status.ErrorMessage)
	if !status.Valid {
		logger.Println("Key invalid, remaining probes will likely fail")
	}

	// 2. Places text search + details for one result per query.
	for _, pq := range placeQueries {
		logger.Printf("\nTESTING PLACES: [%s] %s", pq.Label, pq.Query)
		logger.Println(strings.Repeat("-", 50))

		places, err := client.SearchBusinesses(ctx, pq.Query, "")
		if err != nil {
			logger.Printf("   search error: %v", err)
			continue
		}
		logger.Printf("   found %d place(s)", len(places))
		if len(places) == 0 {
			continue
		}

		first := places[0]
		logger.Printf("   first: %s (%s) rating=%.1f reviews=%d",
			first.Name, first.FormattedAddress, first.Rating, first.UserRatingsTotal)

		details, err := client.BusinessDetails(ctx, first.PlaceID)
		if err != nil {
			logger.Printf("   details error: %v", err)
			continue
		}
		logger.Printf("   details: phone=%q website=%q reviews=%d",
			details.FormattedPhoneNumber, details.Website, len(details.Reviews))
	}

	// 3. YouTube search + stats for the first hit.
	for _, vq := range videoQueries {
		logger.Printf("\nTESTING YOUTUBE: %s", vq)
		logger.Println(strings.Repeat("-", 50))

		videos, err := client.SearchVideos(ctx, vq, 3)
		if err != nil {
			logger.Printf("   search error: %v", err)
			continue
		}
		logger.Printf("   found %d video(s)", len(videos))
		if len(videos) == 0 {
			continue
		}

		stats, err := client.VideoStats(ctx, videos[0].ID)
		if err != nil {
			logger.Printf("   stats error: %v", err)
			continue
		}
		logger.Printf("   first: %q views=%s likes=%s duration=%s",
			videos[0].Title, stats.Statistics.ViewCount, stats.Statistics.LikeCount, stats.ContentDetails.Duration)
	}

	logger.Println("\nDONE. Full output saved to 'google_probe_dump.txt'")
}
