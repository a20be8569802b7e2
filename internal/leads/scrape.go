package leads

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+?1?[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
	titleRe = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	h1Re    = regexp.MustCompile(`(?i)<h1[^>]*>([^<]+)</h1>`)
)

// CompanyInfo is what the scraper could pull off a company page.
type CompanyInfo struct {
	Name  string
	Email string
	Phone string
}

// ExtractCompanyInfo parses a raw HTML page for a company name and contact
// details. Missing pieces come back empty, never as an error.
func ExtractCompanyInfo(html string) CompanyInfo {
	info := CompanyInfo{Name: "Unknown Company"}

	if m := titleRe.FindStringSubmatch(html); m != nil {
		info.Name = strings.TrimSpace(m[1])
	} else if m := h1Re.FindStringSubmatch(html); m != nil {
		info.Name = strings.TrimSpace(m[1])
	}
	if m := emailRe.FindString(html); m != "" {
		info.Email = m
	}
	if m := phoneRe.FindString(html); m != "" {
		// The optional country-code prefix can swallow the whitespace before
		// the number.
		info.Phone = strings.TrimSpace(m)
	}
	return info
}

// Scraper fetches company pages for contact extraction.
type Scraper struct {
	httpClient *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch downloads a page and extracts its contact info.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (CompanyInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return CompanyInfo{Name: "Unknown Company"}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AISimBot/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return CompanyInfo{Name: "Unknown Company"}, err
	}
	defer resp.Body.Close()

	// Cap the read; contact details live near the top of the page.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return CompanyInfo{Name: "Unknown Company"}, err
	}
	return ExtractCompanyInfo(string(body)), nil
}
