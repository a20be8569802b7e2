// Package prospect runs outreach campaigns against qualified leads:
// model-personalized email per lead, status advancement, and paced sending.
package prospect

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"aisim/internal/email"
	"aisim/internal/genai"
	"aisim/internal/storage"
)

const defaultSubject = "AISim - AI-Powered Ad Solutions"

// DefaultTemplate is the outreach email used when a campaign supplies no
// template of its own. personalize hands it to the model together with the
// prospect's details, so the placeholders are filled upstream.
const DefaultTemplate = `Subject: Turn Your Website Visitors Into Customers

Hi there,

I came across your company and noticed you are investing in your online
presence. AISim builds AI-generated popup ads that convert visitors into
customers - copy, design, and targeting in minutes, not weeks.

Our customers typically see conversion lifts within the first month.

Would you be open to a quick demo this week?

Best,
The AISim Team`

// Sending is paced randomly inside [minDelay, minDelay+delaySpread) to avoid
// spam flags.
const (
	minDelay    = 2 * time.Second
	delaySpread = 5 * time.Second
)

// LeadStatusStore advances lead statuses as they are contacted.
type LeadStatusStore interface {
	UpdateLeadStatus(id, status string) error
}

// Metrics counts campaign outcomes. Only sent is advanced server-side; the
// engagement counters fill in from tracking callbacks.
type Metrics struct {
	Sent      int `json:"sent"`
	Opened    int `json:"opened"`
	Clicked   int `json:"clicked"`
	Replied   int `json:"replied"`
	Converted int `json:"converted"`
}

// Campaign is one outreach run over a set of leads.
type Campaign struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	LeadIDs       []string `json:"leadIds"`
	EmailTemplate string   `json:"emailTemplate"`
	Status        string   `json:"status"`
	Metrics       Metrics  `json:"metrics"`
}

// Service executes prospecting campaigns.
type Service struct {
	gen    genai.Generator
	sender email.Sender
	store  LeadStatusStore
	log    *logrus.Logger

	// pace returns how long to wait between sends.
	pace func() time.Duration
}

// NewService wires the campaign dependencies.
func NewService(gen genai.Generator, sender email.Sender, store LeadStatusStore, log *logrus.Logger) *Service {
	return &Service{
		gen:    gen,
		sender: sender,
		store:  store,
		log:    log,
		pace: func() time.Duration {
			return minDelay + time.Duration(rand.Int63n(int64(delaySpread)))
		},
	}
}

// CreateCampaign builds a campaign over the given leads and executes it
// synchronously. Leads without a contact email are skipped.
func (s *Service) CreateCampaign(ctx context.Context, leadsIn []storage.Lead, template string) (*Campaign, error) {
	ids := make([]string, len(leadsIn))
	for i, l := range leadsIn {
		ids[i] = l.ID
	}

	campaign := &Campaign{
		ID:            fmt.Sprintf("campaign_%d", time.Now().UnixMilli()),
		Name:          fmt.Sprintf("Campaign_%s", time.Now().UTC().Format("2006-01-02")),
		LeadIDs:       ids,
		EmailTemplate: template,
		Status:        "active",
	}

	s.execute(ctx, campaign, leadsIn)
	campaign.Status = "completed"
	return campaign, nil
}

func (s *Service) execute(ctx context.Context, campaign *Campaign, leadsIn []storage.Lead) {
	for _, lead := range leadsIn {
		if lead.ContactEmail == "" {
			s.log.WithField("lead_id", lead.ID).Info("Lead has no contact email, skipping")
			continue
		}

		body := s.personalize(ctx, campaign.EmailTemplate, lead)
		subject := extractSubject(body)

		if err := s.sender.Send(ctx, lead.ContactEmail, subject, body); err != nil {
			s.log.WithError(err).WithField("lead_id", lead.ID).Error("Failed to contact lead")
			continue
		}
		campaign.Metrics.Sent++

		if err := s.store.UpdateLeadStatus(lead.ID, storage.LeadStatusContacted); err != nil {
			s.log.WithError(err).WithField("lead_id", lead.ID).Error("Failed to update lead status")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pace()):
		}
	}
}

// personalize rewrites the template for one prospect. A failed model call
// falls back to the unmodified template.
func (s *Service) personalize(ctx context.Context, template string, lead storage.Lead) string {
	contact := lead.ContactName
	if contact == "" {
		contact = "Marketing Team"
	}

	prompt := fmt.Sprintf(`Personalize this email template for this prospect:

Template:
%s

Prospect Info:
- Company: %s
- Industry: %s
- Contact: %s

Make it compelling, professional, and specific to their industry.
Include a clear call-to-action to book a demo.
Keep the AISim brand tone: confident, results-oriented.`,
		template, lead.CompanyName, lead.Industry, contact)

	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			s.log.WithError(err).WithField("lead_id", lead.ID).Warn("Personalization failed, using raw template")
		}
		return template
	}
	return text
}

// extractSubject pulls a "Subject:" line out of the email body, falling back
// to the fixed default.
func extractSubject(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.ToLower(line), "subject:") {
			return strings.TrimSpace(line[len("subject:"):])
		}
	}
	return defaultSubject
}
