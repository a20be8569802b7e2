package prospect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aisim/internal/storage"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(_ context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

type fakeStatusStore struct {
	statuses map[string]string
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{statuses: map[string]string{}}
}

func (f *fakeStatusStore) UpdateLeadStatus(id, status string) error {
	f.statuses[id] = status
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testService(gen *fakeGenerator, sender *fakeSender, store *fakeStatusStore) *Service {
	svc := NewService(gen, sender, store, testLogger())
	svc.pace = func() time.Duration { return 0 }
	return svc
}

func TestCreateCampaign(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStatusStore()
	gen := &fakeGenerator{text: "Subject: A Better Way To Advertise\n\nHi Acme team, ..."}
	svc := testService(gen, sender, store)

	leadsIn := []storage.Lead{
		{ID: "lead_1", CompanyName: "Acme", ContactEmail: "hello@acme.com"},
		{ID: "lead_2", CompanyName: "Beta", ContactEmail: "hi@beta.com"},
	}
	campaign, err := svc.CreateCampaign(context.Background(), leadsIn, "Hi {{company}}")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(campaign.ID, "campaign_"))
	assert.Equal(t, "completed", campaign.Status)
	assert.Equal(t, []string{"lead_1", "lead_2"}, campaign.LeadIDs)
	assert.Equal(t, 2, campaign.Metrics.Sent)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "hello@acme.com", sender.sent[0].to)
	assert.Equal(t, "A Better Way To Advertise", sender.sent[0].subject)

	assert.Equal(t, storage.LeadStatusContacted, store.statuses["lead_1"])
	assert.Equal(t, storage.LeadStatusContacted, store.statuses["lead_2"])
}

func TestCreateCampaign_SkipsLeadsWithoutEmail(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStatusStore()
	svc := testService(&fakeGenerator{text: "hi"}, sender, store)

	leadsIn := []storage.Lead{
		{ID: "lead_1", CompanyName: "NoMail Inc"},
		{ID: "lead_2", CompanyName: "Beta", ContactEmail: "hi@beta.com"},
	}
	campaign, err := svc.CreateCampaign(context.Background(), leadsIn, "Hi")
	require.NoError(t, err)

	assert.Equal(t, 1, campaign.Metrics.Sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hi@beta.com", sender.sent[0].to)
	assert.NotContains(t, store.statuses, "lead_1")
}

func TestCreateCampaign_SendFailureDoesNotAdvanceStatus(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	store := newFakeStatusStore()
	svc := testService(&fakeGenerator{text: "hi"}, sender, store)

	campaign, err := svc.CreateCampaign(context.Background(), []storage.Lead{
		{ID: "lead_1", ContactEmail: "hello@acme.com"},
	}, "Hi")
	require.NoError(t, err)

	assert.Zero(t, campaign.Metrics.Sent)
	assert.Empty(t, store.statuses)
}

func TestPersonalize_FallsBackOnModelFailure(t *testing.T) {
	svc := testService(&fakeGenerator{err: errors.New("timeout")}, &fakeSender{}, newFakeStatusStore())

	body := svc.personalize(context.Background(), "raw template", storage.Lead{ID: "lead_1"})
	assert.Equal(t, "raw template", body)
}

func TestPersonalize_FallsBackOnEmptyOutput(t *testing.T) {
	svc := testService(&fakeGenerator{text: "   \n"}, &fakeSender{}, newFakeStatusStore())

	body := svc.personalize(context.Background(), "raw template", storage.Lead{ID: "lead_1"})
	assert.Equal(t, "raw template", body)
}

func TestExtractSubject(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"subject line", "Subject: Grow Faster\n\nHi there", "Grow Faster"},
		{"lowercase prefix", "subject: quiet pitch\nbody", "quiet pitch"},
		{"no subject line", "Hi there, no header here", defaultSubject},
		{"empty body", "", defaultSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSubject(tt.body))
		})
	}
}
