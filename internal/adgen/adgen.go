package adgen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"aisim/internal/genai"
)

// estimatedCTR is a fixed placeholder until enough events exist to measure.
const estimatedCTR = 2.5

// Metadata describes a generated ad.
type Metadata struct {
	CreatedAt      time.Time `json:"createdAt"`
	Package        string    `json:"package"`
	BrandCompliant bool      `json:"brandCompliant"`
	EstimatedCTR   float64   `json:"estimatedCTR"`
}

// GeneratedAd is the full output of the generation pipeline.
type GeneratedAd struct {
	ID         string   `json:"id"`
	HTML       string   `json:"html"`
	CSS        string   `json:"css"`
	JavaScript string   `json:"javascript"`
	Preview    string   `json:"preview"`
	Metadata   Metadata `json:"metadata"`
}

// Service runs the copy-then-render pipeline.
type Service struct {
	gen      genai.Generator
	renderer *Renderer
	log      *logrus.Logger
}

// NewService wires the generator and renderer.
func NewService(gen genai.Generator, renderer *Renderer, log *logrus.Logger) *Service {
	return &Service{gen: gen, renderer: renderer, log: log}
}

// GenerateAd produces a complete popup ad for the brief. A failed generative
// call degrades to the fixed fallback copy; unparseable model output is an
// upstream error the caller decides how to surface.
func (s *Service) GenerateAd(ctx context.Context, form IntakeForm, packageType string) (*GeneratedAd, error) {
	text := GenerateCopyText(ctx, s.gen, s.log, form)

	adCopy, err := ParseCopy(text)
	if err != nil {
		return nil, err
	}

	adID := fmt.Sprintf("ad_%s", uuid.New().String())
	rendered, err := s.renderer.Render(adID, form, adCopy)
	if err != nil {
		return nil, err
	}

	return &GeneratedAd{
		ID:         adID,
		HTML:       rendered.HTML,
		CSS:        rendered.CSS,
		JavaScript: rendered.JavaScript,
		Preview:    rendered.Preview,
		Metadata: Metadata{
			CreatedAt:      time.Now().UTC(),
			Package:        packageType,
			BrandCompliant: true,
			EstimatedCTR:   estimatedCTR,
		},
	}, nil
}
