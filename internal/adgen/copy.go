package adgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"aisim/internal/apierrors"
	"aisim/internal/genai"
)

// AdCopy is the structured output the model is asked to produce.
type AdCopy struct {
	Headline     string   `json:"headline"`
	Subheadline  string   `json:"subheadline"`
	Bullets      []string `json:"bullets"`
	CTAText      string   `json:"ctaText"`
	TrustElement string   `json:"trustElement"`
}

// fallbackCopy is returned verbatim whenever the generative call fails. Its
// content never varies, so degraded output stays deterministic.
const fallbackCopy = `{
  "headline": "Transform Your Business Today",
  "subheadline": "Join thousands of successful companies using our proven strategies",
  "bullets": [
    "Increase conversions by up to 300%",
    "Professional design that builds trust",
    "Easy to implement in minutes"
  ],
  "ctaText": "Get Started Now",
  "trustElement": "Join 10,000+ satisfied customers"
}`

func buildCopyPrompt(form IntakeForm) string {
	return fmt.Sprintf(`You are an expert copywriter for popup ads. Create compelling ad copy based on this brief:

Business: %s
Industry: %s
Goal: %s
Target Audience: %s
Key Message: %s
Call-to-Action: %s

Requirements:
1. Attention-grabbing headline (max 10 words)
2. Compelling subheadline (max 20 words)
3. 2-3 bullet points highlighting benefits
4. Strong CTA button text (max 4 words)
5. Trust element (testimonial snippet, stat, or guarantee)

Tone: Professional, confident, results-oriented (AISim brand style)

Output format:
{
  "headline": "...",
  "subheadline": "...",
  "bullets": ["...", "...", "..."],
  "ctaText": "...",
  "trustElement": "..."
}`,
		form.BusinessName, form.Industry, form.AdGoal,
		form.TargetAudience, form.KeyMessage, form.CallToAction)
}

// GenerateCopyText calls the model and returns its raw text. Any upstream
// failure degrades to the fixed fallback copy.
func GenerateCopyText(ctx context.Context, gen genai.Generator, log *logrus.Logger, form IntakeForm) string {
	text, err := gen.GenerateText(ctx, buildCopyPrompt(form))
	if err != nil {
		log.WithError(err).Warn("Generative copy call failed, using fallback copy")
		return fallbackCopy
	}
	return text
}

// ParseCopy decodes model output into AdCopy. Models occasionally wrap JSON
// in markdown fences, so those are stripped first.
func ParseCopy(text string) (AdCopy, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}

	var c AdCopy
	if err := json.Unmarshal([]byte(trimmed), &c); err != nil {
		return AdCopy{}, apierrors.Wrap(apierrors.KindUpstream, "model output is not valid ad copy", err)
	}
	if c.Headline == "" || c.CTAText == "" {
		return AdCopy{}, apierrors.New(apierrors.KindUpstream, "model output is missing required copy fields")
	}
	return c, nil
}
