package adgen

import (
	"bytes"
	"fmt"
	"text/template"

	"aisim/internal/brand"
	"aisim/internal/templates"
)

// Renderer interpolates copy and brand constants into the popup templates.
// Templates are text templates on purpose: the CSS and JS blobs must pass
// through byte-for-byte.
type Renderer struct {
	html    *template.Template
	css     *template.Template
	js      *template.Template
	preview *template.Template

	brand         brand.Brand
	analyticsBase string
}

type htmlData struct {
	BusinessName string
	BrandLogo    string
	CTALink      string
	Copy         AdCopy
}

type cssData struct {
	Brand          brand.Brand
	PrimaryColor   string
	SecondaryColor string
}

type jsData struct {
	AdID            string
	Trigger         string
	Frequency       string
	DelayMs         int
	ScrollThreshold int
	AnalyticsBase   string
}

// RenderedAd holds the three independent code blobs plus the preview document.
type RenderedAd struct {
	HTML       string
	CSS        string
	JavaScript string
	Preview    string
}

// NewRenderer parses the embedded templates once.
func NewRenderer(b brand.Brand, analyticsBase string) (*Renderer, error) {
	fs := templates.GetAdFS()
	parse := func(name string) (*template.Template, error) {
		return template.ParseFS(fs, name)
	}

	html, err := parse("popup.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	css, err := parse("popup.css.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse css template: %w", err)
	}
	js, err := parse("popup.js.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse js template: %w", err)
	}
	preview, err := parse("preview.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse preview template: %w", err)
	}

	return &Renderer{
		html:          html,
		css:           css,
		js:            js,
		preview:       preview,
		brand:         b,
		analyticsBase: analyticsBase,
	}, nil
}

// Render produces the popup html/css/javascript and the preview document.
func (r *Renderer) Render(adID string, form IntakeForm, copy AdCopy) (*RenderedAd, error) {
	primary, secondary := r.colors(form)

	var htmlBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, htmlData{
		BusinessName: form.BusinessName,
		BrandLogo:    form.BrandLogo,
		CTALink:      form.CTALink,
		Copy:         copy,
	}); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	var cssBuf bytes.Buffer
	if err := r.css.Execute(&cssBuf, cssData{
		Brand:          r.brand,
		PrimaryColor:   primary,
		SecondaryColor: secondary,
	}); err != nil {
		return nil, fmt.Errorf("render css: %w", err)
	}

	trigger := form.DisplayTrigger
	if trigger == "" {
		trigger = TriggerTimeDelay
	}
	frequency := form.DisplayFrequency
	if frequency == "" {
		frequency = FrequencyDaily
	}

	var jsBuf bytes.Buffer
	if err := r.js.Execute(&jsBuf, jsData{
		AdID:            adID,
		Trigger:         trigger,
		Frequency:       frequency,
		DelayMs:         2000,
		ScrollThreshold: 50,
		AnalyticsBase:   r.analyticsBase,
	}); err != nil {
		return nil, fmt.Errorf("render javascript: %w", err)
	}

	var previewBuf bytes.Buffer
	if err := r.preview.Execute(&previewBuf, map[string]string{
		"HTML":       htmlBuf.String(),
		"CSS":        cssBuf.String(),
		"JavaScript": jsBuf.String(),
	}); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}

	return &RenderedAd{
		HTML:       htmlBuf.String(),
		CSS:        cssBuf.String(),
		JavaScript: jsBuf.String(),
		Preview:    previewBuf.String(),
	}, nil
}

func (r *Renderer) colors(form IntakeForm) (string, string) {
	primary := r.brand.Colors.Primary
	secondary := r.brand.Colors.Secondary
	if len(form.PreferredColors) > 0 && form.PreferredColors[0] != "" {
		primary = form.PreferredColors[0]
	}
	if len(form.PreferredColors) > 1 && form.PreferredColors[1] != "" {
		secondary = form.PreferredColors[1]
	}
	return primary, secondary
}
