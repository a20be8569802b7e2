// Package delivery builds the embeddable ad document and the customer-facing
// embed snippets, and runs the deployment handoff.
package delivery

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"

	"aisim/internal/adgen"
	"aisim/internal/templates"
)

// Deployment methods.
const (
	MethodInjection = "injection"
	MethodIframe    = "iframe"
	MethodScript    = "script"
)

// Target records one deployment attempt.
type Target struct {
	ID         string     `json:"id"`
	Website    string     `json:"website"`
	Method     string     `json:"method"`
	Status     string     `json:"status"`
	DeployedAt *time.Time `json:"deployedAt,omitempty"`
	EmbedCode  string     `json:"embedCode,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Dispatcher renders embed documents and snippets. baseURL is the public
// address ads are served from.
type Dispatcher struct {
	baseURL string
	embed   *template.Template
	log     *logrus.Logger
}

// NewDispatcher parses the embed document template once.
func NewDispatcher(baseURL string, log *logrus.Logger) (*Dispatcher, error) {
	tmpl, err := template.ParseFS(templates.GetAdFS(), "embed.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse embed template: %w", err)
	}
	return &Dispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		embed:   tmpl,
		log:     log,
	}, nil
}

type embedData struct {
	AdID       string
	HTML       string
	CSS        string
	JavaScript string
}

// BuildEmbedDocument renders the standalone HTML document for an ad. The
// embed endpoint and the download endpoint both go through here, so the two
// always serve identical bytes.
func (d *Dispatcher) BuildEmbedDocument(ad *adgen.GeneratedAd) (string, error) {
	var buf strings.Builder
	err := d.embed.Execute(&buf, embedData{
		AdID:       ad.ID,
		HTML:       ad.HTML,
		CSS:        ad.CSS,
		JavaScript: ad.JavaScript,
	})
	if err != nil {
		return "", fmt.Errorf("render embed document: %w", err)
	}
	return buf.String(), nil
}

// IframeCode returns the iframe snippet customers paste into their site.
func (d *Dispatcher) IframeCode(adID string) string {
	return fmt.Sprintf(`<iframe
  src="%s/api/embed/%s"
  width="100%%"
  height="600"
  frameborder="0"
  style="border: none; border-radius: 12px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
</iframe>`, d.baseURL, adID)
}

// ScriptCode returns the self-installing script snippet. The ad's CSS, markup,
// and behavior are inlined so the snippet works without a second fetch.
func (d *Dispatcher) ScriptCode(ad *adgen.GeneratedAd) string {
	return fmt.Sprintf(`<script>
  (function() {
    var css = document.createElement('style');
    css.textContent = %q;
    document.head.appendChild(css);

    var container = document.createElement('div');
    container.innerHTML = %q;
    document.body.appendChild(container);

    %s
  })();
</script>`, ad.CSS, ad.HTML, ad.JavaScript)
}

// Deploy hands an ad off to a customer website. No remote write happens here;
// the snippet or package is produced and the handoff is logged, which is the
// whole of self-service delivery.
func (d *Dispatcher) Deploy(ad *adgen.GeneratedAd, website, method string) Target {
	target := Target{
		ID:      fmt.Sprintf("target_%d", time.Now().UnixMilli()),
		Website: website,
		Method:  method,
		Status:  "pending",
	}

	var code string
	var err error
	switch method {
	case MethodInjection:
		code, err = d.BuildEmbedDocument(ad)
	case MethodIframe:
		code = d.IframeCode(ad.ID)
	case MethodScript:
		code = d.ScriptCode(ad)
	default:
		err = fmt.Errorf("unknown delivery method %q", method)
	}

	if err != nil {
		target.Status = "failed"
		target.Error = err.Error()
		return target
	}

	d.log.WithFields(logrus.Fields{
		"ad_id":   ad.ID,
		"website": website,
		"method":  method,
	}).Info("Ad deployment package prepared")

	now := time.Now().UTC()
	target.Status = "deployed"
	target.DeployedAt = &now
	target.EmbedCode = code
	return target
}
