// Package adgen turns an intake brief into a complete popup ad: generated
// copy, branded markup and styles, and the trigger/frequency script.
package adgen

// IntakeForm is the customer's business brief.
type IntakeForm struct {
	BusinessName    string `json:"businessName"`
	BusinessWebsite string `json:"businessWebsite"`
	Industry        string `json:"industry"`

	AdGoal         string `json:"adGoal"`
	TargetAudience string `json:"targetAudience"`
	KeyMessage     string `json:"keyMessage"`

	PreferredColors []string `json:"preferredColors,omitempty"`
	IncludeImages   bool     `json:"includeImages,omitempty"`
	BrandLogo       string   `json:"brandLogo,omitempty"`

	DisplayTrigger   string   `json:"displayTrigger,omitempty"`
	DisplayFrequency string   `json:"displayFrequency,omitempty"`
	TargetPages      []string `json:"targetPages,omitempty"`

	CallToAction string `json:"callToAction"`
	CTALink      string `json:"ctaLink"`
}

// Display triggers for the generated popup script.
const (
	TriggerImmediate  = "immediate"
	TriggerTimeDelay  = "time-delay"
	TriggerScroll     = "scroll"
	TriggerExitIntent = "exit-intent"
)

// Display frequencies for the generated popup script.
const (
	FrequencyOnce    = "once"
	FrequencyDaily   = "daily"
	FrequencySession = "session"
)
