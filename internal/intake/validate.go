// Package intake validates the customer's business brief before any
// generation work starts.
package intake

import "aisim/internal/adgen"

// Validation lists the missing-field errors for a submitted form.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateForm checks the eight required brief fields. Presence only; format
// checks are left to the downstream services that consume each field.
func ValidateForm(form adgen.IntakeForm) Validation {
	var errs []string

	if form.BusinessName == "" {
		errs = append(errs, "Business name is required")
	}
	if form.BusinessWebsite == "" {
		errs = append(errs, "Business website is required")
	}
	if form.Industry == "" {
		errs = append(errs, "Industry is required")
	}
	if form.AdGoal == "" {
		errs = append(errs, "Ad goal is required")
	}
	if form.TargetAudience == "" {
		errs = append(errs, "Target audience is required")
	}
	if form.KeyMessage == "" {
		errs = append(errs, "Key message is required")
	}
	if form.CallToAction == "" {
		errs = append(errs, "Call to action is required")
	}
	if form.CTALink == "" {
		errs = append(errs, "CTA link is required")
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}
