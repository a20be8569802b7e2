// Package brand holds the AISim brand standards applied to every generated ad.
package brand

// Colors used across generated ad markup.
type Colors struct {
	Primary       string
	Secondary     string
	Accent        string
	Text          string
	TextSecondary string
	Background    string
	Surface       string
	Border        string
	Gradient      string
}

// Typography settings for generated ads.
type Typography struct {
	FontFamily string
	WeightBold int
	WeightSemi int
}

// Brand is the constant table interpolated into ad templates.
type Brand struct {
	Name       string
	Tagline    string
	Colors     Colors
	Typography Typography
	RadiusMD   string
	RadiusXL   string
	SpacingSM  string
	SpacingMD  string
	SpacingLG  string
	SpacingXL  string
	Spacing2XL string
}

// AISim brand standards applied to every generated ad.
var AISim = Brand{
	Name:    "AISim",
	Tagline: "AI-Powered Marketing Excellence",
	Colors: Colors{
		Primary:       "#10b981",
		Secondary:     "#34d399",
		Accent:        "#059669",
		Text:          "#ffffff",
		TextSecondary: "#9ca3af",
		Background:    "#0a0a0a",
		Surface:       "#1a1a1a",
		Border:        "rgba(255, 255, 255, 0.05)",
		Gradient:      "linear-gradient(135deg, #10b981, #34d399)",
	},
	Typography: Typography{
		FontFamily: "-apple-system, BlinkMacSystemFont, 'Segoe UI', 'Inter', sans-serif",
		WeightBold: 700,
		WeightSemi: 600,
	},
	RadiusMD:   "0.5rem",
	RadiusXL:   "1rem",
	SpacingSM:  "0.5rem",
	SpacingMD:  "1rem",
	SpacingLG:  "1.5rem",
	SpacingXL:  "2rem",
	Spacing2XL: "3rem",
}
