package payment

// DeliveryMethod distinguishes download-only packages from automated ones.
type DeliveryMethod string

const (
	DeliverySelfService DeliveryMethod = "self-service"
	DeliveryAutomated   DeliveryMethod = "automated"
)

// AdPackage is a pricing tier. The catalog is static.
type AdPackage struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Price          int64          `json:"price"` // minor currency units
	Features       []string       `json:"features"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`
}

// Packages is the fixed three-tier catalog.
var Packages = []AdPackage{
	{
		ID:          "pkg_basic",
		Name:        "Basic Ad Package",
		Description: "Single popup ad with basic targeting",
		Price:       49700,
		Features: []string{
			"1 Custom Popup Ad",
			"AI-Generated Copy & Design",
			"Basic Targeting",
			"Download Package",
			"30-Day Analytics",
		},
		DeliveryMethod: DeliverySelfService,
	},
	{
		ID:          "pkg_pro",
		Name:        "Pro Ad Package",
		Description: "Multiple ads with automated deployment",
		Price:       99700,
		Features: []string{
			"3 Custom Popup Ads",
			"AI-Generated Copy & Design",
			"Advanced Targeting",
			"Automated Deployment to Your Site",
			"A/B Testing",
			"90-Day Analytics",
			"Priority Support",
		},
		DeliveryMethod: DeliveryAutomated,
	},
	{
		ID:          "pkg_enterprise",
		Name:        "Enterprise Ad Package",
		Description: "Unlimited ads with full automation",
		Price:       297000,
		Features: []string{
			"Unlimited Custom Popup Ads",
			"AI-Generated Copy & Design",
			"Enterprise Targeting",
			"Automated Multi-Site Deployment",
			"A/B Testing",
			"Real-Time Analytics Dashboard",
			"Dedicated Account Manager",
			"Custom Integration",
		},
		DeliveryMethod: DeliveryAutomated,
	},
}

// PackageByID looks up a catalog entry. ok is false for unknown ids.
func PackageByID(id string) (AdPackage, bool) {
	for _, p := range Packages {
		if p.ID == id {
			return p, true
		}
	}
	return AdPackage{}, false
}
