package domain

// ComplianceTier is the regulatory classification of an aggregate emissions total
type ComplianceTier string

const (
	TierVoluntary ComplianceTier = "VOLUNTARY"
	TierWatch     ComplianceTier = "WATCH"
	TierMandatory ComplianceTier = "MANDATORY"
)

// AlertStyle is the display style a presentation layer uses for a tier
type AlertStyle string

const (
	AlertSuccess AlertStyle = "success"
	AlertWarning AlertStyle = "warning"
	AlertError   AlertStyle = "error"
)

// Tiers lists all tiers in ascending severity
func Tiers() []ComplianceTier {
	return []ComplianceTier{TierVoluntary, TierWatch, TierMandatory}
}

// Valid reports whether the tier is one of the known tiers
func (t ComplianceTier) Valid() bool {
	switch t {
	case TierVoluntary, TierWatch, TierMandatory:
		return true
	}
	return false
}

// Severity returns the ordinal rank of the tier (0 lowest)
func (t ComplianceTier) Severity() int {
	switch t {
	case TierMandatory:
		return 2
	case TierWatch:
		return 1
	default:
		return 0
	}
}

// AlertStyle maps the tier to its traffic-light style
func (t ComplianceTier) AlertStyle() AlertStyle {
	switch t {
	case TierMandatory:
		return AlertError
	case TierWatch:
		return AlertWarning
	default:
		return AlertSuccess
	}
}

// ComplianceResult is the outcome of classifying an aggregate total
type ComplianceResult struct {
	Tier     ComplianceTier `json:"tier"`
	Label    string         `json:"label"`
	Message  string         `json:"message"`
	Severity int            `json:"severity"`
	Total    float64        `json:"total_tco2e"`
}

// TierDescription documents one tier for legends and help output
type TierDescription struct {
	Tier  ComplianceTier `json:"tier"`
	Label string         `json:"label"`
	Style AlertStyle     `json:"style"`
	Range string         `json:"range"`
}
