// Package compliance classifies aggregate emissions against the RENE
// regulatory thresholds.
//
// Tiers partition the real line with inclusive lower bounds:
//
//	total >= Mandatory          MANDATORY
//	Watch <= total < Mandatory  WATCH
//	total < Watch               VOLUNTARY (negative totals and NaN included)
package compliance

import (
	"fmt"
	"math"

	"ghgcli/pkg/contracts/domain"
)

// Annual thresholds in tCO2e
const (
	MandatoryThresholdTCO2e = 25000.0
	WatchThresholdTCO2e     = 15000.0
)

// Tier labels
const (
	LabelVoluntary = "Voluntary Reporting"
	LabelWatch     = "Watch Range"
	LabelMandatory = "Mandatory RENE Reporting"
)

// Thresholds holds the lower bounds of the WATCH and MANDATORY tiers
type Thresholds struct {
	Mandatory float64 `yaml:"mandatory" json:"mandatory"`
	Watch     float64 `yaml:"watch" json:"watch"`
}

// DefaultThresholds returns the regulatory thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Mandatory: MandatoryThresholdTCO2e,
		Watch:     WatchThresholdTCO2e,
	}
}

// Validate checks the thresholds are finite, non-negative and ordered
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{"mandatory": t.Mandatory, "watch": t.Watch} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("invalid %s threshold: %v", name, v)
		}
	}
	if t.Watch >= t.Mandatory {
		return fmt.Errorf("watch threshold %v must be below mandatory threshold %v", t.Watch, t.Mandatory)
	}
	return nil
}

// Classifier maps aggregate emissions to a compliance tier
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier. Invalid thresholds fall back to the defaults.
func NewClassifier(thresholds Thresholds) *Classifier {
	if err := thresholds.Validate(); err != nil {
		thresholds = DefaultThresholds()
	}
	return &Classifier{thresholds: thresholds}
}

// Thresholds returns the thresholds in use
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Tier returns the tier for a total without building the full result
func (c *Classifier) Tier(total float64) domain.ComplianceTier {
	switch {
	case total >= c.thresholds.Mandatory:
		return domain.TierMandatory
	case total >= c.thresholds.Watch:
		return domain.TierWatch
	default:
		return domain.TierVoluntary
	}
}

// Classify maps a total to its compliance result
func (c *Classifier) Classify(total float64) domain.ComplianceResult {
	tier := c.Tier(total)
	return domain.ComplianceResult{
		Tier:     tier,
		Label:    Label(tier),
		Message:  c.message(tier),
		Severity: tier.Severity(),
		Total:    total,
	}
}

func (c *Classifier) message(tier domain.ComplianceTier) string {
	switch tier {
	case domain.TierMandatory:
		return fmt.Sprintf("Emissions exceed %s tCO2e per year. Mandatory reporting and third-party verification are required.",
			FormatTonnes(c.thresholds.Mandatory, 0))
	case domain.TierWatch:
		return "Emissions are in the precautionary range. Monthly monitoring is recommended to avoid sanctions."
	default:
		return "Emissions are below the mandatory reporting threshold. Reporting is voluntary."
	}
}

// Legend describes every tier with its display style and range
func (c *Classifier) Legend() []domain.TierDescription {
	watch := FormatTonnes(c.thresholds.Watch, 0)
	mandatory := FormatTonnes(c.thresholds.Mandatory, 0)
	return []domain.TierDescription{
		{
			Tier:  domain.TierVoluntary,
			Label: LabelVoluntary,
			Style: domain.TierVoluntary.AlertStyle(),
			Range: fmt.Sprintf("< %s tCO2e", watch),
		},
		{
			Tier:  domain.TierWatch,
			Label: LabelWatch,
			Style: domain.TierWatch.AlertStyle(),
			Range: fmt.Sprintf("%s - %s tCO2e", watch, mandatory),
		},
		{
			Tier:  domain.TierMandatory,
			Label: LabelMandatory,
			Style: domain.TierMandatory.AlertStyle(),
			Range: fmt.Sprintf(">= %s tCO2e", mandatory),
		},
	}
}

// Label returns the human-readable title of a tier
func Label(tier domain.ComplianceTier) string {
	switch tier {
	case domain.TierMandatory:
		return LabelMandatory
	case domain.TierWatch:
		return LabelWatch
	default:
		return LabelVoluntary
	}
}

var defaultClassifier = NewClassifier(DefaultThresholds())

// Classify maps a total to its compliance result using the default thresholds
func Classify(total float64) domain.ComplianceResult {
	return defaultClassifier.Classify(total)
}
