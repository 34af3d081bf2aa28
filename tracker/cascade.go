package tracker

import "github.com/GreatPyreneseDad/RoseGlassLE/pattern"

// #region cascade

// Cascade is the ordered intervention rule list. Rules are evaluated in a
// fixed sequence and the first match wins: the order encodes which failure
// mode to surface when several fire at once, so it must not be reordered.
type Cascade struct {
	rules []rule
}

type rule struct {
	reason    string
	triggered func(grad GradientVector, predicted pattern.Vector) bool
}

// NewCascade builds the four-rule cascade from thresholds.
func NewCascade(th InterventionThresholds) *Cascade {
	return &Cascade{rules: []rule{
		{
			reason: "rapid escalation",
			triggered: func(grad GradientVector, _ pattern.Vector) bool {
				return grad.Velocity.Component(pattern.DimensionActivationEnergy) > th.RisingActivationVelocity
			},
		},
		{
			reason: "coherence breakdown",
			triggered: func(grad GradientVector, _ pattern.Vector) bool {
				return grad.Velocity.Component(pattern.DimensionConsistency) < th.FallingConsistencyVelocity
			},
		},
		{
			reason: "extreme activation predicted",
			triggered: func(_ GradientVector, predicted pattern.Vector) bool {
				return predicted.Component(pattern.DimensionActivationEnergy) > th.ActivationCeiling
			},
		},
		{
			reason: "rapid disconnection",
			triggered: func(grad GradientVector, _ pattern.Vector) bool {
				return grad.Velocity.Component(pattern.DimensionSocialArchitecture) < th.FallingSocialVelocity
			},
		},
	}}
}

// Evaluate runs the cascade against a gradient and a predicted vector.
// Only the first triggered reason is reported even when several rules
// would fire.
func (c *Cascade) Evaluate(grad GradientVector, predicted pattern.Vector) (bool, string) {
	for _, r := range c.rules {
		if r.triggered(grad, predicted) {
			return true, r.reason
		}
	}
	return false, ""
}

// #endregion cascade
