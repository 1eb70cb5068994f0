package dist

// Report bundles every fidelity and basin metric for a baseline/locked pair.
type Report struct {
	Shots           int       `json:"shots"`
	BaselineEntropy float64   `json:"baseline_entropy"`
	LockedEntropy   float64   `json:"locked_entropy"`
	TVD             float64   `json:"tvd"`
	KL              float64   `json:"kl_divergence"`
	Hellinger       float64   `json:"hellinger"`
	Fidelity        float64   `json:"fidelity"`
	BaselineGini    float64   `json:"baseline_gini"`
	LockedGini      float64   `json:"locked_gini"`
	BaselineSupport float64   `json:"baseline_effective_support"`
	LockedSupport   float64   `json:"locked_effective_support"`
	BaselineTopK    float64   `json:"baseline_top_k_mass"`
	LockedTopK      float64   `json:"locked_top_k_mass"`
	BaselineOctaves []float64 `json:"baseline_octave_mass"`
	LockedOctaves   []float64 `json:"locked_octave_mass"`
}

const (
	reportTopK    = 5
	reportOctaves = 5
)

// Compare computes a Report for two runs of the same circuit.
func Compare(baseline, locked Counts) Report {
	return Report{
		Shots:           Total(baseline),
		BaselineEntropy: Entropy(baseline),
		LockedEntropy:   Entropy(locked),
		TVD:             TotalVariationDistance(baseline, locked),
		KL:              KLDivergence(baseline, locked, DefaultKLEpsilon),
		Hellinger:       HellingerDistance(baseline, locked),
		Fidelity:        Fidelity(baseline, locked),
		BaselineGini:    GiniCoefficient(baseline),
		LockedGini:      GiniCoefficient(locked),
		BaselineSupport: EffectiveSupport(baseline),
		LockedSupport:   EffectiveSupport(locked),
		BaselineTopK:    TopKMass(baseline, reportTopK),
		LockedTopK:      TopKMass(locked, reportTopK),
		BaselineOctaves: OctaveBinnedMass(baseline, reportOctaves),
		LockedOctaves:   OctaveBinnedMass(locked, reportOctaves),
	}
}
