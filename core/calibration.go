package core

// Calibration anchors the mapping from raw cosine similarity to bounded
// confidence. Raw similarities of E5-family models rarely span the full
// [-1,1] for short text, so anchors are measured against the live corpus at
// build time rather than assumed: AnchorHigh is where near-duplicate text
// lands, AnchorLow where unrelated text lands.
type Calibration struct {
	AnchorLow  float32 `json:"anchor_low"`
	AnchorHigh float32 `json:"anchor_high"`
}

// DefaultCalibration returns fallback anchors typical for multilingual E5
// cosine similarities on short text. Deployments should prefer measured
// anchors; these are used only when the corpus is too small to measure.
func DefaultCalibration() Calibration {
	return Calibration{AnchorLow: 0.70, AnchorHigh: 0.95}
}

// Valid reports whether the anchors define a usable, non-degenerate ramp.
func (c Calibration) Valid() bool {
	return c.AnchorHigh > c.AnchorLow
}

// Confidence squashes a raw similarity into [0,1] with a smoothstep ramp
// between the anchors: monotonic, exactly 0 at or below AnchorLow and
// exactly 1 at or above AnchorHigh.
func (c Calibration) Confidence(score float32) float64 {
	if !c.Valid() {
		if score >= c.AnchorHigh {
			return 1
		}
		return 0
	}

	t := float64(score-c.AnchorLow) / float64(c.AnchorHigh-c.AnchorLow)
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
