package srs

// Interval bounds for the blended schedule: never less than one minute,
// never more than 180 days, regardless of how extreme the oracle's
// recommendation is.
const (
	MinIntervalDays = 1.0 / 1440.0
	MaxIntervalDays = 180.0
)

// Blend weights. The deterministic SM-2 interval dominates; the oracle's
// recommendation nudges it.
const (
	deterministicWeight = 0.7
	recommendedWeight   = 0.3
)

// BlendInterval combines the deterministic interval with the oracle's
// recommended interval into the final scheduling interval.
//
// When the recommendation equals the deterministic interval the result is the
// deterministic interval bit-for-bit; the weighted sum is skipped so floating
// point drift cannot make the blended path disagree with the pure SM-2 path.
func BlendInterval(deterministic, recommended float64) float64 {
	final := deterministic
	if recommended != deterministic {
		final = deterministic*deterministicWeight + recommended*recommendedWeight
	}

	if final < MinIntervalDays {
		final = MinIntervalDays
	}
	if final > MaxIntervalDays {
		final = MaxIntervalDays
	}

	return final
}

// AdvanceBlended runs the deterministic update and folds the oracle's
// recommended interval into the result. Easiness and repetition follow the
// deterministic rules exactly; only the interval is blended.
func AdvanceBlended(state State, quality int, recommended float64) State {
	next := Advance(state, quality)
	next.Interval = BlendInterval(next.Interval, recommended)
	return next
}
