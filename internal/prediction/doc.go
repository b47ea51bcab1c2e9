// Package prediction implements the probabilistic forgetting-curve estimator
// that augments the deterministic SM-2 schedule. A Predictor consults an
// external oracle through a cache keyed by the card's scheduling version and
// degrades to a deterministic fallback whenever the oracle fails, times out,
// or returns a malformed payload. The Aggregator fans the predictor out over
// many cards and reduces the results into deck-level risk statistics.
package prediction
