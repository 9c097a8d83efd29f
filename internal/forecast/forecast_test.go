package forecast

import "testing"

func TestPredictEmptySeriesIsZero(t *testing.T) {
	if got := Predict(nil, DefaultConfig()); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestPredictSingleElementReturnsItself(t *testing.T) {
	if got := Predict([]float64{42}, DefaultConfig()); got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestPredictMultiElementUsesTheLatestObservationEachStep(t *testing.T) {
	// Fixed alpha=0.5 isolates the recurrence from AdaptiveAlpha: each step
	// must fold in h[i], not h[i-1], or the series' last point never enters
	// the forecast.
	cfg := Config{AlphaMin: 0.5, AlphaMax: 0.5, Window: 2, Gamma: 1.25}
	got := Predict([]float64{10, 20, 30}, cfg)
	want := 22.5
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAdaptiveAlphaShortSeriesReturnsMidpoint(t *testing.T) {
	cfg := DefaultConfig()
	got := AdaptiveAlpha([]float64{1, 2}, cfg)
	want := (cfg.AlphaMin + cfg.AlphaMax) / 2
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAdaptiveAlphaNonPositiveMeanReturnsAlphaMin(t *testing.T) {
	cfg := DefaultConfig()
	h := []float64{0, 0, 0, 0, 0, 0}
	if got := AdaptiveAlpha(h, cfg); got != cfg.AlphaMin {
		t.Fatalf("got %v, want alpha_min=%v", got, cfg.AlphaMin)
	}
}

func TestAdaptiveAlphaHighVarianceApproachesAlphaMax(t *testing.T) {
	cfg := DefaultConfig()
	h := []float64{1, 100, 1, 100, 1, 100}
	got := AdaptiveAlpha(h, cfg)
	if mid := (cfg.AlphaMin + cfg.AlphaMax) / 2; got <= mid {
		t.Fatalf("got %v, want above the alpha_min/alpha_max midpoint %v for a highly variable series", got, mid)
	}
}

func TestWeightsDegenerateThreshold(t *testing.T) {
	ewr, lwr := Weights(50, 0, DefaultConfig())
	if ewr != 1 || lwr != 0 {
		t.Fatalf("got (%v,%v), want (1,0) for a non-positive threshold", ewr, lwr)
	}
}

func TestWeightsAtThresholdIsBalanced(t *testing.T) {
	ewr, lwr := Weights(100, 100, DefaultConfig())
	// r=1 => rg=1 => lwr=0.5, ewr=0.5 regardless of gamma.
	if lwr != 0.5 || ewr != 0.5 {
		t.Fatalf("got (ewr=%v,lwr=%v), want (0.5,0.5) at peak==threshold", ewr, lwr)
	}
}

func TestWeightsAboveThresholdFavorsLoad(t *testing.T) {
	ewr, lwr := Weights(200, 100, DefaultConfig())
	if lwr <= 0.5 || ewr >= 0.5 {
		t.Fatalf("got (ewr=%v,lwr=%v), want lwr>0.5 when peak exceeds threshold", ewr, lwr)
	}
}

func TestBatchPredictPeakAndMean(t *testing.T) {
	series := map[string][]float64{
		"a": {1, 2, 3, 10},
	}
	out := BatchPredict(series, DefaultConfig())
	f := out["a"]
	if f.Peak != 10 {
		t.Fatalf("got peak=%v, want 10", f.Peak)
	}
	want := (1.0 + 2 + 3 + 10) / 4
	if f.Mean != want {
		t.Fatalf("got mean=%v, want %v", f.Mean, want)
	}
}
