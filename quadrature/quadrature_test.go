package quadrature

import (
	"math"
	"testing"
)

func TestIntegrateConstant(t *testing.T) {
	value, _, err := Integrate(func(x float64) float64 { return 2 }, 0, 3, DefaultTolerance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(value-6) > 1e-9 {
		t.Errorf("expected 6, got %g", value)
	}
}

func TestIntegratePolynomial(t *testing.T) {
	// ∫ x^2 dx from 0 to 3 = 9
	value, _, err := Integrate(func(x float64) float64 { return x * x }, 0, 3, DefaultTolerance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(value-9) > 1e-6 {
		t.Errorf("expected 9, got %g", value)
	}
}

func TestIntegrateDegenerateInterval(t *testing.T) {
	value, errEst, err := Integrate(func(x float64) float64 { return x }, 5, 5, DefaultTolerance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 0 || errEst != 0 {
		t.Errorf("expected zero integral over a degenerate interval, got %g (err %g)", value, errEst)
	}
}

func TestIntegrateStandardNormalOverWholeLine(t *testing.T) {
	value, _, err := Integrate(func(x float64) float64 { return NormalDensity(x, 0, 1) }, -10, 10, 1e-8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(value-1) > 1e-4 {
		t.Errorf("expected density to integrate to ~1, got %g", value)
	}
}

func TestIntegrateNarrowPeakInWideInterval(t *testing.T) {
	// A unit-scale Gaussian centred off-midpoint in a wide interval: a
	// single whole-interval stencil would sample past the peak and accept 0.
	value, _, err := Integrate(func(x float64) float64 { return NormalDensity(x, 12.5, 1) }, -100, 100, DefaultTolerance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(value-1) > 1e-4 {
		t.Errorf("expected the full Gaussian mass ~1, got %g", value)
	}
}

func TestNormalDensityPeakAtMean(t *testing.T) {
	peak := NormalDensity(5, 5, 2)
	off := NormalDensity(7, 5, 2)
	if peak <= off {
		t.Errorf("expected density at mean (%g) to exceed density off mean (%g)", peak, off)
	}
}

func TestNormalCDFMonotonic(t *testing.T) {
	a := NormalCDF(10, 12.5, 1)
	b := NormalCDF(12, 12.5, 1)
	if !(a < b) {
		t.Errorf("expected CDF to be monotonically increasing, got Φ(10)=%g Φ(12)=%g", a, b)
	}
}

func TestNormalCDFTurbineScenario(t *testing.T) {
	// Φ(12;12.5,1) − Φ(10;12.5,1) ≈ 0.3023.
	diff := NormalCDF(12, 12.5, 1) - NormalCDF(10, 12.5, 1)
	if math.Abs(diff-0.3023) > 1e-3 {
		t.Errorf("expected ≈0.3023, got %g", diff)
	}
}
