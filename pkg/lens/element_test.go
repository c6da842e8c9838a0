package lens

import (
	"math"
	"testing"
)

// Shared test fixtures. Surface quadruples are in mm, front element first.
var (
	// A symmetric biconvex singlet, roughly a 34mm lens, with the film
	// 36mm behind the rear vertex
	biconvexLensData = []float64{
		35, 5, 1.52, 30,
		-35, 36, 1, 30,
	}

	// A bare aperture stop 5mm in front of the film, 10mm opening
	stopOnlyLensData = []float64{0, 5, 0, 10}
)

func mustLensSystem(t *testing.T, lensData []float64, apertureDiameter float64) *LensSystem {
	t.Helper()
	ls, err := NewLensSystem(lensData, apertureDiameter)
	if err != nil {
		t.Fatalf("NewLensSystem failed: %v", err)
	}
	return ls
}

func TestNewLensSystemScaling(t *testing.T) {
	ls := mustLensSystem(t, biconvexLensData, 0)

	elements := ls.Elements()
	if len(elements) != 2 {
		t.Fatalf("Expected 2 elements, got %d", len(elements))
	}

	front := elements[0]
	if math.Abs(front.CurvatureRadius-0.035) > 1e-12 {
		t.Errorf("Expected front curvature radius 0.035m, got %v", front.CurvatureRadius)
	}
	if math.Abs(front.Thickness-0.005) > 1e-12 {
		t.Errorf("Expected front thickness 0.005m, got %v", front.Thickness)
	}
	if front.Eta != 1.52 {
		t.Errorf("Expected front eta 1.52, got %v", front.Eta)
	}
	if math.Abs(front.ApertureRadius-0.015) > 1e-12 {
		t.Errorf("Expected front aperture radius 0.015m, got %v", front.ApertureRadius)
	}

	if math.Abs(ls.FrontZ()-0.041) > 1e-12 {
		t.Errorf("Expected FrontZ 0.041m, got %v", ls.FrontZ())
	}
	if math.Abs(ls.RearZ()-0.036) > 1e-12 {
		t.Errorf("Expected RearZ 0.036m, got %v", ls.RearZ())
	}
	if math.Abs(ls.RearElementRadius()-0.015) > 1e-12 {
		t.Errorf("Expected rear element radius 0.015m, got %v", ls.RearElementRadius())
	}
}

func TestNewLensSystemApertureOverride(t *testing.T) {
	tests := []struct {
		name       string
		diameter   float64
		wantRadius float64
	}{
		{"design value", 0, 0.005},
		{"stopped down", 5, 0.0025},
		{"clamped to design maximum", 100, 0.005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := mustLensSystem(t, stopOnlyLensData, tt.diameter)
			stop := ls.Elements()[0]
			if !stop.IsStop() {
				t.Fatalf("Expected element to be the aperture stop")
			}
			if math.Abs(stop.ApertureRadius-tt.wantRadius) > 1e-12 {
				t.Errorf("Expected aperture radius %v, got %v", tt.wantRadius, stop.ApertureRadius)
			}
		})
	}
}

func TestNewLensSystemErrors(t *testing.T) {
	if _, err := NewLensSystem(nil, 0); err == nil {
		t.Errorf("Expected error for empty lens description")
	}
	if _, err := NewLensSystem([]float64{35, 5, 1.52}, 0); err == nil {
		t.Errorf("Expected error for truncated lens description")
	}
}

func TestIsStop(t *testing.T) {
	stop := LensElementInterface{CurvatureRadius: 0, ApertureRadius: 0.005}
	if !stop.IsStop() {
		t.Errorf("Expected zero curvature element to be the stop")
	}
	surface := LensElementInterface{CurvatureRadius: 0.035, ApertureRadius: 0.015}
	if surface.IsStop() {
		t.Errorf("Expected curved element not to be the stop")
	}
}

func TestSetFilmDistance(t *testing.T) {
	ls := mustLensSystem(t, biconvexLensData, 0)
	ls.setFilmDistance(0.033)
	if math.Abs(ls.RearZ()-0.033) > 1e-12 {
		t.Errorf("Expected RearZ 0.033 after setFilmDistance, got %v", ls.RearZ())
	}
	// Only the rear spacing moves; the glass stays put
	if math.Abs(ls.FrontZ()-0.038) > 1e-12 {
		t.Errorf("Expected FrontZ 0.038 after setFilmDistance, got %v", ls.FrontZ())
	}
}
