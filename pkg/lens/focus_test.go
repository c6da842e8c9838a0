package lens

import (
	"math"
	"testing"
)

func TestThickLensApproximation(t *testing.T) {
	ls := mustLensSystem(t, biconvexLensData, 0)

	pz, fz, err := ls.computeThickLensApproximation(0.035)
	if err != nil {
		t.Fatalf("computeThickLensApproximation failed: %v", err)
	}

	// Effective focal length of the singlet is around 34mm
	f := fz[0] - pz[0]
	if f < 0.030 || f > 0.040 {
		t.Errorf("Expected effective focal length near 0.034m, got %v", f)
	}

	// A symmetric lens has nearly symmetric focal lengths on both sides
	fScene := pz[1] - fz[1]
	if math.Abs(f-fScene) > 0.002 {
		t.Errorf("Expected symmetric focal lengths, got film side %v, scene side %v", f, fScene)
	}
}

func TestFocusBinarySearchRoundtrip(t *testing.T) {
	ls := mustLensSystem(t, biconvexLensData, 0)

	const focusTarget = 1.0
	filmDistance, err := ls.focusBinarySearch(focusTarget, 0.035)
	if err != nil {
		t.Fatalf("focusBinarySearch failed: %v", err)
	}

	// The solved spacing sits near the thin-lens prediction of ~33mm
	if filmDistance < 0.025 || filmDistance > 0.045 {
		t.Errorf("Expected film distance near 0.033m, got %v", filmDistance)
	}

	// Re-evaluating the focus of the solved spacing recovers the target
	focus, err := ls.FocusDistance(filmDistance, 0.035)
	if err != nil {
		t.Fatalf("FocusDistance failed: %v", err)
	}
	if math.Abs(focus-focusTarget)/focusTarget > 1e-3 {
		t.Errorf("Expected focus distance %v, got %v", focusTarget, focus)
	}
}

func TestFocusDistanceMonotonicity(t *testing.T) {
	ls := mustLensSystem(t, biconvexLensData, 0)

	// Pushing the film farther from the lens pulls the focus closer
	near, err := ls.FocusDistance(0.036, 0.035)
	if err != nil {
		t.Fatalf("FocusDistance failed: %v", err)
	}
	far, err := ls.FocusDistance(0.034, 0.035)
	if err != nil {
		t.Fatalf("FocusDistance failed: %v", err)
	}
	if near >= far {
		t.Errorf("Expected focus to move closer as the film moves out: film 0.036 -> %v, film 0.034 -> %v", near, far)
	}
}

func TestFocusThickLensUnreachable(t *testing.T) {
	ls := mustLensSystem(t, biconvexLensData, 0)

	// A focus target well inside the focal length has no solution
	if _, err := ls.focusThickLens(0.02, 0.035); err == nil {
		t.Errorf("Expected error for unreachable focus distance")
	}
	if _, err := ls.focusBinarySearch(0.02, 0.035); err == nil {
		t.Errorf("Expected binary search to report unreachable focus distance")
	}
}

func TestFocusDistanceDegenerate(t *testing.T) {
	// With a closed aperture the probe ray runs along the axis and never
	// crosses it, so the focus is undefined
	closed := []float64{
		35, 5, 1.52, 0,
		-35, 36, 1, 0,
	}
	ls := mustLensSystem(t, closed, 0)

	focus, err := ls.FocusDistance(0.036, 0.035)
	if err == nil {
		t.Errorf("Expected error for a fully closed lens")
	}
	if !math.IsInf(focus, 1) {
		t.Errorf("Expected +Inf focus for a fully closed lens, got %v", focus)
	}

	// The thick lens seed cannot be computed either, so focusing fails
	if _, err := ls.focusBinarySearch(1, 0.035); err == nil {
		t.Errorf("Expected focusing a fully closed lens to fail")
	}
}
