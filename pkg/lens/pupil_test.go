package lens

import (
	"math/rand"
	"testing"

	"github.com/df07/go-lens-camera/pkg/core"
	"github.com/google/go-cmp/cmp"
)

func TestBoundExitPupilCoversAperture(t *testing.T) {
	ls := mustLensSystem(t, stopOnlyLensData, 0)

	// For a bare stop the exit pupil is the stop opening itself
	bound := ls.boundExitPupil(0, 0.001*0.035, 4096)

	aperture := core.NewBounds2(core.NewVec2(-0.0044, -0.0044), core.NewVec2(0.0044, 0.0044))
	if !bound.Contains(aperture) {
		t.Errorf("Expected pupil bound to cover the stop opening, got [%v, %v]", bound.Min, bound.Max)
	}

	// It stays within the conservative square plus the sample-spacing margin
	proj := ls.projectedRearBounds()
	if !proj.Expand(0.002).Contains(bound) {
		t.Errorf("Expected pupil bound near the stop opening, got [%v, %v]", bound.Min, bound.Max)
	}
}

func TestBoundExitPupilNoExitingRays(t *testing.T) {
	// Two tiny stops 50mm apart: rays from a film point 100mm off axis
	// cannot thread both openings
	blocked := []float64{
		0, 50, 0, 0.5,
		0, 5, 0, 0.5,
	}
	ls := mustLensSystem(t, blocked, 0)

	bound := ls.boundExitPupil(0.1, 0.1001, 512)
	if diff := cmp.Diff(ls.projectedRearBounds(), bound); diff != "" {
		t.Errorf("Expected full conservative square when no rays exit (-want +got):\n%s", diff)
	}
}

func TestAccumulatePupilBoundMonotonic(t *testing.T) {
	ls := mustLensSystem(t, stopOnlyLensData, 0)

	small, nSmall := ls.accumulatePupilBound(0, 1e-5, 256)
	large, nLarge := ls.accumulatePupilBound(0, 1e-5, 2048)

	if nSmall == 0 || nLarge == 0 {
		t.Fatalf("Expected exiting rays through a bare stop, got %d and %d", nSmall, nLarge)
	}
	if nLarge < nSmall {
		t.Errorf("Expected pass count to grow with samples, got %d then %d", nSmall, nLarge)
	}
	// Low-discrepancy prefixes nest, so the bound only grows
	if !large.Contains(small) {
		t.Errorf("Expected bound at 2048 samples to contain bound at 256 samples")
	}
}

func TestExitPupilContainsExitingRays(t *testing.T) {
	ls := mustLensSystem(t, stopOnlyLensData, 0)

	bound := ls.boundExitPupil(0, 0.001*0.035, 4096)
	proj := ls.projectedRearBounds()
	rearZ := ls.RearZ()

	// Every rear point whose ray survives the stack must lie inside the
	// tabulated bound
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))
	for i := 0; i < 2000; i++ {
		pFilm := core.NewVec3(core.Lerp(sampler.Get1D(), 0, 0.001*0.035), 0, 0)
		pRear2 := proj.Lerp(sampler.Get2D())
		pRear := core.NewVec3(pRear2.X, pRear2.Y, rearZ)

		if _, ok := ls.TraceFromFilm(core.NewRay(pFilm, pRear.Subtract(pFilm))); !ok {
			continue
		}
		if !bound.Inside(pRear2) {
			t.Fatalf("Exiting ray through (%v, %v) outside the pupil bound [%v, %v]",
				pRear2.X, pRear2.Y, bound.Min, bound.Max)
		}
	}
}

func TestBuildExitPupilBounds(t *testing.T) {
	ls := mustLensSystem(t, stopOnlyLensData, 0)

	bounds := ls.BuildExitPupilBounds(0.01, 8, 1024)
	if len(bounds) != 8 {
		t.Fatalf("Expected 8 pupil bands, got %d", len(bounds))
	}

	// A bare stop shows every film point the same opening
	inner := core.NewBounds2(core.NewVec2(-0.004, -0.004), core.NewVec2(0.004, 0.004))
	for i, b := range bounds {
		if b.IsEmpty() {
			t.Errorf("Band %d: expected non-empty pupil bound", i)
			continue
		}
		if !b.Contains(inner) {
			t.Errorf("Band %d: expected pupil bound to cover the stop opening, got [%v, %v]", i, b.Min, b.Max)
		}
	}
}

func TestBuildExitPupilBoundsDefaults(t *testing.T) {
	ls := mustLensSystem(t, stopOnlyLensData, 0)

	// Zero band count falls back to the default table size
	bounds := ls.BuildExitPupilBounds(0.01, 0, 64)
	if len(bounds) != defaultPupilBands {
		t.Errorf("Expected %d default pupil bands, got %d", defaultPupilBands, len(bounds))
	}
}
