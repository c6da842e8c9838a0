package lens

import (
	"fmt"
	"math"

	"github.com/df07/go-lens-camera/pkg/core"
	"github.com/golang/glog"
)

const (
	// focusBisectionIterations bounds the binary search on film distance
	focusBisectionIterations = 20

	// focusBracketLimit bounds the bracket expansion around the thick-lens
	// seed; hitting it means the thick-lens estimate was wildly off
	focusBracketLimit = 1000

	// focusBracketScale grows/shrinks the film distance while bracketing
	focusBracketScale = 1.005
)

// focusScaleFactors are the lens offsets, as fractions of the exit pupil
// extent, tried in order when evaluating the focus of a film distance. The
// smaller fallbacks matter when the aperture is stopped far down.
var focusScaleFactors = [...]float64{0.1, 0.01, 0.001}

// computeCardinalPoints derives the focal point and principal plane z for one
// side of the lens from a traced paraxial ray: rIn enters parallel to the
// axis, rOut is the same ray after the full stack.
func computeCardinalPoints(rIn, rOut core.Ray) (pz, fz float64, err error) {
	if rOut.Direction.X == 0 {
		return 0, 0, fmt.Errorf("paraxial ray left the lens stack parallel to the axis")
	}
	tf := -rOut.Origin.X / rOut.Direction.X
	fz = -rOut.At(tf).Z
	tp := (rIn.Origin.X - rOut.Origin.X) / rOut.Direction.X
	pz = -rOut.At(tp).Z
	return pz, fz, nil
}

// computeThickLensApproximation locates the cardinal points of both sides of
// the lens by tracing one near-axis ray in each direction. Index 0 holds the
// film side, index 1 the scene side.
func (ls *LensSystem) computeThickLensApproximation(filmDiagonal float64) (pz, fz [2]float64, err error) {
	// Height from the optical axis for the parallel rays
	x := 0.001 * filmDiagonal

	rScene := core.NewRay(core.NewVec3(x, 0, ls.FrontZ()+1), core.NewVec3(0, 0, -1))
	rFilm, ok := ls.TraceFromScene(rScene)
	if !ok {
		err = fmt.Errorf("unable to trace ray from scene to film for thick lens approximation; is the aperture stop extremely small?")
		return pz, fz, err
	}
	if pz[0], fz[0], err = computeCardinalPoints(rScene, rFilm); err != nil {
		return pz, fz, err
	}

	rFilm = core.NewRay(core.NewVec3(x, 0, ls.RearZ()-1), core.NewVec3(0, 0, 1))
	rScene, ok = ls.TraceFromFilm(rFilm)
	if !ok {
		err = fmt.Errorf("unable to trace ray from film to scene for thick lens approximation; is the aperture stop extremely small?")
		return pz, fz, err
	}
	pz[1], fz[1], err = computeCardinalPoints(rFilm, rScene)
	return pz, fz, err
}

// focusThickLens solves the closed-form thick-lens equation for the film
// distance that focuses at focusDistance. Exact only for near-paraxial rays;
// used to seed the binary search.
func (ls *LensSystem) focusThickLens(focusDistance, filmDiagonal float64) (float64, error) {
	pz, fz, err := ls.computeThickLensApproximation(filmDiagonal)
	if err != nil {
		return 0, err
	}
	glog.Infof("Cardinal points: p' = %f f' = %f, p = %f f = %f", pz[0], fz[0], pz[1], fz[1])
	glog.Infof("Effective focal length %f", fz[0]-pz[0])

	// Compute translation of lens, delta, to focus at focusDistance
	f := fz[0] - pz[0]
	z := -focusDistance
	c := (pz[1] - z - pz[0]) * (pz[1] - z - 4*f - pz[0])
	if c <= 0 {
		return 0, fmt.Errorf("focus distance %g is unreachable for this lens stack", focusDistance)
	}
	delta := 0.5 * (pz[1] - z + pz[0] - math.Sqrt(c))
	return ls.RearZ() + delta, nil
}

// focusBinarySearch finds the film distance whose fully-traced focus matches
// focusDistance: bracket the thick-lens seed, then bisect. This is the
// authoritative focus result.
func (ls *LensSystem) focusBinarySearch(focusDistance, filmDiagonal float64) (float64, error) {
	seed, err := ls.focusThickLens(focusDistance, filmDiagonal)
	if err != nil {
		return 0, err
	}

	// Bracket the target: increasing the film distance pulls focus closer
	lower, upper := seed, seed
	for i := 0; ; i++ {
		focus, err := ls.FocusDistance(lower, filmDiagonal)
		if err != nil {
			return 0, err
		}
		if focus <= focusDistance {
			break
		}
		if i >= focusBracketLimit {
			return 0, fmt.Errorf("unable to bracket focus distance %g from below", focusDistance)
		}
		lower *= focusBracketScale
	}
	for i := 0; ; i++ {
		focus, err := ls.FocusDistance(upper, filmDiagonal)
		if err != nil {
			return 0, err
		}
		if focus >= focusDistance {
			break
		}
		if i >= focusBracketLimit {
			return 0, fmt.Errorf("unable to bracket focus distance %g from above", focusDistance)
		}
		upper /= focusBracketScale
	}

	for i := 0; i < focusBisectionIterations; i++ {
		fmid := 0.5 * (lower + upper)
		midFocus, err := ls.FocusDistance(fmid, filmDiagonal)
		if err != nil {
			return 0, err
		}
		if midFocus < focusDistance {
			lower = fmid
		} else {
			upper = fmid
		}
	}
	return 0.5 * (lower + upper), nil
}

// FocusDistance evaluates the scene distance a given film distance focuses
// at, by tracing one off-axis ray through the full stack and finding where
// it crosses the optical axis. Returns +Inf with an error if no ray survives
// the stack for any fallback lens offset.
func (ls *LensSystem) FocusDistance(filmDistance, filmDiagonal float64) (float64, error) {
	// Find an offset ray from the film center that makes it through the lens
	bounds := ls.boundExitPupil(0, 0.001*filmDiagonal, focusPupilSamples)

	var lu float64
	var out core.Ray
	found := false
	for _, scale := range focusScaleFactors {
		lu = scale * bounds.Max.X
		r := core.NewRay(core.NewVec3(0, 0, ls.RearZ()-filmDistance), core.NewVec3(lu, 0, filmDistance))
		if traced, ok := ls.TraceFromFilm(r); ok {
			out = traced
			found = true
			break
		}
	}
	if !found {
		return math.Inf(1), fmt.Errorf("focus ray at lens position (%f, 0) did not survive the lens stack with film distance %f", lu, filmDistance)
	}
	if out.Direction.X == 0 {
		return math.Inf(1), fmt.Errorf("focus ray left the lens stack parallel to the axis with film distance %f", filmDistance)
	}

	// Distance where the ray crosses the optical axis
	tFocus := -out.Origin.X / out.Direction.X
	zFocus := out.At(tFocus).Z
	if zFocus < 0 {
		zFocus = math.Inf(1)
	}
	return zFocus, nil
}
