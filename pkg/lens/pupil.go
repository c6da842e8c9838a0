package lens

import (
	"math"
	"runtime"

	"github.com/df07/go-lens-camera/pkg/core"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

const (
	// defaultPupilBands is the number of radial film bands the exit pupil
	// is tabulated for
	defaultPupilBands = 64

	// defaultPupilSamples is the number of rear-element sample points
	// traced per band
	defaultPupilSamples = 1024 * 1024

	// focusPupilSamples is the reduced count used by the focus solver,
	// which only needs the pupil's rough x extent for its probe ray
	focusPupilSamples = 1024
)

// BoundExitPupil estimates the bounding rectangle, on the rear element
// plane, of all rear points through which a ray originating on the film
// between radii filmX0 and filmX1 can exit the lens stack.
func (ls *LensSystem) BoundExitPupil(filmX0, filmX1 float64) core.Bounds2 {
	return ls.boundExitPupil(filmX0, filmX1, defaultPupilSamples)
}

// projectedRearBounds returns the conservative sampling square on the rear
// element plane, 1.5x the rear element radius on each side of the axis
func (ls *LensSystem) projectedRearBounds() core.Bounds2 {
	rearRadius := ls.RearElementRadius()
	return core.NewBounds2(
		core.NewVec2(-1.5*rearRadius, -1.5*rearRadius),
		core.NewVec2(1.5*rearRadius, 1.5*rearRadius),
	)
}

// accumulatePupilBound unions the rear points whose rays survive the stack,
// sampling nSamples low-discrepancy points over the conservative square and
// film origins spread across the band. Points already inside the running
// bound are accepted without the expensive trace. The accumulated bound only
// grows with nSamples since low-discrepancy prefixes are nested.
func (ls *LensSystem) accumulatePupilBound(filmX0, filmX1 float64, nSamples int) (core.Bounds2, int) {
	pupilBounds := core.EmptyBounds2()
	nExitingRays := 0

	proj := ls.projectedRearBounds()
	rearZ := ls.RearZ()
	for i := 0; i < nSamples; i++ {
		pFilm := core.NewVec3(core.Lerp((float64(i)+0.5)/float64(nSamples), filmX0, filmX1), 0, 0)
		u := core.NewVec2(core.RadicalInverse(0, uint64(i)), core.RadicalInverse(1, uint64(i)))
		pRear2 := proj.Lerp(u)
		pRear := core.NewVec3(pRear2.X, pRear2.Y, rearZ)

		passes := pupilBounds.Inside(pRear2)
		if !passes {
			_, passes = ls.TraceFromFilm(core.NewRay(pFilm, pRear.Subtract(pFilm)))
		}
		if passes {
			pupilBounds = pupilBounds.UnionPoint(pRear2)
			nExitingRays++
		}
	}
	return pupilBounds, nExitingRays
}

func (ls *LensSystem) boundExitPupil(filmX0, filmX1 float64, nSamples int) core.Bounds2 {
	pupilBounds, nExitingRays := ls.accumulatePupilBound(filmX0, filmX1, nSamples)
	proj := ls.projectedRearBounds()

	// Return the entire conservative square if no rays made it through:
	// safe but non-informative
	if nExitingRays == 0 {
		glog.Warningf("Unable to find exit pupil in x = [%f, %f] on film; using full rear element bounds.", filmX0, filmX1)
		return proj
	}

	// Expand to account for sample spacing, so untested interior structure
	// between samples stays covered
	return pupilBounds.Expand(2 * proj.Diagonal().Length() / math.Sqrt(float64(nSamples)))
}

// BuildExitPupilBounds tabulates exit pupil bounds for nBands equal-width
// radial bands spanning half the film diagonal. Bands are independent and
// computed in parallel, each writing only its own slot.
func (ls *LensSystem) BuildExitPupilBounds(filmDiagonal float64, nBands, nSamples int) []core.Bounds2 {
	if nBands <= 0 {
		nBands = defaultPupilBands
	}
	if nSamples <= 0 {
		nSamples = defaultPupilSamples
	}

	bounds := make([]core.Bounds2, nBands)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < nBands; i++ {
		i := i
		g.Go(func() error {
			r0 := float64(i) / float64(nBands) * filmDiagonal / 2
			r1 := float64(i+1) / float64(nBands) * filmDiagonal / 2
			bounds[i] = ls.boundExitPupil(r0, r1, nSamples)
			return nil
		})
	}
	_ = g.Wait() // band workers never fail
	return bounds
}
