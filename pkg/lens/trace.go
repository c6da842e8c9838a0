package lens

import (
	"math"

	"github.com/df07/go-lens-camera/pkg/core"
)

// Rays are traced in lens space, which is camera space with the z axis
// flipped. The tracer walks the element stack one surface at a time:
// intersect, test against the element aperture, refract, advance. It is the
// single primitive every other part of the camera routes through; a failed
// trace means the ray is vignetted.

// cameraToLens converts a ray between camera space and lens space by
// flipping the z axis. The transform is its own inverse.
func cameraToLens(r core.Ray) core.Ray {
	r.Origin.Z = -r.Origin.Z
	r.Direction.Z = -r.Direction.Z
	return r
}

// TraceFromFilm traces a camera-space ray starting behind the rear element
// through the stack toward the scene. Returns the exiting camera-space ray,
// or false if the ray is blocked, misses an element, or suffers total
// internal reflection.
func (ls *LensSystem) TraceFromFilm(r core.Ray) (core.Ray, bool) {
	elementZ := 0.0
	rLens := cameraToLens(r)
	wavelength := ls.traceWavelength(r.Wavelength)

	for i := len(ls.elements) - 1; i >= 0; i-- {
		element := ls.elements[i]
		elementZ -= element.Thickness

		var t float64
		var n core.Vec3
		if element.IsStop() {
			// A refracted ray may point back toward the film plane in
			// extreme cases; it can never reach the stop then.
			if rLens.Direction.Z >= 0 {
				return core.Ray{}, false
			}
			t = (elementZ - rLens.Origin.Z) / rLens.Direction.Z
		} else {
			var ok bool
			zCenter := elementZ + element.CurvatureRadius
			t, n, ok = intersectSphericalElement(element.CurvatureRadius, zCenter, rLens)
			if !ok {
				return core.Ray{}, false
			}
		}
		if t < 0 {
			return core.Ray{}, false
		}

		// Test intersection point against element aperture
		pHit := rLens.At(t)
		r2 := pHit.X*pHit.X + pHit.Y*pHit.Y
		if r2 > element.ApertureRadius*element.ApertureRadius {
			return core.Ray{}, false
		}
		rLens.Origin = pHit

		if !element.IsStop() {
			etaI := element.Eta
			if etaI == 0 {
				etaI = 1
			}
			etaT := 1.0
			if i > 0 && ls.elements[i-1].Eta != 0 {
				etaT = ls.elements[i-1].Eta
			}
			etaI, etaT = ls.adjustForDispersion(etaI, etaT, wavelength)

			w, ok := refractDirection(rLens.Direction.Normalize().Negate(), n, etaI/etaT)
			if !ok {
				return core.Ray{}, false
			}
			rLens.Direction = w
		}
	}

	return cameraToLens(rLens), true
}

// TraceFromScene traces a camera-space ray starting in front of the foremost
// element through the stack toward the film. Returns the exiting camera-space
// ray, or false if the ray is blocked, misses an element, or suffers total
// internal reflection.
func (ls *LensSystem) TraceFromScene(r core.Ray) (core.Ray, bool) {
	elementZ := -ls.FrontZ()
	rLens := cameraToLens(r)
	wavelength := ls.traceWavelength(r.Wavelength)

	for i := 0; i < len(ls.elements); i++ {
		element := ls.elements[i]

		var t float64
		var n core.Vec3
		if element.IsStop() {
			if rLens.Direction.Z == 0 {
				return core.Ray{}, false
			}
			t = (elementZ - rLens.Origin.Z) / rLens.Direction.Z
		} else {
			var ok bool
			zCenter := elementZ + element.CurvatureRadius
			t, n, ok = intersectSphericalElement(element.CurvatureRadius, zCenter, rLens)
			if !ok {
				return core.Ray{}, false
			}
		}
		if t < 0 {
			return core.Ray{}, false
		}

		// Test intersection point against element aperture
		pHit := rLens.At(t)
		r2 := pHit.X*pHit.X + pHit.Y*pHit.Y
		if r2 > element.ApertureRadius*element.ApertureRadius {
			return core.Ray{}, false
		}
		rLens.Origin = pHit

		if !element.IsStop() {
			etaI := 1.0
			if i > 0 && ls.elements[i-1].Eta != 0 {
				etaI = ls.elements[i-1].Eta
			}
			etaT := element.Eta
			if etaT == 0 {
				etaT = 1
			}
			etaI, etaT = ls.adjustForDispersion(etaI, etaT, wavelength)

			w, ok := refractDirection(rLens.Direction.Normalize().Negate(), n, etaI/etaT)
			if !ok {
				return core.Ray{}, false
			}
			rLens.Direction = w
		}

		elementZ += element.Thickness
	}

	return cameraToLens(rLens), true
}

// traceWavelength resolves the wavelength a trace runs at; rays that carry
// none use the dispersion model's reference wavelength
func (ls *LensSystem) traceWavelength(wavelength float64) float64 {
	if wavelength != 0 {
		return wavelength
	}
	if ls.dispersion != nil {
		return ls.dispersion.ReferenceWavelength
	}
	return 550
}

// adjustForDispersion perturbs both interface indices by a linear function of
// the wavelength's offset from the reference, approximating material
// dispersion. Indices of 1 (air) are left alone.
func (ls *LensSystem) adjustForDispersion(etaI, etaT, wavelength float64) (float64, float64) {
	d := ls.dispersion
	if d == nil || wavelength < d.BandMin || wavelength > d.BandMax {
		return etaI, etaT
	}
	offset := (wavelength - d.ReferenceWavelength) * d.Slope
	if etaI != 1 {
		etaI += offset
	}
	if etaT != 1 {
		etaT += offset
	}
	return etaI, etaT
}

// intersectSphericalElement intersects a ray with a spherical surface of the
// given signed radius centered on the optical axis at zCenter. Returns the
// ray parameter and the surface normal at the hit, oriented against the ray.
func intersectSphericalElement(radius, zCenter float64, ray core.Ray) (float64, core.Vec3, bool) {
	o := ray.Origin.Subtract(core.NewVec3(0, 0, zCenter))
	a := ray.Direction.LengthSquared()
	b := 2 * ray.Direction.Dot(o)
	c := o.LengthSquared() - radius*radius
	t0, t1, ok := solveQuadratic(a, b, c)
	if !ok {
		return 0, core.Vec3{}, false
	}

	// Select the intersection based on ray direction and element curvature:
	// the surface is the sphere cap facing the ray, so take the closer root
	// when direction and curvature disagree in sign.
	useCloser := (ray.Direction.Z > 0) != (radius < 0)
	var t float64
	if useCloser {
		t = math.Min(t0, t1)
	} else {
		t = math.Max(t0, t1)
	}
	if t < 0 {
		return 0, core.Vec3{}, false
	}

	n := o.Add(ray.Direction.Multiply(t)).Normalize()
	if n.Dot(ray.Direction.Negate()) < 0 {
		n = n.Negate()
	}
	return t, n, true
}

// solveQuadratic returns the real roots of at² + bt + c = 0 in ascending
// order, using the numerically stable form
func solveQuadratic(a, b, c float64) (t0, t1 float64, ok bool) {
	discrim := b*b - 4*a*c
	if discrim < 0 {
		return 0, 0, false
	}
	rootDiscrim := math.Sqrt(discrim)

	var q float64
	if b < 0 {
		q = -0.5 * (b - rootDiscrim)
	} else {
		q = -0.5 * (b + rootDiscrim)
	}
	t0, t1 = q/a, c/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

// refractDirection computes the transmitted direction for an incident
// direction wi (pointing away from the surface), surface normal n on the
// incident side, and relative index eta = etaI/etaT. Returns false on total
// internal reflection.
func refractDirection(wi, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosThetaI := n.Dot(wi)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return core.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	wt := wi.Negate().Multiply(eta).Add(n.Multiply(eta*cosThetaI - cosThetaT))
	return wt, true
}
