package lens

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/df07/go-lens-camera/pkg/core"
)

// Diagnostic output: cross-section and ray-path drawing primitives in
// Mathematica graphics syntax, and a rasterization of the exit pupil.
// Purely observational tooling; nothing here is on a render path.

// DrawLensSystem writes drawing primitives for a cross-section of the lens
// stack: arcs for the spherical surfaces, lines for the stop and element
// edges, the film plane, and the optical axis.
func (ls *LensSystem) DrawLensSystem(w io.Writer) {
	sumz := -ls.FrontZ()
	z := sumz
	for i, element := range ls.elements {
		r := element.CurvatureRadius
		if r == 0 {
			// Stop: two vertical line segments leaving the opening clear
			fmt.Fprintf(w, "{Thick, Line[{{%f, %f}, {%f, %f}}], ", z,
				element.ApertureRadius, z, 2*element.ApertureRadius)
			fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}]}, ", z, -element.ApertureRadius,
				z, -2*element.ApertureRadius)
		} else {
			theta := math.Abs(math.Asin(element.ApertureRadius / r))
			if r > 0 {
				// Convex as seen from the front of the lens
				t0 := math.Pi - theta
				t1 := math.Pi + theta
				fmt.Fprintf(w, "Circle[{%f, 0}, %f, {%f, %f}], ", z+r, r, t0, t1)
			} else {
				// Concave as seen from the front of the lens
				t0 := -theta
				t1 := theta
				fmt.Fprintf(w, "Circle[{%f, 0}, %f, {%f, %f}], ", z+r, -r, t0, t1)
			}
			if element.Eta != 0 && element.Eta != 1 && i+1 < len(ls.elements) {
				// Glass between this surface and the next: connect the edges
				next := ls.elements[i+1]
				h := math.Max(element.ApertureRadius, next.ApertureRadius)
				hlow := math.Min(element.ApertureRadius, next.ApertureRadius)

				var zp0 float64
				if r > 0 {
					zp0 = z + element.CurvatureRadius - element.ApertureRadius/math.Tan(theta)
				} else {
					zp0 = z + element.CurvatureRadius + element.ApertureRadius/math.Tan(theta)
				}

				nextTheta := math.Abs(math.Asin(next.ApertureRadius / next.CurvatureRadius))
				var zp1 float64
				if next.CurvatureRadius > 0 {
					zp1 = z + element.Thickness + next.CurvatureRadius - next.ApertureRadius/math.Tan(nextTheta)
				} else {
					zp1 = z + element.Thickness + next.CurvatureRadius + next.ApertureRadius/math.Tan(nextTheta)
				}

				// Connect tops and bottoms
				fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}], ", zp0, h, zp1, h)
				fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}], ", zp0, -h, zp1, -h)

				// Vertical lines where the element profiles differ in height
				if element.ApertureRadius < next.ApertureRadius {
					fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}], ", zp0, h, zp0, hlow)
					fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}], ", zp0, -h, zp0, -hlow)
				} else if element.ApertureRadius > next.ApertureRadius {
					fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}], ", zp1, h, zp1, hlow)
					fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}], ", zp1, -h, zp1, -hlow)
				}
			}
		}
		z += element.Thickness
	}

	// 24mm height for 35mm film
	fmt.Fprintf(w, "Line[{{0, -.012}, {0, .012}}], ")
	// Optical axis
	fmt.Fprintf(w, "Line[{{0, 0}, {%f, 0}}] ", 1.2*sumz)
}

// DrawRayPathFromFilm writes drawing primitives for a camera-space ray's path
// through the stack, starting behind the rear element. The path is dashed if
// the ray does not survive the full stack, and stops at the element that
// absorbed it.
func (ls *LensSystem) DrawRayPathFromFilm(w io.Writer, r core.Ray, arrow, toOpticalIntercept bool) {
	elementZ := 0.0
	ray := cameraToLens(r)
	fmt.Fprintf(w, "{ ")
	if _, ok := ls.TraceFromFilm(r); !ok {
		fmt.Fprintf(w, "Dashed, ")
	}

	aborted := false
	for i := len(ls.elements) - 1; i >= 0 && !aborted; i-- {
		element := ls.elements[i]
		elementZ -= element.Thickness

		t, n, ok := ls.drawElementIntersect(element, elementZ, ray)
		if !ok {
			aborted = true
			break
		}
		fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}],", ray.Origin.Z, ray.Origin.X,
			ray.At(t).Z, ray.At(t).X)

		pHit := ray.At(t)
		r2 := pHit.X*pHit.X + pHit.Y*pHit.Y
		if r2 > element.ApertureRadius*element.ApertureRadius {
			aborted = true
			break
		}
		ray.Origin = pHit

		if !element.IsStop() {
			etaI := element.Eta
			if etaI == 0 {
				etaI = 1
			}
			etaT := 1.0
			if i > 0 && ls.elements[i-1].Eta != 0 {
				etaT = ls.elements[i-1].Eta
			}
			wt, ok := refractDirection(ray.Direction.Normalize().Negate(), n, etaI/etaT)
			if !ok {
				aborted = true
				break
			}
			ray.Direction = wt
		}
	}

	if !aborted {
		ray.Direction = ray.Direction.Normalize()
		ta := math.Abs(elementZ / 4)
		if toOpticalIntercept && ray.Direction.X != 0 {
			ta = -ray.Origin.X / ray.Direction.X
			fmt.Fprintf(w, "Point[{%f, %f}], ", ray.At(ta).Z, ray.At(ta).X)
		}
		primitive := "Line"
		if arrow {
			primitive = "Arrow"
		}
		fmt.Fprintf(w, "%s[{{%f, %f}, {%f, %f}}]", primitive, ray.Origin.Z,
			ray.Origin.X, ray.At(ta).Z, ray.At(ta).X)

		// Overdraw the optical axis if needed
		if toOpticalIntercept {
			fmt.Fprintf(w, ", Line[{{%f, 0}, {%f, 0}}]", ray.Origin.Z, ray.At(ta).Z*1.05)
		}
	}
	fmt.Fprintf(w, "}")
}

// DrawRayPathFromScene writes drawing primitives for a camera-space ray's
// path through the stack, starting in front of the foremost element.
func (ls *LensSystem) DrawRayPathFromScene(w io.Writer, r core.Ray, arrow, toOpticalIntercept bool) {
	elementZ := -ls.FrontZ()
	ray := cameraToLens(r)

	for i := 0; i < len(ls.elements); i++ {
		element := ls.elements[i]

		t, n, ok := ls.drawElementIntersect(element, elementZ, ray)
		if !ok {
			return
		}
		fmt.Fprintf(w, "Line[{{%f, %f}, {%f, %f}}],", ray.Origin.Z, ray.Origin.X,
			ray.At(t).Z, ray.At(t).X)

		pHit := ray.At(t)
		r2 := pHit.X*pHit.X + pHit.Y*pHit.Y
		if r2 > element.ApertureRadius*element.ApertureRadius {
			return
		}
		ray.Origin = pHit

		if !element.IsStop() {
			etaI := 1.0
			if i > 0 && ls.elements[i-1].Eta != 0 {
				etaI = ls.elements[i-1].Eta
			}
			etaT := element.Eta
			if etaT == 0 {
				etaT = 1
			}
			wt, ok := refractDirection(ray.Direction.Normalize().Negate(), n, etaI/etaT)
			if !ok {
				return
			}
			ray.Direction = wt
		}

		elementZ += element.Thickness
	}

	// Continue to the film plane by default
	if ray.Direction.Z == 0 {
		return
	}
	ta := -ray.Origin.Z / ray.Direction.Z
	if toOpticalIntercept && ray.Direction.X != 0 {
		ta = -ray.Origin.X / ray.Direction.X
		fmt.Fprintf(w, "Point[{%f, %f}], ", ray.At(ta).Z, ray.At(ta).X)
	}
	primitive := "Line"
	if arrow {
		primitive = "Arrow"
	}
	fmt.Fprintf(w, "%s[{{%f, %f}, {%f, %f}}]", primitive, ray.Origin.Z,
		ray.Origin.X, ray.At(ta).Z, ray.At(ta).X)
}

// drawElementIntersect intersects a lens-space ray with one element for the
// drawing routines, without the stop's direction restriction so aborted
// paths can still be drawn up to the failing element
func (ls *LensSystem) drawElementIntersect(element LensElementInterface, elementZ float64, ray core.Ray) (float64, core.Vec3, bool) {
	if element.IsStop() {
		if ray.Direction.Z == 0 {
			return 0, core.Vec3{}, false
		}
		return (elementZ - ray.Origin.Z) / ray.Direction.Z, core.Vec3{}, true
	}
	zCenter := elementZ + element.CurvatureRadius
	return intersectSphericalElement(element.CurvatureRadius, zCenter, ray)
}

// RenderExitPupil rasterizes which rear-element points pass rays from the
// given physical film point through the full stack: white outside the rear
// element, gray where the ray exits, black where it is absorbed.
func (ls *LensSystem) RenderExitPupil(filmX, filmY float64, size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	pFilm := core.NewVec3(filmX, filmY, 0)
	rearRadius := ls.RearElementRadius()
	rearZ := ls.RearZ()

	for y := 0; y < size; y++ {
		fy := float64(y) / float64(size-1)
		ly := core.Lerp(fy, -rearRadius, rearRadius)
		for x := 0; x < size; x++ {
			fx := float64(x) / float64(size-1)
			lx := core.Lerp(fx, -rearRadius, rearRadius)

			pRear := core.NewVec3(lx, ly, rearZ)

			var shade uint8
			if lx*lx+ly*ly > rearRadius*rearRadius {
				shade = 255
			} else if _, ok := ls.TraceFromFilm(core.NewRay(pFilm, pRear.Subtract(pFilm))); ok {
				shade = 128
			}
			img.SetGray(x, y, color.Gray{Y: shade})
		}
	}
	return img
}
