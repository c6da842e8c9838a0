// Package lens models a camera as a physical compound lens: an ordered stack
// of spherical refracting surfaces plus an aperture stop. Rays are traced
// through the stack surface by surface, which reproduces real-camera effects
// such as depth-of-field shape, vignetting, geometric distortion, and
// optionally chromatic aberration.
package lens

import (
	"fmt"

	"github.com/golang/glog"
)

// LensElementInterface describes one refracting surface of the stack, or the
// aperture stop. All lengths are in meters.
type LensElementInterface struct {
	CurvatureRadius float64 // Signed sphere radius; 0 marks the aperture stop
	Thickness       float64 // Axial distance to the next surface toward the film
	Eta             float64 // Refractive index of the medium behind this surface; 0 or 1 means air
	ApertureRadius  float64 // Radius of the clear opening; rays outside it are absorbed
}

// IsStop returns true if this element is the aperture stop
func (e LensElementInterface) IsStop() bool {
	return e.CurvatureRadius == 0
}

// Dispersion configures the wavelength-dependent perturbation of refractive
// indices used to approximate material dispersion
type Dispersion struct {
	ReferenceWavelength float64 // Wavelength with unperturbed indices, in nm
	Slope               float64 // Index change per nm of offset from the reference
	BandMin, BandMax    float64 // Wavelength range the perturbation applies to, in nm
}

// DefaultDispersion returns the dispersion model applied when chromatic
// aberration is enabled and no explicit model is configured
func DefaultDispersion() Dispersion {
	return Dispersion{
		ReferenceWavelength: 550,
		Slope:               -0.04 / 300,
		BandMin:             400,
		BandMax:             700,
	}
}

// LensSystem is an immutable description of a compound lens. Elements are
// stored front (scene side) first; the rearmost surface sits closest to the
// film. Positions along the optical axis are measured in camera space, where
// the film plane is at z = 0 and z increases toward the scene.
//
// A LensSystem is built once and read-only afterwards, so it may be shared
// by concurrent ray traces without synchronization. The one exception is the
// rear element's thickness, which is fixed by the focus solver during camera
// construction before any concurrent use.
type LensSystem struct {
	elements   []LensElementInterface
	dispersion *Dispersion // nil when chromatic aberration is disabled
}

// NewLensSystem builds a lens stack from a flat list of (curvature radius,
// thickness, refractive index, aperture diameter) quadruples in millimeters,
// front element first. apertureDiameter overrides the stop's clear opening,
// clamped to the stop's design maximum.
func NewLensSystem(lensData []float64, apertureDiameter float64) (*LensSystem, error) {
	if len(lensData) == 0 {
		return nil, fmt.Errorf("empty lens description")
	}
	if len(lensData)%4 != 0 {
		return nil, fmt.Errorf("lens description must hold multiple-of-four values, got %d", len(lensData))
	}

	ls := &LensSystem{
		elements: make([]LensElementInterface, 0, len(lensData)/4),
	}
	for i := 0; i < len(lensData); i += 4 {
		diameter := lensData[i+3]
		if lensData[i] == 0 && apertureDiameter > 0 {
			if apertureDiameter > diameter {
				glog.Warningf("Specified aperture diameter %f is greater than maximum possible %f. Clamping it.",
					apertureDiameter, diameter)
			} else {
				diameter = apertureDiameter
			}
		}
		ls.elements = append(ls.elements, LensElementInterface{
			CurvatureRadius: lensData[i] * 0.001,
			Thickness:       lensData[i+1] * 0.001,
			Eta:             lensData[i+2],
			ApertureRadius:  diameter * 0.001 / 2,
		})
	}
	return ls, nil
}

// Elements returns the element stack, front element first
func (ls *LensSystem) Elements() []LensElementInterface {
	return ls.elements
}

// FrontZ returns the axial position of the frontmost surface vertex,
// the sum of all element thicknesses
func (ls *LensSystem) FrontZ() float64 {
	zSum := 0.0
	for _, element := range ls.elements {
		zSum += element.Thickness
	}
	return zSum
}

// RearZ returns the axial position of the rearmost surface vertex, which
// equals the film-to-lens spacing fixed by the focus solver
func (ls *LensSystem) RearZ() float64 {
	return ls.elements[len(ls.elements)-1].Thickness
}

// RearElementRadius returns the aperture radius of the rearmost element
func (ls *LensSystem) RearElementRadius() float64 {
	return ls.elements[len(ls.elements)-1].ApertureRadius
}

// setFilmDistance fixes the film-to-lens spacing. Called once during camera
// construction, before the system is shared.
func (ls *LensSystem) setFilmDistance(d float64) {
	ls.elements[len(ls.elements)-1].Thickness = d
}

// setDispersion enables wavelength-dependent index perturbation for rays
// whose wavelength falls inside the model's band
func (ls *LensSystem) setDispersion(d Dispersion) {
	ls.dispersion = &d
}
