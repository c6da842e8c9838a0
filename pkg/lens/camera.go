package lens

import (
	"fmt"
	"math"

	"github.com/df07/go-lens-camera/pkg/core"
	"github.com/golang/glog"
)

// Config describes a realistic lens camera
type Config struct {
	Center core.Vec3 // Camera position in world space
	LookAt core.Vec3 // Point the optical axis passes through
	Up     core.Vec3 // World up direction; defaults to +y

	Film     Film      // Sensor geometry; zero value means DefaultFilm
	LensData []float64 // Surface quadruples in mm, front element first

	ApertureDiameter float64 // Stop diameter override in mm; 0 keeps the design value
	FocusDistance    float64 // Scene distance to focus at, in meters; defaults to 10
	FilmDistance     float64 // Explicit film-to-lens spacing in meters; nonzero bypasses the focus solver

	ShutterOpen  float64 // Shutter open time; rays carry a time within the interval
	ShutterClose float64 // Shutter close time; defaults to 1 when both are zero

	SimpleWeighting     bool // Normalize ray weights by the central pupil area instead of full radiometry
	NoWeighting         bool // Give every surviving ray weight 1, for depth-style outputs
	ChromaticAberration bool // Enable wavelength-dependent refraction

	Dispersion *Dispersion // Dispersion model; nil uses DefaultDispersion when chromatic aberration is on

	PupilBands   int // Radial bands in the exit pupil table; 0 means 64
	PupilSamples int // Trace samples per band; 0 means 1024*1024
}

// Camera is a realistic lens camera: film samples are traced through a
// physical lens stack to produce weighted world-space rays. It also acts as
// an importance-emitting entity for bidirectional light transport. All state
// is fixed at construction, so a Camera is safe for concurrent use.
type Camera struct {
	lenses *LensSystem
	film   Film

	origin  core.Vec3
	u, v, w core.Vec3 // Right-handed world basis; w is the optical axis

	shutterOpen, shutterClose float64
	simpleWeighting           bool
	noWeighting               bool

	// Exit pupil bounds per radial film band, in the rear element plane,
	// computed for the +x radial direction and rotated per sample
	exitPupilBounds []core.Bounds2
}

// Compile-time check that Camera provides the full camera capability set
var _ core.Camera = (*Camera)(nil)

// NewCamera builds the lens stack, solves for the film distance that focuses
// at the requested scene distance (unless an explicit film distance is
// given), and precomputes the exit pupil table.
func NewCamera(config Config) (*Camera, error) {
	lenses, err := NewLensSystem(config.LensData, config.ApertureDiameter)
	if err != nil {
		return nil, fmt.Errorf("building lens system: %w", err)
	}
	if config.ChromaticAberration {
		dispersion := DefaultDispersion()
		if config.Dispersion != nil {
			dispersion = *config.Dispersion
		}
		lenses.setDispersion(dispersion)
	}

	film := config.Film
	if film.Width == 0 || film.Height == 0 || film.Diagonal == 0 {
		film = DefaultFilm()
	}

	// Fix the film-to-lens spacing
	if config.FilmDistance != 0 {
		lenses.setFilmDistance(config.FilmDistance)
		if focus, err := lenses.FocusDistance(config.FilmDistance, film.Diagonal); err == nil {
			glog.Infof("Focus distance hard set: %f -> %f", config.FilmDistance, focus)
		}
	} else {
		focusDistance := config.FocusDistance
		if focusDistance == 0 {
			focusDistance = 10
		}
		filmDistance, err := lenses.focusBinarySearch(focusDistance, film.Diagonal)
		if err != nil {
			return nil, fmt.Errorf("focusing at %g: %w", focusDistance, err)
		}
		lenses.setFilmDistance(filmDistance)
		if focus, err := lenses.FocusDistance(filmDistance, film.Diagonal); err == nil {
			glog.Infof("Binary search focus: %f -> %f", filmDistance, focus)
		}
	}

	up := config.Up
	if up == (core.Vec3{}) {
		up = core.NewVec3(0, 1, 0)
	}
	forward := config.LookAt.Subtract(config.Center)
	if forward.Length() == 0 {
		return nil, fmt.Errorf("camera look-at target must differ from its center")
	}
	w := forward.Normalize()
	u := up.Cross(w)
	if u.Length() == 0 {
		return nil, fmt.Errorf("camera up direction must not be parallel to the optical axis")
	}
	u = u.Normalize()
	v := w.Cross(u)

	shutterOpen, shutterClose := config.ShutterOpen, config.ShutterClose
	if shutterOpen == 0 && shutterClose == 0 {
		shutterClose = 1
	}
	if shutterClose < shutterOpen {
		glog.Warningf("Shutter close time %f < shutter open %f. Swapping them.", shutterClose, shutterOpen)
		shutterOpen, shutterClose = shutterClose, shutterOpen
	}

	camera := &Camera{
		lenses:          lenses,
		film:            film,
		origin:          config.Center,
		u:               u,
		v:               v,
		w:               w,
		shutterOpen:     shutterOpen,
		shutterClose:    shutterClose,
		simpleWeighting: config.SimpleWeighting,
		noWeighting:     config.NoWeighting,
	}
	camera.exitPupilBounds = lenses.BuildExitPupilBounds(film.Diagonal, config.PupilBands, config.PupilSamples)
	return camera, nil
}

// LensSystem returns the camera's lens stack
func (c *Camera) LensSystem() *LensSystem {
	return c.lenses
}

// Film returns the camera's sensor geometry
func (c *Camera) Film() Film {
	return c.film
}

// GetCameraForward returns the optical axis direction in world space
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w
}

func (c *Camera) cameraToWorldPoint(p core.Vec3) core.Vec3 {
	return c.origin.
		Add(c.u.Multiply(p.X)).
		Add(c.v.Multiply(p.Y)).
		Add(c.w.Multiply(p.Z))
}

func (c *Camera) cameraToWorldDir(d core.Vec3) core.Vec3 {
	return c.u.Multiply(d.X).
		Add(c.v.Multiply(d.Y)).
		Add(c.w.Multiply(d.Z))
}

func (c *Camera) worldToCameraPoint(p core.Vec3) core.Vec3 {
	rel := p.Subtract(c.origin)
	return core.NewVec3(rel.Dot(c.u), rel.Dot(c.v), rel.Dot(c.w))
}

func (c *Camera) worldToCameraDir(d core.Vec3) core.Vec3 {
	return core.NewVec3(d.Dot(c.u), d.Dot(c.v), d.Dot(c.w))
}

// sampleExitPupil maps a 2D lens sample into the exit pupil bound for the
// film point's radial band, rotated from the canonical +x direction into the
// film point's azimuth. Returns the rear-plane point and the bound's area.
func (c *Camera) sampleExitPupil(pFilm core.Vec2, lensSample core.Vec2) (core.Vec3, float64) {
	rFilm := pFilm.Length()
	rIndex := 0
	if half := c.film.Diagonal / 2; half > 0 {
		rIndex = int(rFilm / half * float64(len(c.exitPupilBounds)))
	}
	if rIndex >= len(c.exitPupilBounds) {
		rIndex = len(c.exitPupilBounds) - 1
	}
	pupilBounds := c.exitPupilBounds[rIndex]

	pLens := pupilBounds.Lerp(lensSample)

	sinTheta, cosTheta := 0.0, 1.0
	if rFilm != 0 {
		sinTheta, cosTheta = pFilm.Y/rFilm, pFilm.X/rFilm
	}
	pRear := core.NewVec3(
		cosTheta*pLens.X-sinTheta*pLens.Y,
		sinTheta*pLens.X+cosTheta*pLens.Y,
		c.lenses.RearZ(),
	)
	return pRear, pupilBounds.Area()
}

// GetRay maps a film and lens sample to a world-space ray and its weight.
// A weight of 0 signals a vignetted sample.
func (c *Camera) GetRay(sample core.CameraSample) (core.Ray, float64) {
	// Physical film point; film x is mirrored relative to raster x
	s := core.NewVec2(sample.FilmX/float64(c.film.Width), sample.FilmY/float64(c.film.Height))
	pFilm2 := c.film.PhysicalExtent().Lerp(s)
	pFilm := core.NewVec3(-pFilm2.X, pFilm2.Y, 0)

	pRear, pupilArea := c.sampleExitPupil(core.NewVec2(pFilm.X, pFilm.Y), sample.Lens)

	time := core.Lerp(sample.Time, c.shutterOpen, c.shutterClose)
	rFilm := core.Ray{
		Origin:     pFilm,
		Direction:  pRear.Subtract(pFilm),
		Time:       time,
		Wavelength: sample.Wavelength,
	}
	out, ok := c.lenses.TraceFromFilm(rFilm)
	if !ok {
		return core.Ray{}, 0
	}

	ray := core.Ray{
		Origin:     c.cameraToWorldPoint(out.Origin),
		Direction:  c.cameraToWorldDir(out.Direction).Normalize(),
		Time:       time,
		Wavelength: sample.Wavelength,
	}

	if c.noWeighting {
		return ray, 1
	}
	cosTheta := rFilm.Direction.Normalize().Z
	cos4Theta := (cosTheta * cosTheta) * (cosTheta * cosTheta)
	if c.simpleWeighting {
		return ray, cos4Theta * pupilArea / c.exitPupilBounds[0].Area()
	}
	rearZ := c.lenses.RearZ()
	return ray, (c.shutterClose - c.shutterOpen) * cos4Theta * pupilArea / (rearZ * rearZ)
}

// traceToFilm runs a world-space ray leaving the camera backwards through
// the lens stack and intersects it with the film plane. Returns the physical
// film point and the ray's cosine with the optical axis.
func (c *Camera) traceToFilm(r core.Ray) (core.Vec2, float64, bool) {
	cosTheta := r.Direction.Normalize().Dot(c.w)
	if cosTheta <= 0 {
		return core.Vec2{}, 0, false
	}

	// Point the ray into the lens system, backed up a step so it cannot
	// start inside the stack
	o := c.worldToCameraPoint(r.Origin)
	d := c.worldToCameraDir(r.Direction).Negate()
	o = o.Subtract(d)

	out, ok := c.lenses.TraceFromScene(core.Ray{Origin: o, Direction: d, Time: r.Time, Wavelength: r.Wavelength})
	if !ok || out.Direction.Z >= 0 {
		return core.Vec2{}, 0, false
	}

	t := -out.Origin.Z / out.Direction.Z
	p := out.At(t)
	// Max edges excluded so the raster position always maps to a real pixel
	pFilm := core.NewVec2(-p.X, p.Y)
	if !c.film.PhysicalExtent().InsideExclusive(pFilm) {
		return core.Vec2{}, 0, false
	}
	return pFilm, cosTheta, true
}

// filmToRaster converts a physical film point to raster pixel coordinates
func (c *Camera) filmToRaster(pFilm core.Vec2) core.Vec2 {
	s := c.film.PhysicalExtent().Offset(pFilm)
	return core.NewVec2(s.X*float64(c.film.Width), s.Y*float64(c.film.Height))
}

// approximatePupilRadius returns the constant pupil radius the importance
// routines use in place of the per-band table, trading accuracy for a
// closed form
func (c *Camera) approximatePupilRadius() float64 {
	return c.lenses.RearElementRadius()
}

// imagePlaneArea returns the film's physical extent projected to unit
// distance in front of the lens, the area proxy the importance density is
// expressed over
func (c *Camera) imagePlaneArea() float64 {
	rearZ := c.lenses.RearZ()
	return c.film.PhysicalExtent().Area() / (rearZ * rearZ)
}

// Importance evaluates the importance emitted along a world-space ray
// leaving the camera, with the raster position it corresponds to. The ray
// must reach the film through the lens stack, otherwise importance is zero.
func (c *Camera) Importance(ray core.Ray) (float64, core.Vec2, bool) {
	pFilm, cosTheta, ok := c.traceToFilm(ray)
	if !ok {
		return 0, core.Vec2{}, false
	}

	lensRadius := c.approximatePupilRadius()
	lensArea := math.Pi * lensRadius * lensRadius
	cos2Theta := cosTheta * cosTheta
	importance := 1 / (c.imagePlaneArea() * lensArea * cos2Theta * cos2Theta)
	return importance, c.filmToRaster(pFilm), true
}

// CalculateRayPDFs returns the positional and directional densities matching
// Importance for a world-space ray leaving the camera
func (c *Camera) CalculateRayPDFs(ray core.Ray) (pdfPos, pdfDir float64) {
	_, cosTheta, ok := c.traceToFilm(ray)
	if !ok {
		return 0, 0
	}

	lensRadius := c.approximatePupilRadius()
	lensArea := math.Pi * lensRadius * lensRadius
	pdfPos = 1 / lensArea
	pdfDir = 1 / (c.imagePlaneArea() * cosTheta * cosTheta * cosTheta)
	return pdfPos, pdfDir
}

// SampleCameraFromPoint uniformly samples a point on the lens visible from
// the reference point and evaluates the importance of the connecting ray.
// Returns nil if the camera cannot be connected to the reference point.
func (c *Camera) SampleCameraFromPoint(ref core.Vec3, time float64, sample core.Vec2) *core.CameraLensSample {
	lensRadius := c.approximatePupilRadius()
	pLens := core.SamplePointInUnitDisk(sample).Multiply(lensRadius)
	pLensWorld := c.cameraToWorldPoint(core.NewVec3(pLens.X, pLens.Y, 0))

	wi := pLensWorld.Subtract(ref)
	dist := wi.Length()
	if dist == 0 {
		return nil
	}
	wi = wi.Multiply(1 / dist)

	cosLens := math.Abs(c.w.Dot(wi))
	if cosLens == 0 {
		return nil
	}
	lensArea := math.Pi * lensRadius * lensRadius
	pdf := dist * dist / (cosLens * lensArea)

	ray := core.Ray{Origin: pLensWorld, Direction: wi.Negate(), Time: time}
	importance, raster, ok := c.Importance(ray)
	if !ok {
		return nil
	}
	return &core.CameraLensSample{
		Ray:        ray,
		Importance: importance,
		PDF:        pdf,
		Raster:     raster,
	}
}

// MapRayToPixel maps a world-space ray leaving the camera back to the raster
// pixel it contributes to
func (c *Camera) MapRayToPixel(ray core.Ray) (int, int, bool) {
	pFilm, _, ok := c.traceToFilm(ray)
	if !ok {
		return 0, 0, false
	}
	raster := c.filmToRaster(pFilm)
	x, y := int(raster.X), int(raster.Y)
	if x < 0 || x >= c.film.Width || y < 0 || y >= c.film.Height {
		return 0, 0, false
	}
	return x, y, true
}
