package lens

import (
	"math"

	"github.com/df07/go-lens-camera/pkg/core"
)

// Film describes the physical sensor: its raster resolution and physical
// diagonal in meters. The film plane sits at z = 0 in camera space, centered
// on the optical axis.
type Film struct {
	Width    int     // Raster width in pixels
	Height   int     // Raster height in pixels
	Diagonal float64 // Physical diagonal in meters
}

// DefaultFilm returns a 35mm-style film at a modest resolution
func DefaultFilm() Film {
	return Film{Width: 600, Height: 400, Diagonal: 0.035}
}

// PhysicalExtent returns the physical bounds of the film in meters, centered
// on the origin, with the aspect ratio of the raster resolution
func (f Film) PhysicalExtent() core.Bounds2 {
	aspect := float64(f.Height) / float64(f.Width)
	x := math.Sqrt(f.Diagonal * f.Diagonal / (1 + aspect*aspect))
	y := aspect * x
	return core.NewBounds2(core.NewVec2(-x/2, -y/2), core.NewVec2(x/2, y/2))
}
