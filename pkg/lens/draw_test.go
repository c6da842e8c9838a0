package lens

import (
	"strings"
	"testing"

	"github.com/df07/go-lens-camera/pkg/core"
)

func TestDrawLensSystem(t *testing.T) {
	var out strings.Builder
	mustLensSystem(t, biconvexLensData, 0).DrawLensSystem(&out)
	drawing := out.String()
	if !strings.Contains(drawing, "Circle[") {
		t.Errorf("Expected arcs for the curved surfaces, got %q", drawing)
	}
	if !strings.Contains(drawing, "Line[") {
		t.Errorf("Expected film plane and axis lines, got %q", drawing)
	}

	out.Reset()
	mustLensSystem(t, stopOnlyLensData, 0).DrawLensSystem(&out)
	drawing = out.String()
	if !strings.Contains(drawing, "Thick") {
		t.Errorf("Expected stop segments in the drawing, got %q", drawing)
	}
	if strings.Contains(drawing, "Circle[") {
		t.Errorf("Expected no arcs for a bare stop, got %q", drawing)
	}
}

func TestDrawRayPathFromFilm(t *testing.T) {
	ls := mustLensSystem(t, stopOnlyLensData, 0)

	var out strings.Builder
	ls.DrawRayPathFromFilm(&out, core.NewRay(core.NewVec3(0.001, 0, 0), core.NewVec3(0, 0, 1)), false, false)
	drawing := out.String()
	if !strings.Contains(drawing, "Line[") {
		t.Errorf("Expected path segments, got %q", drawing)
	}
	if strings.Contains(drawing, "Dashed") {
		t.Errorf("Expected solid path for a surviving ray, got %q", drawing)
	}

	// A ray outside the stop opening is drawn dashed up to the stop
	out.Reset()
	ls.DrawRayPathFromFilm(&out, core.NewRay(core.NewVec3(0.006, 0, 0), core.NewVec3(0, 0, 1)), false, false)
	if !strings.Contains(out.String(), "Dashed") {
		t.Errorf("Expected dashed path for an absorbed ray, got %q", out.String())
	}
}

func TestDrawRayPathFromScene(t *testing.T) {
	ls := mustLensSystem(t, biconvexLensData, 0)

	var out strings.Builder
	ls.DrawRayPathFromScene(&out, core.NewRay(core.NewVec3(0.002, 0, ls.FrontZ()+0.01), core.NewVec3(0, 0, -1)), false, true)
	drawing := out.String()
	if !strings.Contains(drawing, "Line[") {
		t.Errorf("Expected path segments, got %q", drawing)
	}
	if !strings.Contains(drawing, "Point[") {
		t.Errorf("Expected the optical intercept marker, got %q", drawing)
	}
}

func TestRenderExitPupil(t *testing.T) {
	ls := mustLensSystem(t, stopOnlyLensData, 0)

	const size = 33
	img := ls.RenderExitPupil(0, 0, size)
	if img.Bounds().Dx() != size || img.Bounds().Dy() != size {
		t.Fatalf("Expected %dx%d image, got %v", size, size, img.Bounds())
	}

	// Corners fall outside the rear element circle
	if img.GrayAt(0, 0).Y != 255 {
		t.Errorf("Expected corner outside the rear element, got %d", img.GrayAt(0, 0).Y)
	}
	// The center ray passes straight through the stop
	if img.GrayAt(size/2, size/2).Y != 128 {
		t.Errorf("Expected center ray to pass, got %d", img.GrayAt(size/2, size/2).Y)
	}
}
