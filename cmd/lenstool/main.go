package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"github.com/df07/go-lens-camera/pkg/core"
	"github.com/df07/go-lens-camera/pkg/lens"
)

func main() {
	lensFile := flag.String("lensfile", "", "Lens description file: four values per surface (radius, thickness, ior, aperture diameter), in mm")
	aperture := flag.Float64("aperturediameter", 0, "Aperture diameter override in mm (0 keeps the design value)")
	focusDistance := flag.Float64("focusdistance", 10, "Scene distance to focus at, in meters")
	filmDistance := flag.Float64("filmdistance", 0, "Explicit film distance in meters (0 solves for the focus distance)")
	filmDiagonal := flag.Float64("filmdiagonal", 35, "Film diagonal in mm")
	chromatic := flag.Bool("chromatic", false, "Enable chromatic aberration")
	simpleWeighting := flag.Bool("simpleweighting", false, "Normalize ray weights by the central pupil area")
	pupilBands := flag.Int("pupilbands", 64, "Radial bands in the exit pupil table")
	pupilSamples := flag.Int("pupilsamples", 1024*1024, "Trace samples per exit pupil band")
	draw := flag.Bool("draw", false, "Write a lens cross-section and sample ray paths to stdout")
	pupilImage := flag.String("pupilimage", "", "Write an exit pupil visualization PNG to this path")
	pupilImageSize := flag.Int("pupilimagesize", 512, "Resolution of the exit pupil visualization")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help || *lensFile == "" {
		fmt.Println("Lens camera inspection tool")
		fmt.Println("Usage: lenstool -lensfile <file> [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		if *lensFile == "" && !*help {
			os.Exit(1)
		}
		return
	}

	lensData, err := lens.LoadLensFile(*lensFile)
	if err != nil {
		fmt.Printf("Error loading lens description: %v\n", err)
		os.Exit(1)
	}

	camera, err := lens.NewCamera(lens.Config{
		Center:              core.NewVec3(0, 0, 0),
		LookAt:              core.NewVec3(0, 0, 1),
		Film:                lens.Film{Width: 600, Height: 400, Diagonal: *filmDiagonal * 0.001},
		LensData:            lensData,
		ApertureDiameter:    *aperture,
		FocusDistance:       *focusDistance,
		FilmDistance:        *filmDistance,
		SimpleWeighting:     *simpleWeighting,
		ChromaticAberration: *chromatic,
		PupilBands:          *pupilBands,
		PupilSamples:        *pupilSamples,
	})
	if err != nil {
		fmt.Printf("Error creating camera: %v\n", err)
		os.Exit(1)
	}

	stack := camera.LensSystem()
	fmt.Printf("Distance from film to back of lens: %g m\n", stack.RearZ())
	if focus, err := stack.FocusDistance(stack.RearZ(), camera.Film().Diagonal); err == nil {
		fmt.Printf("Focus distance in scene: %g m\n", focus)
	} else {
		fmt.Printf("Focus distance in scene: %v\n", err)
	}

	if *draw {
		fmt.Println("Lens cross-section:")
		stack.DrawLensSystem(os.Stdout)
		fmt.Println()

		// A fan of rays from the film center toward the rear element
		fmt.Println("Ray paths from film:")
		rearRadius := stack.RearElementRadius()
		for i := 0; i < 5; i++ {
			target := core.NewVec3(float64(i)/4*rearRadius, 0, stack.RearZ())
			ray := core.NewRay(core.NewVec3(0, 0, 0), target)
			stack.DrawRayPathFromFilm(os.Stdout, ray, false, true)
			fmt.Println()
		}
	}

	if *pupilImage != "" {
		img := stack.RenderExitPupil(0, 0, *pupilImageSize)
		file, err := os.Create(*pupilImage)
		if err != nil {
			fmt.Printf("Error creating pupil image: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		if err := png.Encode(file, img); err != nil {
			fmt.Printf("Error encoding pupil image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote exit pupil visualization to %s\n", *pupilImage)
	}
}
