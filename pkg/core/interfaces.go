package core

// CameraSample bundles the sample values needed to generate one camera ray
type CameraSample struct {
	FilmX, FilmY float64 // Raster-space position on the film, in pixels
	Lens         Vec2    // 2D sample in [0,1)² mapped onto the lens
	Time         float64 // Shutter interpolation parameter in [0,1)
	Wavelength   float64 // Wavelength in nm; 0 means reference wavelength
}

// CameraLensSample is the result of sampling a point on the camera lens
// visible from a reference point in the scene
type CameraLensSample struct {
	Ray        Ray     // Ray from the lens point toward the reference point
	Importance float64 // Importance carried along that ray
	PDF        float64 // Solid-angle density of the lens point as seen from the reference
	Raster     Vec2    // Raster position the connection contributes to, in pixels
}

// Camera generates primary rays and, for bidirectional integrators, acts as
// an importance-emitting entity that can be evaluated and sampled like a
// light source.
type Camera interface {
	// GetRay maps a film and lens sample to a world-space ray and its
	// radiometric weight. A weight of 0 signals a vignetted sample; the
	// returned ray is then unspecified and must not contribute.
	GetRay(sample CameraSample) (Ray, float64)

	// Importance evaluates the importance emitted along a world-space ray
	// leaving the camera. Returns the importance, the raster position the
	// ray corresponds to, and false if the ray does not reach the film.
	Importance(ray Ray) (float64, Vec2, bool)

	// CalculateRayPDFs returns the positional and directional sampling
	// densities matching Importance for the given ray. Both are 0 if the
	// ray does not reach the film.
	CalculateRayPDFs(ray Ray) (pdfPos, pdfDir float64)

	// SampleCameraFromPoint samples a point on the lens visible from the
	// reference point. Returns nil if the camera cannot be connected to
	// the reference point.
	SampleCameraFromPoint(ref Vec3, time float64, sample Vec2) *CameraLensSample

	// GetCameraForward returns the camera's forward direction in world space
	GetCameraForward() Vec3

	// MapRayToPixel maps a world-space ray leaving the camera back to the
	// raster pixel it contributes to
	MapRayToPixel(ray Ray) (x, y int, ok bool)
}
