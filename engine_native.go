//go:build !gocv

package imgextract

// DefaultEngine returns the engine used when none is configured.
// Builds without the gocv tag use the pure Go engine.
func DefaultEngine(filter ResampleFilter) Engine {
	return NewNativeEngine(filter)
}
