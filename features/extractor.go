// Package features turns image patches into fixed length numeric feature
// vectors for classification.
package features

import (
	"gocv.io/x/gocv"
)

// Extractor computes a feature vector from an image patch.  Patches are
// float32 3 channel BGR Mats with samples in the unit range and may be of any
// size.  Implementations are not required to be safe for concurrent use; use
// one Extractor per goroutine.
type Extractor interface {
	// Extract returns the feature vector for the given patch
	Extract(patch gocv.Mat) ([]float64, error)
	// Len returns the length of every vector returned by Extract
	Len() int
	// Close frees any memory held by the extractor
	Close() error
}
