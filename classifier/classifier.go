// Package classifier provides the binary vehicle / non-vehicle decision made
// on feature vectors.  Models are trained elsewhere and loaded from JSON.
package classifier

import (
	"github.com/pkg/errors"
)

// Classifier decides whether a feature vector matches the target object
type Classifier interface {
	Predict(features []float64) (bool, error)
}

// BatchClassifier is implemented by classifiers able to decide many feature
// vectors in one call
type BatchClassifier interface {
	Classifier
	PredictBatch(features [][]float64) ([]bool, error)
}

// Constant is a classifier returning the same decision for every vector.  It
// is useful for dry runs of the pipeline.
type Constant bool

// Predict returns the constant decision
func (c Constant) Predict(features []float64) (bool, error) {
	return bool(c), nil
}

// Func adapts an ordinary function to the Classifier interface
type Func func(features []float64) (bool, error)

// Predict calls f
func (f Func) Predict(features []float64) (bool, error) {
	return f(features)
}

// PredictAll decides every vector, using the batch form when the classifier
// supports it
func PredictAll(clf Classifier, features [][]float64) ([]bool, error) {

	if bc, ok := clf.(BatchClassifier); ok {
		return bc.PredictBatch(features)
	}

	out := make([]bool, len(features))

	for i, f := range features {
		match, err := clf.Predict(f)

		if err != nil {
			return nil, errors.Wrapf(err, "vector %d", i)
		}

		out[i] = match
	}

	return out, nil
}

// Accuracy returns the fraction of vectors whose prediction equals the
// expected label
func Accuracy(clf Classifier, features [][]float64, labels []bool) (float64, error) {

	if len(features) != len(labels) {
		return 0, errors.Errorf("got %d vectors but %d labels", len(features), len(labels))
	}

	if len(features) == 0 {
		return 0, errors.New("no vectors to score")
	}

	pred, err := PredictAll(clf, features)

	if err != nil {
		return 0, err
	}

	correct := 0

	for i, p := range pred {
		if p == labels[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(labels)), nil
}

// checkDim returns an error if the vector does not have the expected length
func checkDim(features []float64, dim int) error {
	if len(features) != dim {
		return errors.Errorf("feature vector has length %d, model expects %d", len(features), dim)
	}

	return nil
}
