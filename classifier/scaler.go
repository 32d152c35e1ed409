package classifier

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardises feature vectors by removing the per feature mean and
// dividing by the per feature standard deviation
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// NewScaler returns a Scaler with the given mean and scale
func NewScaler(mean, scale []float64) (*Scaler, error) {

	s := &Scaler{Mean: mean, Scale: scale}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// FitScaler computes the mean and population standard deviation of each
// feature over the given vectors.  Features with zero deviation get a scale
// of 1 so they pass through centred but unscaled.
func FitScaler(vectors [][]float64) (*Scaler, error) {

	if len(vectors) == 0 {
		return nil, errors.New("no vectors to fit scaler")
	}

	dim := len(vectors[0])
	s := &Scaler{
		Mean:  make([]float64, dim),
		Scale: make([]float64, dim),
	}

	column := make([]float64, len(vectors))

	for j := 0; j < dim; j++ {
		for i, v := range vectors {
			if len(v) != dim {
				return nil, errors.Errorf("vector %d has length %d, expected %d", i, len(v), dim)
			}

			column[i] = v[j]
		}

		mean, std := stat.PopMeanStdDev(column, nil)

		if std == 0 {
			std = 1
		}

		s.Mean[j] = mean
		s.Scale[j] = std
	}

	return s, nil
}

// Dim returns the feature vector length the scaler was fitted on
func (s *Scaler) Dim() int {
	return len(s.Mean)
}

// Transform returns the standardised copy of features
func (s *Scaler) Transform(features []float64) ([]float64, error) {

	if err := checkDim(features, s.Dim()); err != nil {
		return nil, err
	}

	out := make([]float64, len(features))

	for i, f := range features {
		out[i] = (f - s.Mean[i]) / s.Scale[i]
	}

	return out, nil
}

func (s *Scaler) validate() error {

	if len(s.Mean) != len(s.Scale) {
		return errors.Errorf("scaler mean has length %d but scale has %d", len(s.Mean), len(s.Scale))
	}

	for i, sc := range s.Scale {
		if sc == 0 {
			return errors.Errorf("scaler scale %d is zero", i)
		}
	}

	return nil
}
