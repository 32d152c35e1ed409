package classifier

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SVM kernels
const (
	KernelLinear = "linear"
	KernelRBF    = "rbf"
)

// SVM is a binary support vector machine.  A positive decision value is a
// match.
type SVM struct {
	// Kernel is KernelLinear or KernelRBF
	Kernel string `json:"kernel"`
	// Coef are the primal weights of a linear SVM
	Coef []float64 `json:"coef,omitempty"`
	// SupportVectors and DualCoef define an RBF SVM
	SupportVectors [][]float64 `json:"support_vectors,omitempty"`
	DualCoef       []float64   `json:"dual_coef,omitempty"`
	// Gamma is the RBF kernel coefficient
	Gamma float64 `json:"gamma,omitempty"`
	// Intercept is added to the decision value
	Intercept float64 `json:"intercept"`

	sv *mat.Dense
}

// NewLinearSVM returns a linear SVM with the given weights and intercept
func NewLinearSVM(coef []float64, intercept float64) (*SVM, error) {

	s := &SVM{Kernel: KernelLinear, Coef: coef, Intercept: intercept}

	if err := s.init(); err != nil {
		return nil, err
	}

	return s, nil
}

// NewRBFSVM returns an RBF kernel SVM
func NewRBFSVM(supportVectors [][]float64, dualCoef []float64, gamma, intercept float64) (*SVM, error) {

	s := &SVM{
		Kernel:         KernelRBF,
		SupportVectors: supportVectors,
		DualCoef:       dualCoef,
		Gamma:          gamma,
		Intercept:      intercept,
	}

	if err := s.init(); err != nil {
		return nil, err
	}

	return s, nil
}

// init validates the model and prepares the support vector matrix
func (s *SVM) init() error {

	switch s.Kernel {
	case KernelLinear:
		if len(s.Coef) == 0 {
			return errors.New("linear svm has no coefficients")
		}

	case KernelRBF:
		n := len(s.SupportVectors)

		if n == 0 {
			return errors.New("rbf svm has no support vectors")
		}

		if len(s.DualCoef) != n {
			return errors.Errorf("rbf svm has %d support vectors but %d dual coefficients", n, len(s.DualCoef))
		}

		if s.Gamma <= 0 {
			return errors.Errorf("rbf svm gamma must be positive, got %f", s.Gamma)
		}

		dim := len(s.SupportVectors[0])
		s.sv = mat.NewDense(n, dim, nil)

		for i, v := range s.SupportVectors {
			if len(v) != dim {
				return errors.Errorf("support vector %d has length %d, expected %d", i, len(v), dim)
			}

			s.sv.SetRow(i, v)
		}

	default:
		return errors.Errorf("unknown svm kernel %q", s.Kernel)
	}

	return nil
}

// Dim returns the feature vector length of the model
func (s *SVM) Dim() int {
	if s.Kernel == KernelLinear {
		return len(s.Coef)
	}

	_, c := s.sv.Dims()
	return c
}

// Decision returns the signed distance of features from the separating
// hyperplane
func (s *SVM) Decision(features []float64) (float64, error) {

	if err := checkDim(features, s.Dim()); err != nil {
		return 0, err
	}

	if s.Kernel == KernelLinear {
		return floats.Dot(s.Coef, features) + s.Intercept, nil
	}

	x := mat.NewVecDense(len(features), features)
	diff := mat.NewVecDense(len(features), nil)
	sum := s.Intercept

	for i, alpha := range s.DualCoef {
		diff.SubVec(s.sv.RowView(i), x)
		sum += alpha * math.Exp(-s.Gamma*mat.Dot(diff, diff))
	}

	return sum, nil
}

// Predict returns true for a positive decision value
func (s *SVM) Predict(features []float64) (bool, error) {

	d, err := s.Decision(features)

	if err != nil {
		return false, err
	}

	return d > 0, nil
}

// PredictBatch decides every vector
func (s *SVM) PredictBatch(features [][]float64) ([]bool, error) {

	out := make([]bool, len(features))

	for i, f := range features {
		match, err := s.Predict(f)

		if err != nil {
			return nil, errors.Wrapf(err, "vector %d", i)
		}

		out[i] = match
	}

	return out, nil
}
