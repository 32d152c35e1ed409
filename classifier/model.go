package classifier

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Model types
const (
	TypeSVM          = "SVM"
	TypeDecisionTree = "DT"
)

// estimator is a classifier operating on standardised vectors
type estimator interface {
	Classifier
	Dim() int
}

// Model is a trained classifier together with the feature scaling applied
// before classification
type Model struct {
	Type   string
	Scaler *Scaler
	est    estimator
}

// modelFile is the JSON layout of a model file
type modelFile struct {
	Type   string        `json:"type"`
	Scaler *Scaler       `json:"scaler"`
	SVM    *SVM          `json:"svm,omitempty"`
	Tree   *DecisionTree `json:"tree,omitempty"`
}

// NewModel returns a model applying scaler before the given SVM or
// DecisionTree
func NewModel(scaler *Scaler, est Classifier) (*Model, error) {

	m := &Model{Scaler: scaler}

	switch e := est.(type) {
	case *SVM:
		if err := e.init(); err != nil {
			return nil, err
		}

		m.Type = TypeSVM
		m.est = e
	case *DecisionTree:
		if err := e.init(); err != nil {
			return nil, err
		}

		m.Type = TypeDecisionTree
		m.est = e
	default:
		return nil, errors.Errorf("unsupported estimator %T", est)
	}

	if err := m.check(); err != nil {
		return nil, err
	}

	return m, nil
}

// Load reads a JSON model file
func Load(path string) (*Model, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, errors.Wrap(err, "error opening model file")
	}

	defer f.Close()

	m, err := Decode(f)

	if err != nil {
		return nil, errors.Wrapf(err, "error loading model %s", path)
	}

	return m, nil
}

// Decode reads a JSON model from r
func Decode(r io.Reader) (*Model, error) {

	var mf modelFile

	if err := json.NewDecoder(r).Decode(&mf); err != nil {
		return nil, errors.Wrap(err, "error decoding model")
	}

	m := &Model{Type: mf.Type, Scaler: mf.Scaler}

	switch mf.Type {
	case TypeSVM:
		if mf.SVM == nil {
			return nil, errors.New("model type SVM has no svm section")
		}

		if err := mf.SVM.init(); err != nil {
			return nil, err
		}

		m.est = mf.SVM

	case TypeDecisionTree:
		if mf.Tree == nil {
			return nil, errors.New("model type DT has no tree section")
		}

		if err := mf.Tree.init(); err != nil {
			return nil, err
		}

		m.est = mf.Tree

	default:
		return nil, errors.Errorf("unknown model type %q", mf.Type)
	}

	if err := m.check(); err != nil {
		return nil, err
	}

	return m, nil
}

// Encode writes the model as JSON to w
func (m *Model) Encode(w io.Writer) error {

	mf := modelFile{Type: m.Type, Scaler: m.Scaler}

	switch e := m.est.(type) {
	case *SVM:
		mf.SVM = e
	case *DecisionTree:
		mf.Tree = e
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(mf)
}

// check validates the scaler against the estimator dimension
func (m *Model) check() error {

	if m.Scaler == nil {
		return errors.New("model has no scaler")
	}

	if err := m.Scaler.validate(); err != nil {
		return err
	}

	if m.Scaler.Dim() != m.est.Dim() {
		return errors.Errorf("scaler has dimension %d but %s expects %d",
			m.Scaler.Dim(), m.Type, m.est.Dim())
	}

	return nil
}

// Dim returns the feature vector length the model expects
func (m *Model) Dim() int {
	return m.est.Dim()
}

// Predict standardises the features and classifies them
func (m *Model) Predict(features []float64) (bool, error) {

	scaled, err := m.Scaler.Transform(features)

	if err != nil {
		return false, err
	}

	return m.est.Predict(scaled)
}

// PredictBatch classifies every vector
func (m *Model) PredictBatch(features [][]float64) ([]bool, error) {

	out := make([]bool, len(features))

	for i, f := range features {
		match, err := m.Predict(f)

		if err != nil {
			return nil, errors.Wrapf(err, "vector %d", i)
		}

		out[i] = match
	}

	return out, nil
}
