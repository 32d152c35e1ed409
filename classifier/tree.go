package classifier

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// leafNode marks a node without children
const leafNode = -1

// DecisionTree is a binary decision tree stored as parallel node arrays.
// Internal node i sends a vector left when features[Feature[i]] <=
// Threshold[i].  Leaf values hold the class weights [non-match, match].
type DecisionTree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
	// NFeatures is the feature vector length the tree was trained on
	NFeatures int `json:"n_features"`
}

// init validates the node arrays
func (t *DecisionTree) init() error {

	n := len(t.ChildrenLeft)

	if n == 0 {
		return errors.New("decision tree has no nodes")
	}

	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("decision tree node arrays differ in length")
	}

	if t.NFeatures < 1 {
		return errors.New("decision tree n_features must be positive")
	}

	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]

		if left == leafNode || right == leafNode {
			if left != right {
				return errors.Errorf("node %d has a single child", i)
			}

			if len(t.Value[i]) != 2 {
				return errors.Errorf("leaf %d must hold 2 class weights, got %d", i, len(t.Value[i]))
			}

			continue
		}

		// children always follow their parent so a walk terminates
		if left <= i || left >= n || right <= i || right >= n {
			return errors.Errorf("node %d has invalid children %d, %d", i, left, right)
		}

		if t.Feature[i] < 0 || t.Feature[i] >= t.NFeatures {
			return errors.Errorf("node %d splits on invalid feature %d", i, t.Feature[i])
		}
	}

	return nil
}

// Dim returns the feature vector length of the model
func (t *DecisionTree) Dim() int {
	return t.NFeatures
}

// Predict walks the tree and returns true when the leaf favours a match
func (t *DecisionTree) Predict(features []float64) (bool, error) {

	if err := checkDim(features, t.NFeatures); err != nil {
		return false, err
	}

	node := 0

	for t.ChildrenLeft[node] != leafNode {
		if features[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}

	return floats.MaxIdx(t.Value[node]) == 1, nil
}
