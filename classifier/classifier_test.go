package classifier

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantAndFunc(t *testing.T) {

	match, err := Constant(true).Predict([]float64{1, 2})
	require.NoError(t, err)
	assert.True(t, match)

	match, err = Constant(false).Predict(nil)
	require.NoError(t, err)
	assert.False(t, match)

	boom := errors.New("boom")
	_, err = Func(func([]float64) (bool, error) { return false, boom }).Predict(nil)
	assert.True(t, errors.Is(err, boom))
}

func TestFitScaler(t *testing.T) {

	vectors := [][]float64{
		{1, 10, 5},
		{3, 10, 5},
		{5, 10, 5},
	}

	s, err := FitScaler(vectors)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{3, 10, 5}, s.Mean, 1e-12)
	// population standard deviation, constant features scale by 1
	assert.InDeltaSlice(t, []float64{math.Sqrt(8.0 / 3.0), 1, 1}, s.Scale, 1e-12)

	out, err := s.Transform([]float64{3, 12, 5})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 2, 0}, out, 1e-12)

	_, err = s.Transform([]float64{1})
	assert.Error(t, err)

	_, err = FitScaler(nil)
	assert.Error(t, err)

	_, err = FitScaler([][]float64{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestLinearSVM(t *testing.T) {

	svm, err := NewLinearSVM([]float64{1, -1}, -0.5)
	require.NoError(t, err)

	tests := []struct {
		x    []float64
		want bool
	}{
		{[]float64{2, 0}, true},
		{[]float64{0, 2}, false},
		{[]float64{0.5, 0}, false},
		{[]float64{0.6, 0}, true},
	}

	for _, tc := range tests {
		got, err := svm.Predict(tc.x)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "x=%v", tc.x)
	}

	_, err = svm.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestRBFSVM(t *testing.T) {

	// one positive support vector at the origin, one negative at (4,4)
	svm, err := NewRBFSVM([][]float64{{0, 0}, {4, 4}}, []float64{1, -1}, 0.5, 0)
	require.NoError(t, err)

	d, err := svm.Decision([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1-math.Exp(-16), d, 1e-12)

	near, err := svm.Predict([]float64{0.5, 0.5})
	require.NoError(t, err)
	assert.True(t, near)

	far, err := svm.Predict([]float64{3.5, 4})
	require.NoError(t, err)
	assert.False(t, far)

	batch, err := svm.PredictBatch([][]float64{{0, 0}, {4, 4}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, batch)

	_, err = NewRBFSVM([][]float64{{0, 0}}, []float64{1, 2}, 0.5, 0)
	assert.Error(t, err)

	_, err = NewRBFSVM([][]float64{{0, 0}}, []float64{1}, 0, 0)
	assert.Error(t, err)
}

// stumpTree splits on feature 1 at 0.5
func stumpTree() *DecisionTree {
	return &DecisionTree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{1, -2, -2},
		Threshold:     []float64{0.5, -2, -2},
		Value:         [][]float64{{5, 5}, {5, 1}, {0, 4}},
		NFeatures:     2,
	}
}

func TestDecisionTree(t *testing.T) {

	tree := stumpTree()
	require.NoError(t, tree.init())

	low, err := tree.Predict([]float64{9, 0.5})
	require.NoError(t, err)
	assert.False(t, low)

	high, err := tree.Predict([]float64{-9, 0.51})
	require.NoError(t, err)
	assert.True(t, high)

	_, err = tree.Predict([]float64{1})
	assert.Error(t, err)
}

func TestDecisionTreeValidation(t *testing.T) {

	tests := []struct {
		name   string
		modify func(tr *DecisionTree)
	}{
		{"no nodes", func(tr *DecisionTree) { *tr = DecisionTree{NFeatures: 2} }},
		{"length mismatch", func(tr *DecisionTree) { tr.Threshold = tr.Threshold[:2] }},
		{"single child", func(tr *DecisionTree) { tr.ChildrenRight[0] = -1 }},
		{"cycle", func(tr *DecisionTree) { tr.ChildrenLeft[0] = 0 }},
		{"bad feature", func(tr *DecisionTree) { tr.Feature[0] = 7 }},
		{"bad leaf", func(tr *DecisionTree) { tr.Value[1] = []float64{1} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := stumpTree()
			tc.modify(tr)
			assert.Error(t, tr.init())
		})
	}
}

const svmJSON = `{
  "type": "SVM",
  "scaler": {"mean": [1, 1], "scale": [2, 2]},
  "svm": {"kernel": "linear", "coef": [1, 0], "intercept": 0}
}`

const treeJSON = `{
  "type": "DT",
  "scaler": {"mean": [0, 0], "scale": [1, 1]},
  "tree": {
    "children_left": [1, -1, -1],
    "children_right": [2, -1, -1],
    "feature": [0, -2, -2],
    "threshold": [0, -2, -2],
    "value": [[1, 1], [1, 0], [0, 1]],
    "n_features": 2
  }
}`

func TestDecodeModels(t *testing.T) {

	svm, err := Decode(strings.NewReader(svmJSON))
	require.NoError(t, err)
	assert.Equal(t, TypeSVM, svm.Type)
	assert.Equal(t, 2, svm.Dim())

	// (3-1)/2 = 1 > 0
	match, err := svm.Predict([]float64{3, 0})
	require.NoError(t, err)
	assert.True(t, match)

	// (0-1)/2 < 0
	match, err = svm.Predict([]float64{0, 100})
	require.NoError(t, err)
	assert.False(t, match)

	tree, err := Decode(strings.NewReader(treeJSON))
	require.NoError(t, err)
	assert.Equal(t, TypeDecisionTree, tree.Type)

	acc, err := Accuracy(tree, [][]float64{{-1, 0}, {1, 0}, {2, 0}, {-2, 0}},
		[]bool{false, true, false, false})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-12)
}

func TestDecodeErrors(t *testing.T) {

	tests := []struct {
		name string
		json string
	}{
		{"bad json", `{"type":`},
		{"unknown type", `{"type": "KNN", "scaler": {"mean": [0], "scale": [1]}}`},
		{"missing svm", `{"type": "SVM", "scaler": {"mean": [0], "scale": [1]}}`},
		{"missing tree", `{"type": "DT", "scaler": {"mean": [0], "scale": [1]}}`},
		{"missing scaler", `{"type": "SVM", "svm": {"kernel": "linear", "coef": [1]}}`},
		{"dimension mismatch", `{"type": "SVM", "scaler": {"mean": [0, 0], "scale": [1, 1]}, "svm": {"kernel": "linear", "coef": [1]}}`},
		{"zero scale", `{"type": "SVM", "scaler": {"mean": [0], "scale": [0]}, "svm": {"kernel": "linear", "coef": [1]}}`},
		{"bad kernel", `{"type": "SVM", "scaler": {"mean": [0], "scale": [1]}, "svm": {"kernel": "poly", "coef": [1]}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.json))
			assert.Error(t, err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {

	scaler, err := NewScaler([]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)

	svm, err := NewRBFSVM([][]float64{{0, 0}, {4, 4}}, []float64{1, -1}, 0.5, 0)
	require.NoError(t, err)

	m, err := NewModel(scaler, svm)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)

	for _, x := range [][]float64{{0, 0}, {4, 4}, {1, 1}, {3, 3}} {
		want, err := m.Predict(x)
		require.NoError(t, err)

		got, err := decoded.Predict(x)
		require.NoError(t, err)

		assert.Equal(t, want, got, "x=%v", x)
	}

	_, err = NewModel(scaler, Constant(true))
	assert.Error(t, err)
}

func TestPredictAllFallback(t *testing.T) {

	calls := 0
	clf := Func(func(f []float64) (bool, error) {
		calls++
		return f[0] > 0, nil
	})

	out, err := PredictAll(clf, [][]float64{{1}, {-1}, {2}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, out)
	assert.Equal(t, 3, calls)

	_, err = Accuracy(clf, [][]float64{{1}}, nil)
	assert.Error(t, err)
}
