package finder

import (
	"context"
	"image"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vehicletrack "github.com/swdee/go-vehicletrack"
	"github.com/swdee/go-vehicletrack/classifier"
	"github.com/swdee/go-vehicletrack/features"
	"github.com/swdee/go-vehicletrack/geometry"
	"gocv.io/x/gocv"
)

// meanExtractor returns the sum of the patch channel means as a single
// feature
type meanExtractor struct {
	closed *int32
	err    error
}

func (m *meanExtractor) Extract(patch gocv.Mat) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}

	s := patch.Mean()
	return []float64{s.Val1 + s.Val2 + s.Val3}, nil
}

func (m *meanExtractor) Len() int {
	return 1
}

func (m *meanExtractor) Close() error {
	if m.closed != nil {
		atomic.AddInt32(m.closed, 1)
	}
	return nil
}

// brightClassifier matches any patch containing non zero samples
var brightClassifier = classifier.Func(func(f []float64) (bool, error) {
	return f[0] > 0, nil
})

// batchCounter is a batch classifier recording how it was called
type batchCounter struct {
	batches int32
	single  int32
}

func (b *batchCounter) Predict(f []float64) (bool, error) {
	atomic.AddInt32(&b.single, 1)
	return f[0] > 0, nil
}

func (b *batchCounter) PredictBatch(f [][]float64) ([]bool, error) {
	atomic.AddInt32(&b.batches, 1)
	out := make([]bool, len(f))

	for i, v := range f {
		out[i] = v[0] > 0
	}

	return out, nil
}

func testGenerator(t *testing.T) *geometry.Generator {
	gen, err := geometry.GeneratorFromConfig(vehicletrack.DefaultConfig())
	require.NoError(t, err)
	return gen
}

func testPool(t *testing.T, size int, ext *meanExtractor) *Pool {
	pool, err := NewPool(size, func() (features.Extractor, error) {
		e := *ext
		return &e, nil
	})
	require.NoError(t, err)
	return pool
}

// frameWithBlock returns a black 1280x720 float frame with a white block
func frameWithBlock(block image.Rectangle) gocv.Mat {
	frame := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV32FC3)
	frame.SetTo(gocv.NewScalar(0, 0, 0, 0))

	if !block.Empty() {
		region := frame.Region(block)
		region.SetTo(gocv.NewScalar(1, 1, 1, 0))
		region.Close()
	}

	return frame
}

func TestFindMatchesOverlappingWindows(t *testing.T) {

	block := image.Rect(1200, 640, 1280, 720)
	frame := frameWithBlock(block)
	defer frame.Close()

	gen := testGenerator(t)

	f, err := New(gen, testPool(t, 4, &meanExtractor{}), brightClassifier)
	require.NoError(t, err)
	defer f.Close()

	hits, err := f.Find(context.Background(), frame)
	require.NoError(t, err)

	var want []geometry.Window

	for _, w := range gen.Grid() {
		if w.Overlaps(block) {
			want = append(want, w)
		}
	}

	require.NotEmpty(t, want)
	assert.Equal(t, want, hits)
}

func TestFindNoMatches(t *testing.T) {

	frame := frameWithBlock(image.Rectangle{})
	defer frame.Close()

	f, err := New(testGenerator(t), testPool(t, 2, &meanExtractor{}), classifier.Constant(false))
	require.NoError(t, err)
	defer f.Close()

	hits, err := f.Find(context.Background(), frame)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFindOrderIndependentOfWorkers(t *testing.T) {

	frame := frameWithBlock(image.Rect(500, 420, 700, 560))
	defer frame.Close()

	var results [][]geometry.Window

	for _, workers := range []int{1, 3, 8} {
		f, err := New(testGenerator(t), testPool(t, workers, &meanExtractor{}), brightClassifier)
		require.NoError(t, err)

		hits, err := f.Find(context.Background(), frame)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		results = append(results, hits)
	}

	require.NotEmpty(t, results[0])
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])
}

func TestFindUsesBatchClassifier(t *testing.T) {

	block := image.Rect(0, 600, 100, 700)
	frame := frameWithBlock(block)
	defer frame.Close()

	bc := &batchCounter{}

	f, err := New(testGenerator(t), testPool(t, 2, &meanExtractor{}), bc)
	require.NoError(t, err)
	defer f.Close()

	hits, err := f.Find(context.Background(), frame)
	require.NoError(t, err)

	assert.EqualValues(t, 1, bc.batches)
	assert.EqualValues(t, 0, bc.single)

	for _, w := range hits {
		assert.True(t, w.Overlaps(block), "window %v", w)
	}
}

func TestFindCollaboratorErrors(t *testing.T) {

	frame := frameWithBlock(image.Rectangle{})
	defer frame.Close()

	cause := errors.New("model exploded")

	tests := []struct {
		name string
		ext  *meanExtractor
		clf  classifier.Classifier
	}{
		{"extractor", &meanExtractor{err: cause}, classifier.Constant(true)},
		{"classifier", &meanExtractor{}, classifier.Func(func([]float64) (bool, error) {
			return false, cause
		})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := New(testGenerator(t), testPool(t, 2, tc.ext), tc.clf)
			require.NoError(t, err)
			defer f.Close()

			_, err = f.Find(context.Background(), frame)
			require.Error(t, err)
			assert.True(t, errors.Is(err, vehicletrack.ErrCollaborator))
			assert.True(t, errors.Is(err, cause))
		})
	}
}

func TestFindWindowOutsideFrame(t *testing.T) {

	// default geometry is tuned for 1280x720
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV32FC3)
	defer frame.Close()

	f, err := New(testGenerator(t), testPool(t, 1, &meanExtractor{}), classifier.Constant(true))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Find(context.Background(), frame)

	var be *vehicletrack.BoundsError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, image.Pt(640, 480), be.Frame)
}

func TestFindIgnoresCancellation(t *testing.T) {

	frame := frameWithBlock(image.Rect(1200, 640, 1280, 720))
	defer frame.Close()

	f, err := New(testGenerator(t), testPool(t, 2, &meanExtractor{}), brightClassifier)
	require.NoError(t, err)
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hits, err := f.Find(ctx, frame)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestFromConfig(t *testing.T) {

	cfg := vehicletrack.DefaultConfig()
	require.NoError(t, cfg.Set("finder", "workers", "2"))

	f, err := FromConfig(cfg, classifier.Constant(false))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 2, f.pool.Size())
	assert.Equal(t, 240, f.Generator().Size())

	require.NoError(t, cfg.Set("finder", "workers", "-1"))
	_, err = FromConfig(cfg, classifier.Constant(false))

	var ce *vehicletrack.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestPool(t *testing.T) {

	var closed int32

	pool := testPool(t, 3, &meanExtractor{closed: &closed})
	assert.Equal(t, 3, pool.Size())

	a := pool.Get()
	b := pool.Get()
	require.NotNil(t, a)
	require.NotNil(t, b)

	pool.Return(a)
	pool.Return(b)

	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())
	assert.EqualValues(t, 3, closed)
	assert.Nil(t, pool.Get())
}

func TestPoolCreationError(t *testing.T) {

	var closed int32
	created := 0

	_, err := NewPool(4, func() (features.Extractor, error) {
		if created == 2 {
			return nil, errors.New("out of memory")
		}

		created++
		return &meanExtractor{closed: &closed}, nil
	})

	require.Error(t, err)
	// extractors made before the failure are freed
	assert.EqualValues(t, 2, closed)

	_, err = NewPool(0, nil)
	assert.Error(t, err)
}
