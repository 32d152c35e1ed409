package store

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-vehicletrack/geometry"
	"github.com/swdee/go-vehicletrack/heatmap"
	"github.com/swdee/go-vehicletrack/tracker"
)

func openStore(t *testing.T) *Store {
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testFrame(index int) *tracker.Frame {
	right := heatmap.Box{Label: 1, Rectangle: image.Rect(700, 400, 800, 500), Area: 10000}
	left := heatmap.Box{Label: 2, Rectangle: image.Rect(100, 400, 200, 500), Area: 9000}

	return &tracker.Frame{
		Index: index,
		Matches: []geometry.Window{
			{Plane: 0, Rectangle: right.Rectangle},
			{Plane: 1, Rectangle: left.Rectangle},
			{Plane: 1, Rectangle: left.Rectangle},
		},
		Boxes:   []heatmap.Box{right, left},
		Drawn:   []heatmap.Box{right},
		MinHeat: -2,
		MaxHeat: float32(index),
	}
}

func TestSessions(t *testing.T) {

	s := openStore(t)

	a, err := s.StartSession("highway.mp4", image.Pt(1280, 720), 25)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	b, err := s.StartSession("city.mp4", image.Pt(640, 480), 30)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	got, err := s.Session(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "highway.mp4", got.Source)
	assert.Equal(t, image.Pt(1280, 720), got.Size)
	assert.Equal(t, 25.0, got.FPS)
	assert.Equal(t, a.StartedAt.UnixNano(), got.StartedAt.UnixNano())

	all, err := s.Sessions()
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = s.Session("missing")
	assert.Error(t, err)
}

func TestRecordFrame(t *testing.T) {

	s := openStore(t)

	sess, err := s.StartSession("highway.mp4", image.Pt(1280, 720), 25)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordFrame(sess.ID, testFrame(i)))
	}

	stats, err := s.FrameStats(sess.ID)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, FrameStat{
		Index: 2, Matches: 3, Components: 2, Drawn: 1, MinHeat: -2, MaxHeat: 2,
	}, stats[2])

	boxes, err := s.Boxes(sess.ID, 1)
	require.NoError(t, err)
	require.Len(t, boxes, 2)

	assert.Equal(t, image.Rect(700, 400, 800, 500), boxes[0].Rectangle)
	assert.True(t, boxes[0].Drawn)
	assert.Equal(t, 10000, boxes[0].Area)
	assert.Equal(t, 2, boxes[1].Label)
	assert.False(t, boxes[1].Drawn)

	// frames are unique per session
	assert.Error(t, s.RecordFrame(sess.ID, testFrame(1)))

	// unknown sessions are rejected
	assert.Error(t, s.RecordFrame("missing", testFrame(0)))

	empty, err := s.FrameStats("missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReopen(t *testing.T) {

	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := Open(path)
	require.NoError(t, err)

	sess, err := s.StartSession("a.mp4", image.Pt(10, 10), 1)
	require.NoError(t, err)
	require.NoError(t, s.RecordFrame(sess.ID, testFrame(0)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	stats, err := s.FrameStats(sess.ID)
	require.NoError(t, err)
	assert.Len(t, stats, 1)
}
