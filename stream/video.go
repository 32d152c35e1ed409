package stream

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultCodec is the FourCC used when creating video files
const DefaultCodec = "mp4v"

// VideoFile is a Source decoding the video track of a file.  Audio is
// ignored.
type VideoFile struct {
	video *gocv.VideoCapture
	fps   float64
	size  image.Point
}

// OpenVideoFile opens the video file at path for reading
func OpenVideoFile(path string) (*VideoFile, error) {

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, errors.Wrapf(err, "error opening video %s", path)
	}

	v := &VideoFile{
		video: video,
		fps:   video.Get(gocv.VideoCaptureFPS),
		size: image.Pt(int(video.Get(gocv.VideoCaptureFrameWidth)),
			int(video.Get(gocv.VideoCaptureFrameHeight))),
	}

	if v.size.X <= 0 || v.size.Y <= 0 {
		video.Close()
		return nil, errors.Errorf("video %s has no frame size", path)
	}

	return v, nil
}

// Read decodes the next non empty frame into dst
func (v *VideoFile) Read(dst *gocv.Mat) (bool, error) {

	for {
		// read the next frame from the video
		if ok := v.video.Read(dst); !ok {
			return false, nil
		}

		if !dst.Empty() {
			return true, nil
		}
	}
}

// FPS returns the frame rate reported by the container
func (v *VideoFile) FPS() float64 {
	return v.fps
}

// Size returns the frame size
func (v *VideoFile) Size() image.Point {
	return v.size
}

// Close the video file
func (v *VideoFile) Close() error {
	return v.video.Close()
}

// VideoWriter is a Sink encoding frames into a video file without audio
type VideoWriter struct {
	writer *gocv.VideoWriter
	size   image.Point
}

// CreateVideoFile creates a video file at path with the given FourCC codec,
// frame rate and frame size.  An empty codec uses DefaultCodec.
func CreateVideoFile(path, codec string, fps float64, size image.Point) (*VideoWriter, error) {

	if codec == "" {
		codec = DefaultCodec
	}

	if fps <= 0 {
		return nil, errors.Errorf("invalid frame rate %f", fps)
	}

	writer, err := gocv.VideoWriterFile(path, codec, fps, size.X, size.Y, true)

	if err != nil {
		return nil, errors.Wrapf(err, "error creating video %s", path)
	}

	if !writer.IsOpened() {
		writer.Close()
		return nil, errors.Errorf("error creating video %s with codec %s", path, codec)
	}

	return &VideoWriter{writer: writer, size: size}, nil
}

// Write encodes frame, which must match the size given at creation
func (w *VideoWriter) Write(frame gocv.Mat) error {

	if got := image.Pt(frame.Cols(), frame.Rows()); got != w.size {
		return errors.Errorf("frame size %v does not match video size %v", got, w.size)
	}

	return w.writer.Write(frame)
}

// Close finalises the video file
func (w *VideoWriter) Close() error {
	return w.writer.Close()
}

// Create opens a video sink matching the frame rate and size of src
func Create(path, codec string, src Source) (*VideoWriter, error) {
	return CreateVideoFile(path, codec, src.FPS(), src.Size())
}
