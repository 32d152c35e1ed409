package vehicletrack

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
)

// ErrCollaborator is matched by errors.Is for any failure returned by a
// feature extractor or classifier.
var ErrCollaborator = errors.New("collaborator failed")

// ConfigError reports a missing or invalid tuning parameter, or a
// configuration that results in degenerate window geometry
type ConfigError struct {
	Section string
	Key     string
	Reason  string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config [%s]: %s", e.Section, e.Reason)
	}

	return fmt.Sprintf("config [%s] %s: %s", e.Section, e.Key, e.Reason)
}

// NewConfigError returns a ConfigError for the given section and key
func NewConfigError(section, key, format string, args ...interface{}) error {
	return &ConfigError{
		Section: section,
		Key:     key,
		Reason:  fmt.Sprintf(format, args...),
	}
}

// BoundsError reports a window or bounding box that falls outside the frame
// it is applied to.  This indicates the configured geometry does not match
// the video dimensions.
type BoundsError struct {
	// What describes the rectangle, eg: "window" or "bounding box"
	What string
	// Rect is the offending rectangle
	Rect image.Rectangle
	// Frame is the width (X) and height (Y) of the frame
	Frame image.Point
}

// Error implements the error interface
func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s %v outside of frame %dx%d", e.What, e.Rect,
		e.Frame.X, e.Frame.Y)
}

// CheckBounds returns a BoundsError if rect does not lie within a frame of
// the given size
func CheckBounds(what string, rect image.Rectangle, frame image.Point) error {
	if rect.Empty() || !rect.In(image.Rect(0, 0, frame.X, frame.Y)) {
		return &BoundsError{What: what, Rect: rect, Frame: frame}
	}

	return nil
}

// collaboratorError wraps a feature extraction or classification failure so
// both ErrCollaborator and the original cause remain matchable
type collaboratorError struct {
	msg string
	err error
}

func (e *collaboratorError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *collaboratorError) Unwrap() error {
	return e.err
}

func (e *collaboratorError) Is(target error) bool {
	return target == ErrCollaborator
}

// CollaboratorError annotates err as a failure of an external collaborator
func CollaboratorError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	return &collaboratorError{
		msg: fmt.Sprintf(format, args...),
		err: err,
	}
}
