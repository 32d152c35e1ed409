/*
go-vehicletrack detects and tracks vehicles in a video stream from a static
camera.

Every frame is searched exhaustively with a grid of sliding windows whose size
and position follow the camera perspective, from large windows near the camera
to small windows towards the horizon.  Each window is passed through a feature
extractor and a pre-trained binary classifier.  Matching windows add heat to a
per stream heat map which fades over time, so only detections that persist
across frames survive thresholding and are labelled as vehicles.

The root package holds the configuration layer and the error types shared by
the subpackages.  See the geometry, finder, heatmap, tracker and stream
subpackages for the processing pipeline and example/vehicletrack for the
command line tool.
*/
package vehicletrack
