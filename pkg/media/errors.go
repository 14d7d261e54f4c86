package media

import "errors"

var (
	ErrNoProvider       = errors.New("no capture provider is registered")
	ErrDeviceNotFound   = errors.New("no video capture device matches the requested id")
	ErrNoDeviceOpened   = errors.New("no video capture device could be opened")
	ErrSourceClosed     = errors.New("capture source has been closed")
	ErrInvalidFrame     = errors.New("video frame has no data planes")
	ErrCaptureStartFail = errors.New("capture module failed to start")
)
