package rtc

import "errors"

var (
	ErrEngineClosed           = errors.New("engine has already closed")
	ErrConnectionClosed       = errors.New("peer connection has already closed")
	ErrTrackNotFound          = errors.New("track does not belong to this connection")
	ErrDataChannelNotFound    = errors.New("data channel does not belong to this connection")
	ErrEmptyTrackName         = errors.New("track name must not be empty")
	ErrInvalidDescriptionType = errors.New("unrecognized session description type")
	ErrDataChannelClosed      = errors.New("data channel is not open")
)
