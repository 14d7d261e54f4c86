package interop

import (
	"errors"

	"github.com/peerlink/interop/pkg/handle"
	"github.com/peerlink/interop/pkg/logger"
	"github.com/peerlink/interop/pkg/media"
	"github.com/peerlink/interop/pkg/rtc"
)

// Result is the closed error-code enumeration every boundary entry point
// returns. No error value and no panic ever crosses the boundary.
type Result int32

const (
	ResultSuccess Result = iota
	ResultInvalidParameter
	ResultInvalidNativeHandle
	ResultNotFound
	ResultInvalidOperation
	ResultUnknownError
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultInvalidParameter:
		return "invalid_parameter"
	case ResultInvalidNativeHandle:
		return "invalid_native_handle"
	case ResultNotFound:
		return "not_found"
	case ResultInvalidOperation:
		return "invalid_operation"
	default:
		return "unknown_error"
	}
}

var (
	ErrNotInitialized     = errors.New("library has not been initialized")
	ErrAlreadyInitialized = errors.New("library is already initialized")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// toResult maps an internal error onto the boundary taxonomy. Unclassified
// engine failures become UnknownError.
func toResult(err error) Result {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, handle.ErrInvalidHandle):
		return ResultInvalidNativeHandle
	case errors.Is(err, media.ErrDeviceNotFound):
		return ResultNotFound
	case errors.Is(err, media.ErrNoDeviceOpened),
		errors.Is(err, media.ErrNoProvider),
		errors.Is(err, media.ErrCaptureStartFail),
		errors.Is(err, media.ErrSourceClosed),
		errors.Is(err, rtc.ErrConnectionClosed),
		errors.Is(err, rtc.ErrEngineClosed),
		errors.Is(err, ErrNotInitialized),
		errors.Is(err, ErrAlreadyInitialized):
		return ResultInvalidOperation
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, media.ErrInvalidFrame),
		errors.Is(err, rtc.ErrInvalidDescriptionType),
		errors.Is(err, rtc.ErrEmptyTrackName):
		return ResultInvalidParameter
	case errors.Is(err, rtc.ErrTrackNotFound),
		errors.Is(err, rtc.ErrDataChannelNotFound):
		return ResultInvalidNativeHandle
	case errors.Is(err, rtc.ErrDataChannelClosed):
		return ResultInvalidOperation
	default:
		return ResultUnknownError
	}
}

// guard runs fn and converts its outcome, turning a panic into UnknownError
// instead of letting it unwind through the boundary.
func guard(fn func() error) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("panic in boundary entry point", nil, "panic", r)
			res = ResultUnknownError
		}
	}()
	return toResult(fn())
}
