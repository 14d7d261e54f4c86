package interop

import (
	"github.com/peerlink/interop/pkg/sdputil"
)

// SdpForceCodecs rewrites message so each media kind with a non-empty
// filter offers only the named codec, then writes the result into buf as a
// NUL-terminated string. The returned size is the exact capacity needed,
// terminator included. When buf is too small the call fails with
// InvalidParameter and writes nothing, so the caller can retry with the
// reported size.
func SdpForceCodecs(message string, audio, video sdputil.CodecFilter, buf []byte) (int, Result) {
	if message == "" {
		return 0, ResultInvalidParameter
	}

	filtered, err := sdputil.ForceCodecs(message, audio, video)
	if err != nil {
		return 0, ResultInvalidParameter
	}

	required := len(filtered) + 1
	if len(buf) < required {
		return required, ResultInvalidParameter
	}
	copy(buf, filtered)
	buf[len(filtered)] = 0
	return required, ResultSuccess
}
