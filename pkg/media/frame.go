package media

// VideoFrame is one raw video frame. Plane layout depends on Format:
// planar YUV formats carry one entry per plane (Y, U, V, optional alpha),
// packed formats carry a single plane.
type VideoFrame struct {
	Format  PixelFormat
	Width   int32
	Height  int32
	Planes  [][]byte
	Strides []int32
}

// AudioFrame is one chunk of interleaved PCM audio.
type AudioFrame struct {
	Data          []byte
	BitsPerSample uint32
	SampleRate    uint32
	ChannelCount  uint32
	SampleCount   uint32
}

// VideoFrameSink consumes frames fanned out by a source. OnFrame is invoked
// on the producing thread; the frame is only valid for the duration of the
// call.
type VideoFrameSink interface {
	OnFrame(frame *VideoFrame)
}

type funcSink struct {
	fn func(frame *VideoFrame)
}

func (s *funcSink) OnFrame(frame *VideoFrame) {
	s.fn(frame)
}

// SinkFunc adapts a plain function to VideoFrameSink. Each call returns a
// distinct sink identity, so the result must be kept to remove it later.
func SinkFunc(fn func(frame *VideoFrame)) VideoFrameSink {
	return &funcSink{fn: fn}
}

// CopyPlane copies rows between pixel buffers with possibly different row
// strides. When both strides equal the row size the copy collapses to one
// contiguous copy.
func CopyPlane(dst []byte, dstStride int32, src []byte, srcStride int32, rowSize int32, rows int32) {
	if dstStride == rowSize && srcStride == rowSize {
		copy(dst[:int(rowSize)*int(rows)], src)
		return
	}
	for i := int32(0); i < rows; i++ {
		copy(dst[i*dstStride:i*dstStride+rowSize], src[i*srcStride:i*srcStride+rowSize])
	}
}
