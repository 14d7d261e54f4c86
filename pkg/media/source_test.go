package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func testFrame(width, height int32) *VideoFrame {
	return &VideoFrame{
		Format:  FormatI420,
		Width:   width,
		Height:  height,
		Planes:  [][]byte{make([]byte, width*height), make([]byte, width*height/4), make([]byte, width*height/4)},
		Strides: []int32{width, width / 2, width / 2},
	}
}

func TestBroadcasterFanOut(t *testing.T) {
	var b Broadcaster

	var got1, got2 int
	sink1 := SinkFunc(func(f *VideoFrame) { got1++ })
	sink2 := SinkFunc(func(f *VideoFrame) { got2++ })

	// frames before any sink are dropped
	b.OnFrame(testFrame(16, 16))

	b.AddSink(sink1)
	b.OnFrame(testFrame(16, 16))

	// added mid-stream, observes later frames only
	b.AddSink(sink2)
	b.OnFrame(testFrame(16, 16))

	b.RemoveSink(sink1)
	b.OnFrame(testFrame(16, 16))

	require.Equal(t, 2, got1)
	require.Equal(t, 2, got2)
	require.Equal(t, 1, b.NumSinks())
}

func TestExternalSourcePush(t *testing.T) {
	s := NewExternalSource()
	require.NotEmpty(t, s.ID())

	var frames int
	s.AddSink(SinkFunc(func(f *VideoFrame) { frames++ }))

	require.NoError(t, s.PushFrame(testFrame(8, 8)))
	require.ErrorIs(t, s.PushFrame(nil), ErrInvalidFrame)
	require.ErrorIs(t, s.PushFrame(&VideoFrame{}), ErrInvalidFrame)
	require.Equal(t, 1, frames)

	require.NoError(t, s.Close(context.Background()))
	require.ErrorIs(t, s.PushFrame(testFrame(8, 8)), ErrSourceClosed)
}

func TestCopyPlane(t *testing.T) {
	t.Run("tightly packed", func(t *testing.T) {
		src := []byte{1, 2, 3, 4, 5, 6}
		dst := make([]byte, 6)
		CopyPlane(dst, 3, src, 3, 3, 2)
		require.Equal(t, src, dst)
	})

	t.Run("mismatched strides", func(t *testing.T) {
		// 2 rows of 2 bytes, source stride 4, dest stride 3
		src := []byte{1, 2, 0, 0, 3, 4, 0, 0}
		dst := make([]byte, 6)
		CopyPlane(dst, 3, src, 4, 2, 2)
		require.Equal(t, []byte{1, 2, 0, 3, 4, 0}, dst)
	})
}

func TestFourCCTable(t *testing.T) {
	require.Equal(t, "I420", FourCCFromFormat(FormatI420).String())
	require.Equal(t, "MJPG", FourCCFromFormat(FormatMJPEG).String())
	require.Equal(t, "24BG", FourCCFromFormat(FormatRGB24).String())
	require.Equal(t, FourCCAny, FourCCFromFormat(FormatUnknown))
	require.Equal(t, FourCCAny, FourCCFromFormat(PixelFormat(99)))
}
