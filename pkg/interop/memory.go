package interop

import (
	"github.com/peerlink/interop/pkg/media"
)

// MemCpyStride copies rows of pixels between buffers whose row strides may
// differ. When both strides equal the row size the copy degenerates to one
// contiguous block copy. Strides must cover the row size and the buffers
// must hold every addressed row.
func MemCpyStride(dst []byte, dstStride int32, src []byte, srcStride int32, elemSize, elemCount int32) Result {
	if dst == nil || src == nil || elemSize < 0 || elemCount < 0 {
		return ResultInvalidParameter
	}
	if dstStride < elemSize || srcStride < elemSize {
		return ResultInvalidParameter
	}
	if elemCount > 0 {
		if int64(len(dst)) < int64(dstStride)*int64(elemCount-1)+int64(elemSize) ||
			int64(len(src)) < int64(srcStride)*int64(elemCount-1)+int64(elemSize) {
			return ResultInvalidParameter
		}
		media.CopyPlane(dst, dstStride, src, srcStride, elemSize, elemCount)
	}
	return ResultSuccess
}
