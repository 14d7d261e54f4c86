package media

// DeviceInfo describes one capture device as reported by the system.
// ID is stable and unique, Name is a display label.
type DeviceInfo struct {
	ID   string
	Name string
}

// CaptureCapability is one mode a capture device can be opened in.
type CaptureCapability struct {
	Width        uint32
	Height       uint32
	MaxFramerate float64
	Format       PixelFormat
}

// VideoDeviceConfig filters device and capability selection. Empty/zero
// fields are unconstrained.
type VideoDeviceConfig struct {
	DeviceID  string
	Width     uint32
	Height    uint32
	Framerate float64
}

func (c VideoDeviceConfig) constrained() bool {
	return c.Width > 0 || c.Height > 0 || c.Framerate > 0.0
}

// PixelFormat is the engine's raw pixel layout enum.
type PixelFormat int32

const (
	FormatUnknown PixelFormat = iota
	FormatI420
	FormatIYUV
	FormatRGB24
	FormatABGR
	FormatARGB
	FormatARGB4444
	FormatRGB565
	FormatARGB1555
	FormatYUY2
	FormatYV12
	FormatUYVY
	FormatMJPEG
	FormatNV21
	FormatNV12
	FormatBGRA
)

// FourCC is a four-character code identifying a raw pixel layout.
type FourCC uint32

// FourCCAny is the wildcard for formats with no known code. Capabilities
// reporting it are dropped from enumeration.
const FourCCAny FourCC = 0xFFFFFFFF

func MakeFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

func (f FourCC) String() string {
	if f == FourCCAny {
		return "ANY"
	}
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

// FourCCFromFormat converts a pixel format into its FOURCC counterpart.
func FourCCFromFormat(format PixelFormat) FourCC {
	switch format {
	case FormatI420:
		return MakeFourCC('I', '4', '2', '0')
	case FormatIYUV:
		return MakeFourCC('I', 'Y', 'U', 'V')
	case FormatRGB24:
		// matches how the engine maps 24-bit RGB internally
		return MakeFourCC('2', '4', 'B', 'G')
	case FormatABGR:
		return MakeFourCC('A', 'B', 'G', 'R')
	case FormatARGB:
		return MakeFourCC('A', 'R', 'G', 'B')
	case FormatARGB4444:
		return MakeFourCC('R', '4', '4', '4')
	case FormatRGB565:
		return MakeFourCC('R', 'G', 'B', 'P')
	case FormatARGB1555:
		return MakeFourCC('R', 'G', 'B', 'O')
	case FormatYUY2:
		return MakeFourCC('Y', 'U', 'Y', '2')
	case FormatYV12:
		return MakeFourCC('Y', 'V', '1', '2')
	case FormatUYVY:
		return MakeFourCC('U', 'Y', 'V', 'Y')
	case FormatMJPEG:
		return MakeFourCC('M', 'J', 'P', 'G')
	case FormatNV21:
		return MakeFourCC('N', 'V', '2', '1')
	case FormatNV12:
		return MakeFourCC('N', 'V', '1', '2')
	case FormatBGRA:
		return MakeFourCC('B', 'G', 'R', 'A')
	default:
		return FourCCAny
	}
}
