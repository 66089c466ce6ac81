// internal/registers/transform.go
package registers

// Raw is one register window as delivered by the device, index-addressable.
// Values are carried wider than 16 bits; signedness is applied by transforms.
type Raw []int64

// TransformKind selects how a raw register becomes an engineering value.
type TransformKind uint8

const (
	Identity TransformKind = iota
	ScaleTenth
	ScaleHundredth
	ToSigned16
	CombineSigned32
)

func (k TransformKind) String() string {
	switch k {
	case Identity:
		return "identity"
	case ScaleTenth:
		return "scale_tenth"
	case ScaleHundredth:
		return "scale_hundredth"
	case ToSigned16:
		return "to_signed16"
	case CombineSigned32:
		return "combine_signed32"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name.
func (k TransformKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Transform is a tagged decode step.
// High and Low are only meaningful for CombineSigned32.
type Transform struct {
	Kind TransformKind `json:"kind"`
	High int           `json:"high,omitempty"`
	Low  int           `json:"low,omitempty"`
}

// Combine builds a CombineSigned32 transform over two register indexes.
func Combine(high, low int) Transform {
	return Transform{Kind: CombineSigned32, High: high, Low: low}
}

// Apply converts value (the entry's own register) into its physical value.
// raw is the whole window, needed by multi-register kinds.
// Apply never fails: a combine over missing registers yields 0.
func (t Transform) Apply(value float64, raw Raw) float64 {
	switch t.Kind {
	case ScaleTenth:
		return value / 10
	case ScaleHundredth:
		return value / 100
	case ToSigned16:
		return float64(toSigned16(int64(value)))
	case CombineSigned32:
		return float64(combineSigned32(raw, t.High, t.Low))
	default:
		return value
	}
}

// toSigned16 reinterprets [0, 65535] as two's-complement 16-bit.
func toSigned16(x int64) int64 {
	if x > 32767 {
		return x - 65536
	}
	return x
}

// combineSigned32 composes high:low into a two's-complement 32-bit value.
func combineSigned32(raw Raw, high, low int) int64 {
	if high < 0 || low < 0 || high >= len(raw) || low >= len(raw) {
		return 0
	}

	combined := (raw[high] << 16) | (raw[low] & 0xFFFF)
	if combined > 2147483647 {
		combined -= 4294967296
	}
	return combined
}
