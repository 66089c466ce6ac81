// internal/registers/units.go
package registers

// Unit is the physical unit of a decoded measurement.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitV
	UnitA
	UnitW
	UnitHz
	UnitC
	UnitKWh
	UnitPercent
)

// String returns the unit suffix as rendered next to a value.
func (u Unit) String() string {
	switch u {
	case UnitV:
		return "V"
	case UnitA:
		return "A"
	case UnitW:
		return "W"
	case UnitHz:
		return "Hz"
	case UnitC:
		return "C"
	case UnitKWh:
		return "kWh"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// MarshalText keeps serialized maps readable.
func (u Unit) MarshalText() ([]byte, error) {
	if u == UnitNone {
		return []byte("none"), nil
	}
	return []byte(u.String()), nil
}
