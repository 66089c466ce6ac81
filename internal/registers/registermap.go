// internal/registers/registermap.go
package registers

import "encoding/json"

// Model is a canonical device model identifier.
type Model string

const (
	ModelX3HybridG4 Model = "x3_hybrid_g4"
)

// Measurement names produced by the decoder.
const (
	NameGrid1Voltage = "Grid 1 Voltage"
	NameGrid2Voltage = "Grid 2 Voltage"
	NameGrid3Voltage = "Grid 3 Voltage"
	NameGrid1Current = "Grid 1 Current"
	NameGrid2Current = "Grid 2 Current"
	NameGrid3Current = "Grid 3 Current"
	NameGrid1Power   = "Grid 1 Power"
	NameGrid2Power   = "Grid 2 Power"
	NameGrid3Power   = "Grid 3 Power"

	NamePV1Voltage = "PV1 Voltage"
	NamePV2Voltage = "PV2 Voltage"
	NamePV1Current = "PV1 Current"
	NamePV2Current = "PV2 Current"
	NamePV1Power   = "PV1 Power"
	NamePV2Power   = "PV2 Power"

	NameBatteryPower    = "Battery Power"
	NameBatteryCapacity = "Battery Remaining Capacity"
	NameLoadPower       = "Load/Generator Power"
	NameInverterPower   = "Inverter Power"
	NameGridPower       = "Grid Power"

	// NameTotalSolarPower is derived, not read from a register.
	NameTotalSolarPower = "Total Solar Power"
)

// Entry maps one measurement name onto its register.
type Entry struct {
	Name      string    `json:"name"`
	Index     int       `json:"index"`
	Unit      Unit      `json:"unit"`
	Transform Transform `json:"transform"`
}

// Map is an immutable register layout for one device model.
type Map struct {
	model   Model
	layout  Layout
	entries []Entry
	byName  map[string]int
}

// Layout is the register addressing a transport delivers.
// The same model numbers its registers differently per transport.
type Layout uint8

const (
	// LayoutHTTP indexes the Data array of the local HTTP API.
	LayoutHTTP Layout = iota

	// LayoutModbus indexes FC4 input registers from address 0.
	LayoutModbus
)

func (l Layout) String() string {
	switch l {
	case LayoutHTTP:
		return "http"
	case LayoutModbus:
		return "modbus"
	default:
		return "unknown"
	}
}

func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Models lists every model with a known layout.
func Models() []Model {
	return []Model{ModelX3HybridG4}
}

// Supported reports whether ForModel has a layout for m.
func Supported(m Model) bool {
	for _, known := range Models() {
		if known == m {
			return true
		}
	}
	return false
}

// ForModel returns the HTTP register layout for m.
// Unknown models yield an empty map; rejecting them is config validation's job.
func ForModel(m Model) Map {
	return ForLayout(m, LayoutHTTP)
}

// ForLayout returns the register layout for m as addressed by l.
// Unknown combinations yield an empty map.
func ForLayout(m Model, l Layout) Map {
	var entries []Entry
	switch {
	case m == ModelX3HybridG4 && l == LayoutHTTP:
		entries = x3HybridG4()
	case m == ModelX3HybridG4 && l == LayoutModbus:
		entries = x3HybridG4Modbus()
	}
	mp := newMap(m, entries)
	mp.layout = l
	return mp
}

func newMap(m Model, entries []Entry) Map {
	byName := make(map[string]int, len(entries))
	for i, e := range entries {
		byName[e.Name] = i
	}
	return Map{model: m, entries: entries, byName: byName}
}

// Model returns the device model this layout describes.
func (m Map) Model() Model { return m.model }

// Layout returns the addressing the map expects.
func (m Map) Layout() Layout { return m.layout }

// Span is the window length needed to decode every entry.
func (m Map) Span() int {
	n := 0
	for _, e := range m.entries {
		idx := []int{e.Index}
		if e.Transform.Kind == CombineSigned32 {
			idx = append(idx, e.Transform.High, e.Transform.Low)
		}
		for _, i := range idx {
			if i+1 > n {
				n = i + 1
			}
		}
	}
	return n
}

// Len returns the number of register entries.
func (m Map) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in declaration order.
func (m Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Lookup finds the entry for name.
func (m Map) Lookup(name string) (Entry, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

// MarshalJSON exposes the layout for inspection.
func (m Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Model   Model   `json:"model"`
		Layout  Layout  `json:"layout"`
		Entries []Entry `json:"entries"`
	}{
		Model:   m.model,
		Layout:  m.layout,
		Entries: m.entries,
	})
}

// ---- layouts ----

func x3HybridG4() []Entry {
	tenth := Transform{Kind: ScaleTenth}
	signed := Transform{Kind: ToSigned16}
	none := Transform{Kind: Identity}

	return []Entry{
		// grid
		{NameGrid1Voltage, 0, UnitV, tenth},
		{NameGrid2Voltage, 1, UnitV, tenth},
		{NameGrid3Voltage, 2, UnitV, tenth},
		{NameGrid1Current, 3, UnitA, tenth},
		{NameGrid2Current, 4, UnitA, tenth},
		{NameGrid3Current, 5, UnitA, tenth},
		{NameGrid1Power, 6, UnitW, signed},
		{NameGrid2Power, 7, UnitW, signed},
		{NameGrid3Power, 8, UnitW, signed},

		// solar
		{NamePV1Voltage, 10, UnitV, tenth},
		{NamePV2Voltage, 11, UnitV, tenth},
		{NamePV1Current, 12, UnitA, tenth},
		{NamePV2Current, 13, UnitA, tenth},
		{NamePV1Power, 14, UnitW, none},
		{NamePV2Power, 15, UnitW, none},

		// grid total spans two registers
		{NameGridPower, 34, UnitW, Combine(34, 35)},

		// battery
		{NameBatteryPower, 41, UnitW, signed},
		{NameBatteryCapacity, 103, UnitPercent, none},

		// home
		{NameLoadPower, 47, UnitW, signed},
	}
}

// x3HybridG4Modbus is the Gen4 input-register map (FC4, address 0).
// Feed-in power is a 32-bit value stored low word first.
// The inverter exposes no load register; Decode derives it.
func x3HybridG4Modbus() []Entry {
	tenth := Transform{Kind: ScaleTenth}
	signed := Transform{Kind: ToSigned16}
	none := Transform{Kind: Identity}

	return []Entry{
		// grid, per phase R/S/T
		{NameGrid1Voltage, 0x6A, UnitV, tenth},
		{NameGrid1Current, 0x6B, UnitA, tenth},
		{NameGrid1Power, 0x6C, UnitW, signed},
		{NameGrid2Voltage, 0x6E, UnitV, tenth},
		{NameGrid2Current, 0x6F, UnitA, tenth},
		{NameGrid2Power, 0x70, UnitW, signed},
		{NameGrid3Voltage, 0x72, UnitV, tenth},
		{NameGrid3Current, 0x73, UnitA, tenth},
		{NameGrid3Power, 0x74, UnitW, signed},

		// solar
		{NamePV1Voltage, 0x03, UnitV, tenth},
		{NamePV2Voltage, 0x04, UnitV, tenth},
		{NamePV1Current, 0x05, UnitA, tenth},
		{NamePV2Current, 0x06, UnitA, tenth},
		{NamePV1Power, 0x0A, UnitW, none},
		{NamePV2Power, 0x0B, UnitW, none},

		// inverter AC output
		{NameInverterPower, 0x02, UnitW, signed},

		// feed-in: positive exports
		{NameGridPower, 0x46, UnitW, Combine(0x47, 0x46)},

		// battery
		{NameBatteryPower, 0x16, UnitW, signed},
		{NameBatteryCapacity, 0x1C, UnitPercent, none},
	}
}
