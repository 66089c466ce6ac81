// internal/registers/decode.go
package registers

// Measurement is one decoded value with its unit.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Measurements maps measurement name to value.
// A missing name means unknown, not zero.
type Measurements map[string]Measurement

// Value returns the named value if it was decoded.
func (ms Measurements) Value(name string) (float64, bool) {
	m, ok := ms[name]
	if !ok {
		return 0, false
	}
	return m.Value, true
}

// ValueOr returns the named value or def when it is missing.
func (ms Measurements) ValueOr(name string, def float64) float64 {
	if v, ok := ms.Value(name); ok {
		return v
	}
	return def
}

// Decode applies m to raw.
// Entries whose index is outside raw are omitted.
// No IO. Never fails. Does not mutate m.
func Decode(raw Raw, m Map) Measurements {
	out := make(Measurements, len(m.entries)+2)

	for _, e := range m.entries {
		if e.Index < 0 || e.Index >= len(raw) {
			continue
		}

		v := e.Transform.Apply(float64(raw[e.Index]), raw)
		out[e.Name] = Measurement{Value: v, Unit: e.Unit}
	}

	// ---- derived aggregates ----

	pv1, ok1 := out[NamePV1Power]
	pv2, ok2 := out[NamePV2Power]
	if ok1 && ok2 {
		out[NameTotalSolarPower] = Measurement{
			Value: pv1.Value + pv2.Value,
			Unit:  UnitW,
		}
	}

	// Layouts without a load register: load is what the inverter
	// delivers minus what is fed into the grid.
	if _, ok := out[NameLoadPower]; !ok {
		inv, okInv := out[NameInverterPower]
		grid, okGrid := out[NameGridPower]
		if okInv && okGrid {
			out[NameLoadPower] = Measurement{
				Value: inv.Value - grid.Value,
				Unit:  UnitW,
			}
		}
	}

	return out
}
