// internal/status/snapshot.go
package status

// BatteryDirection classifies battery power flow.
type BatteryDirection uint8

const (
	BatteryUnknown BatteryDirection = iota
	BatteryIdle
	BatteryCharging
	BatteryDischarging
)

func (d BatteryDirection) String() string {
	switch d {
	case BatteryIdle:
		return LabelIdle
	case BatteryCharging:
		return LabelCharging
	case BatteryDischarging:
		return LabelDischarging
	default:
		return LabelUnknown
	}
}

// GridDirection classifies grid power flow.
type GridDirection uint8

const (
	GridUnknown GridDirection = iota
	GridIdle
	GridExporting
	GridImporting
)

func (d GridDirection) String() string {
	switch d {
	case GridIdle:
		return LabelIdle
	case GridExporting:
		return LabelExporting
	case GridImporting:
		return LabelImporting
	default:
		return LabelUnknown
	}
}

// Snapshot is one projected power status reading.
// Power magnitudes are absolute; direction lives in its own field.
type Snapshot struct {
	SolarW           float64
	BatteryPct       float64
	BatteryPowerW    float64
	BatteryDirection BatteryDirection
	GridPowerW       float64
	GridDirection    GridDirection
	HomeConsumptionW float64
}
