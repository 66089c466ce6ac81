// internal/status/project.go
package status

import (
	"math"

	"github.com/tamzrod/solax-monitor/internal/registers"
)

// Project reduces decoded measurements to a Snapshot.
// Missing measurements read as 0. Never fails.
func Project(ms registers.Measurements) Snapshot {
	battery := ms.ValueOr(registers.NameBatteryPower, 0)
	grid := ms.ValueOr(registers.NameGridPower, 0)

	return Snapshot{
		SolarW:           ms.ValueOr(registers.NameTotalSolarPower, 0),
		BatteryPct:       ms.ValueOr(registers.NameBatteryCapacity, 0),
		BatteryPowerW:    math.Abs(battery),
		BatteryDirection: batteryDirection(battery),
		GridPowerW:       math.Abs(grid),
		GridDirection:    gridDirection(grid),
		HomeConsumptionW: ms.ValueOr(registers.NameLoadPower, 0),
	}
}

// Exact 0 is a real idle reading.
func batteryDirection(p float64) BatteryDirection {
	switch {
	case p > 0:
		return BatteryCharging
	case p < 0:
		return BatteryDischarging
	default:
		return BatteryIdle
	}
}

func gridDirection(p float64) GridDirection {
	switch {
	case p > 0:
		return GridExporting
	case p < 0:
		return GridImporting
	default:
		return GridIdle
	}
}
