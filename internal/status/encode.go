// internal/status/encode.go
package status

import (
	"strconv"
	"strings"
)

// Record is the serialized status as served on /status.
// Every field is a number with a unit suffix, or a direction label.
type Record struct {
	SolarPanels     string `json:"solar_panels"`
	Batteries       string `json:"batteries"`
	BatteryStatus   string `json:"battery_status"`
	BatteryPower    string `json:"battery_power"`
	GridStatus      string `json:"grid_status"`
	GridPower       string `json:"grid_power"`
	HomeConsumption string `json:"home_consumption"`
}

// Initial is the record served before the first successful poll.
func Initial() Record {
	return Record{
		SolarPanels:     "0.0" + SuffixWatts,
		Batteries:       "0.0" + SuffixPercent,
		BatteryStatus:   LabelUnknown,
		BatteryPower:    "0.0" + SuffixWatts,
		GridStatus:      LabelUnknown,
		GridPower:       "0.0" + SuffixWatts,
		HomeConsumption: "0.0" + SuffixWatts,
	}
}

// Encode renders a Snapshot with one decimal place.
// No IO. No side effects.
func Encode(s Snapshot) Record {
	return Record{
		SolarPanels:     formatValue(s.SolarW, SuffixWatts),
		Batteries:       formatValue(s.BatteryPct, SuffixPercent),
		BatteryStatus:   s.BatteryDirection.String(),
		BatteryPower:    formatValue(s.BatteryPowerW, SuffixWatts),
		GridStatus:      s.GridDirection.String(),
		GridPower:       formatValue(s.GridPowerW, SuffixWatts),
		HomeConsumption: formatValue(s.HomeConsumptionW, SuffixWatts),
	}
}

// Parse reads a Record back into a Snapshot.
// Unparseable numbers read as 0, unknown labels as Unknown.
func Parse(r Record) Snapshot {
	return Snapshot{
		SolarW:           parseValue(r.SolarPanels, SuffixWatts),
		BatteryPct:       parseValue(r.Batteries, SuffixPercent),
		BatteryPowerW:    parseValue(r.BatteryPower, SuffixWatts),
		BatteryDirection: parseBattery(r.BatteryStatus),
		GridPowerW:       parseValue(r.GridPower, SuffixWatts),
		GridDirection:    parseGrid(r.GridStatus),
		HomeConsumptionW: parseValue(r.HomeConsumption, SuffixWatts),
	}
}

func formatValue(v float64, suffix string) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + suffix
}

func parseValue(s, suffix string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, suffix)

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseBattery(s string) BatteryDirection {
	switch s {
	case LabelIdle:
		return BatteryIdle
	case LabelCharging:
		return BatteryCharging
	case LabelDischarging:
		return BatteryDischarging
	default:
		return BatteryUnknown
	}
}

func parseGrid(s string) GridDirection {
	switch s {
	case LabelIdle:
		return GridIdle
	case LabelExporting:
		return GridExporting
	case LabelImporting:
		return GridImporting
	default:
		return GridUnknown
	}
}
