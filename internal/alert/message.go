// internal/alert/message.go
package alert

import (
	"strconv"
	"strings"

	"github.com/tamzrod/solax-monitor/internal/status"
)

// CriticalMessage is the alert text sent when shutdown is triggered.
func CriticalMessage(s status.Snapshot) string {
	var b strings.Builder
	b.WriteString("🚨 CRITICAL POWER ALERT!\n")
	b.WriteString("Grid: " + num(s.GridPowerW) + "W (Offline)\n")
	b.WriteString("Solar: " + num(s.SolarW) + "W\n")
	b.WriteString("Home Consumption: " + num(s.HomeConsumptionW) + "W\n")
	b.WriteString("Battery: " + num(s.BatteryPct) + "%\n")
	b.WriteString("\n")
	b.WriteString("⚠️ Initiating server shutdown sequence...")
	return b.String()
}

// RecoveryMessage is the alert text sent when conditions normalize.
func RecoveryMessage(s status.Snapshot) string {
	var b strings.Builder
	b.WriteString("✅ Power conditions normalized!\n")
	b.WriteString("Grid: " + num(s.GridPowerW) + "W\n")
	b.WriteString("Solar: " + num(s.SolarW) + "W\n")
	b.WriteString("Home Consumption: " + num(s.HomeConsumptionW) + "W\n")
	b.WriteString("Battery: " + num(s.BatteryPct) + "%\n")
	return b.String()
}

// shortest representation: 400 not 400.0
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
