// internal/status/constants.go
package status

// Record rendering is part of the wire contract with the guard.
// These values MUST NOT be configurable.

// ---- UNIT SUFFIXES ----

const SuffixWatts = "W"
const SuffixPercent = "%"

// ---- LABELS ----

const LabelUnknown = "Unknown"
const LabelIdle = "Idle"

const LabelCharging = "Charging"
const LabelDischarging = "Discharging"

const LabelImporting = "Importing"
const LabelExporting = "Exporting"
