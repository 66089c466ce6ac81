// internal/status/status_test.go
package status

import (
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/solax-monitor/internal/registers"
)

func ms(kv map[string]float64) registers.Measurements {
	out := registers.Measurements{}
	for k, v := range kv {
		out[k] = registers.Measurement{Value: v, Unit: registers.UnitW}
	}
	return out
}

func TestProject_Directions(t *testing.T) {
	tests := []struct {
		name    string
		battery float64
		grid    float64
		wantB   BatteryDirection
		wantG   GridDirection
	}{
		{"charging exporting", 250, 100, BatteryCharging, GridExporting},
		{"discharging importing", -250, -100, BatteryDischarging, GridImporting},
		{"idle", 0, 0, BatteryIdle, GridIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Project(ms(map[string]float64{
				registers.NameBatteryPower: tt.battery,
				registers.NameGridPower:    tt.grid,
			}))

			if s.BatteryDirection != tt.wantB {
				t.Errorf("battery direction = %v, want %v", s.BatteryDirection, tt.wantB)
			}
			if s.GridDirection != tt.wantG {
				t.Errorf("grid direction = %v, want %v", s.GridDirection, tt.wantG)
			}
			if s.BatteryPowerW < 0 || s.GridPowerW < 0 {
				t.Errorf("magnitudes must be absolute, got battery=%v grid=%v", s.BatteryPowerW, s.GridPowerW)
			}
		})
	}
}

func TestProject_MissingDefaultsZero(t *testing.T) {
	s := Project(registers.Measurements{})

	want := Snapshot{BatteryDirection: BatteryIdle, GridDirection: GridIdle}
	if s != want {
		t.Fatalf("Project(empty) = %+v, want %+v", s, want)
	}
}

func TestProject_FromDecodedGrid(t *testing.T) {
	raw := make(registers.Raw, 110)
	raw[34] = 0xFFFF
	raw[35] = 0xFFFF

	s := Project(registers.Decode(raw, registers.ForModel(registers.ModelX3HybridG4)))

	if s.GridPowerW != 1 {
		t.Errorf("grid power = %v, want 1", s.GridPowerW)
	}
	if s.GridDirection != GridImporting {
		t.Errorf("grid direction = %v, want Importing", s.GridDirection)
	}
}

func TestEncode(t *testing.T) {
	s := Snapshot{
		SolarW:           2200,
		BatteryPct:       87,
		BatteryPowerW:    250.04,
		BatteryDirection: BatteryDischarging,
		GridPowerW:       0,
		GridDirection:    GridIdle,
		HomeConsumptionW: 912.55,
	}

	got := Encode(s)
	want := Record{
		SolarPanels:     "2200.0W",
		Batteries:       "87.0%",
		BatteryStatus:   "Discharging",
		BatteryPower:    "250.0W",
		GridStatus:      "Idle",
		GridPower:       "0.0W",
		HomeConsumption: "912.5W",
	}
	if got != want {
		t.Fatalf("Encode() = %+v\nwant %+v", got, want)
	}
}

func TestParse(t *testing.T) {
	r := Record{
		SolarPanels:     "50.0W",
		Batteries:       "5.0%",
		BatteryStatus:   "Discharging",
		BatteryPower:    "350.5W",
		GridStatus:      "Idle",
		GridPower:       "0.0W",
		HomeConsumption: "400.0W",
	}

	got := Parse(r)
	want := Snapshot{
		SolarW:           50,
		BatteryPct:       5,
		BatteryPowerW:    350.5,
		BatteryDirection: BatteryDischarging,
		GridPowerW:       0,
		GridDirection:    GridIdle,
		HomeConsumptionW: 400,
	}
	if got != want {
		t.Fatalf("Parse() = %+v\nwant %+v", got, want)
	}
}

func TestParse_MalformedDefaultsZero(t *testing.T) {
	r := Record{
		SolarPanels:     "lots",
		Batteries:       "",
		BatteryStatus:   "Sideways",
		BatteryPower:    "W",
		GridStatus:      "",
		GridPower:       "12kW",
		HomeConsumption: " 7.5W ",
	}

	got := Parse(r)
	if got.SolarW != 0 || got.BatteryPct != 0 || got.BatteryPowerW != 0 || got.GridPowerW != 0 {
		t.Errorf("malformed numbers must read as 0, got %+v", got)
	}
	if got.HomeConsumptionW != 7.5 {
		t.Errorf("home consumption = %v, want 7.5", got.HomeConsumptionW)
	}
	if got.BatteryDirection != BatteryUnknown || got.GridDirection != GridUnknown {
		t.Errorf("unknown labels must parse as Unknown, got %v / %v", got.BatteryDirection, got.GridDirection)
	}
}

func TestInitialParsesToZero(t *testing.T) {
	got := Parse(Initial())
	if got != (Snapshot{}) {
		t.Fatalf("Parse(Initial()) = %+v, want zero", got)
	}
}

func TestHolder_PublishLatest(t *testing.T) {
	h := NewHolder()

	rec, at := h.Latest()
	if rec != Initial() || !at.IsZero() {
		t.Fatalf("new holder = %+v at %v, want Initial at zero", rec, at)
	}

	now := time.Now()
	next := Encode(Snapshot{SolarW: 1})
	h.Publish(next, now)

	rec, at = h.Latest()
	if rec != next || !at.Equal(now) {
		t.Fatalf("Latest() = %+v at %v, want %+v at %v", rec, at, next, now)
	}
}

func TestHolder_ReadersSeeWholeRecords(t *testing.T) {
	h := NewHolder()
	a := Encode(Snapshot{SolarW: 1, BatteryPct: 1, HomeConsumptionW: 1})
	b := Encode(Snapshot{SolarW: 2, BatteryPct: 2, HomeConsumptionW: 2})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				h.Publish(a, time.Now())
			} else {
				h.Publish(b, time.Now())
			}
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				rec, _ := h.Latest()
				if rec != a && rec != b && rec != Initial() {
					t.Errorf("torn record observed: %+v", rec)
					return
				}
			}
		}()
	}

	wg.Wait()
}
