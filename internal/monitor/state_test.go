package monitor

import (
	"testing"
	"time"

	"github.com/Ericlein/Eribot/internal/metric"
)

func cpuMachine(t *testing.T, opts Options) *Machine {
	t.Helper()
	m, err := NewMachine(map[metric.Kind]ThresholdConfig{
		metric.KindCPU: {Kind: metric.KindCPU, HighWaterMark: 90, LowWaterMark: 80},
	}, opts)
	if err != nil {
		t.Fatalf("NewMachine() error = %v", err)
	}
	return m
}

func cpuReading(value float64) metric.Reading {
	return metric.Reading{Kind: metric.KindCPU, Value: value, Hostname: "test-host", ObservedAt: time.Now()}
}

// step evaluates a raw value the way the scheduler does and advances.
func step(m *Machine, value float64, now time.Time) *Transition {
	cfg, _ := m.Threshold(metric.KindCPU)
	sev := Evaluate(value, cfg, m.IsAlerting(metric.KindCPU))
	return m.Advance(metric.KindCPU, sev, cpuReading(value), now)
}

func TestNewMachineRejectsInvertedWaterMarks(t *testing.T) {
	tests := []struct {
		name    string
		high    float64
		low     float64
		wantErr bool
	}{
		{"low below high", 90, 80, false},
		{"low equals high", 90, 90, true},
		{"low above high", 80, 90, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMachine(map[metric.Kind]ThresholdConfig{
				metric.KindCPU: {Kind: metric.KindCPU, HighWaterMark: tt.high, LowWaterMark: tt.low},
			}, Options{})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMachine(high=%g, low=%g) error = %v, wantErr %v", tt.high, tt.low, err, tt.wantErr)
			}
		})
	}
}

func TestSustainedBreachRaisesOnce(t *testing.T) {
	m := cpuMachine(t, Options{Cooldown: time.Minute, RenotifyInterval: 5})
	now := time.Now()

	raised := 0
	for i, v := range []float64{95, 95, 95} {
		tr := step(m, v, now.Add(time.Duration(i)*time.Minute))
		if tr != nil && tr.Type == TransitionRaised {
			raised++
		}
	}
	if raised != 1 {
		t.Errorf("raised %d times for a sustained breach, want exactly 1", raised)
	}
}

func TestTransitionSequenceForBreachStream(t *testing.T) {
	m := cpuMachine(t, Options{Cooldown: time.Minute, RenotifyInterval: 5})
	now := time.Now()

	type want struct {
		typ        TransitionType
		suppressed bool
		none       bool
	}
	steps := []struct {
		value float64
		want  want
	}{
		{50, want{none: true}},
		{92, want{typ: TransitionRaised}},
		{93, want{typ: TransitionRepeated, suppressed: true}},
		{91, want{typ: TransitionRepeated, suppressed: true}},
		{60, want{typ: TransitionCleared}},
	}

	for i, st := range steps {
		tr := step(m, st.value, now.Add(time.Duration(i)*time.Minute))
		if st.want.none {
			if tr != nil {
				t.Fatalf("step %d (value %g): got transition %s, want none", i, st.value, tr.Type)
			}
			continue
		}
		if tr == nil {
			t.Fatalf("step %d (value %g): got none, want %s", i, st.value, st.want.typ)
		}
		if tr.Type != st.want.typ {
			t.Errorf("step %d (value %g): type = %s, want %s", i, st.value, tr.Type, st.want.typ)
		}
		if tr.Suppressed != st.want.suppressed {
			t.Errorf("step %d (value %g): suppressed = %v, want %v", i, st.value, tr.Suppressed, st.want.suppressed)
		}
	}
}

func TestRenotifyCadence(t *testing.T) {
	m := cpuMachine(t, Options{Cooldown: time.Minute, RenotifyInterval: 3})
	now := time.Now()

	if tr := step(m, 95, now); tr == nil || tr.Type != TransitionRaised {
		t.Fatalf("first breach did not raise")
	}

	// breaches 2..7: only multiples of 3 are delivered
	wantSuppressed := map[int]bool{2: true, 3: false, 4: true, 5: true, 6: false, 7: true}
	for breach := 2; breach <= 7; breach++ {
		tr := step(m, 95, now.Add(time.Duration(breach)*time.Minute))
		if tr == nil || tr.Type != TransitionRepeated {
			t.Fatalf("breach %d: expected a repeated transition", breach)
		}
		if tr.ConsecutiveBreaches != breach {
			t.Errorf("breach %d: consecutive breaches = %d", breach, tr.ConsecutiveBreaches)
		}
		if tr.Suppressed != wantSuppressed[breach] {
			t.Errorf("breach %d: suppressed = %v, want %v", breach, tr.Suppressed, wantSuppressed[breach])
		}
	}
}

func TestCooldownBlocksReRaiseUntilElapsed(t *testing.T) {
	cooldown := 5 * time.Minute
	m := cpuMachine(t, Options{Cooldown: cooldown, RenotifyInterval: 5})
	base := time.Now()

	if tr := step(m, 95, base); tr == nil || tr.Type != TransitionRaised {
		t.Fatal("breach did not raise")
	}
	clearedAt := base.Add(time.Minute)
	tr := step(m, 40, clearedAt)
	if tr == nil || tr.Type != TransitionCleared {
		t.Fatal("recovery did not clear")
	}
	if tr.To != StatusCooldown {
		t.Errorf("cleared lands in %s, want cooldown", tr.To)
	}

	// a breach inside the dwell is swallowed
	if tr := step(m, 99, clearedAt.Add(2*time.Minute)); tr != nil {
		t.Errorf("breach during cooldown produced %s", tr.Type)
	}
	snap := m.Snapshot()
	if snap[0].Status != StatusCooldown {
		t.Errorf("status during dwell = %s, want cooldown", snap[0].Status)
	}
	if snap[0].CooldownUntil.Before(snap[0].LastTransitionAt) {
		t.Error("cooldownUntil is before lastTransitionAt")
	}

	// at expiry the same breach raises a fresh incident
	tr = step(m, 99, clearedAt.Add(cooldown))
	if tr == nil || tr.Type != TransitionRaised {
		t.Fatal("breach after cooldown did not raise")
	}
	if tr.From != StatusOk {
		t.Errorf("re-raise From = %s, want ok", tr.From)
	}
}

func TestStatusNeverSkipsCooldown(t *testing.T) {
	m := cpuMachine(t, Options{Cooldown: time.Minute, RenotifyInterval: 5})
	now := time.Now()

	seen := []Status{m.Snapshot()[0].Status}
	record := func() {
		st := m.Snapshot()[0].Status
		if seen[len(seen)-1] != st {
			seen = append(seen, st)
		}
	}

	step(m, 95, now)
	record()
	step(m, 40, now.Add(time.Minute))
	record()
	step(m, 40, now.Add(3*time.Minute)) // dwell elapsed, drops to ok
	record()

	want := []Status{StatusOk, StatusAlerting, StatusCooldown, StatusOk}
	if len(seen) != len(want) {
		t.Fatalf("status path = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("status path = %v, want %v", seen, want)
		}
	}
}

func TestClearedResetsBreachesAndMintsFreshIncident(t *testing.T) {
	m := cpuMachine(t, Options{Cooldown: time.Minute, RenotifyInterval: 5})
	now := time.Now()

	raised := step(m, 95, now)
	step(m, 95, now.Add(time.Minute))
	cleared := step(m, 40, now.Add(2*time.Minute))

	if cleared.ConsecutiveBreaches != 2 {
		t.Errorf("cleared carries %d breaches, want 2", cleared.ConsecutiveBreaches)
	}
	if cleared.IncidentID != raised.IncidentID {
		t.Error("cleared does not carry the raising incident id")
	}
	if m.Snapshot()[0].ConsecutiveBreaches != 0 {
		t.Error("breach counter not reset on leaving alerting")
	}

	again := step(m, 95, now.Add(4*time.Minute))
	if again == nil || again.Type != TransitionRaised {
		t.Fatal("second incident did not raise")
	}
	if again.IncidentID == raised.IncidentID {
		t.Error("second incident reused the first incident id")
	}
	if again.IncidentID == "" {
		t.Error("raised transition has no incident id")
	}
}

func TestWarningInsideBandKeepsAlertOpen(t *testing.T) {
	m := cpuMachine(t, Options{Cooldown: time.Minute, RenotifyInterval: 5})
	now := time.Now()

	step(m, 95, now)
	// 85 sits inside [80,90): no clear, no repeat, counter untouched
	if tr := step(m, 85, now.Add(time.Minute)); tr != nil {
		t.Errorf("band value produced %s", tr.Type)
	}
	snap := m.Snapshot()[0]
	if snap.Status != StatusAlerting {
		t.Errorf("status = %s, want alerting", snap.Status)
	}
	if snap.ConsecutiveBreaches != 1 {
		t.Errorf("consecutive breaches = %d, want 1", snap.ConsecutiveBreaches)
	}
}
