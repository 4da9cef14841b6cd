package logic

import (
	"testing"
	"time"
)

const debounce = 50 * time.Millisecond

// setupBaselinedDetector returns a detector baselined with all buttons released.
func setupBaselinedDetector(t *testing.T) (*Detector, time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(debounce)
	d.Process(Input{Time: now})
	d.Process(Input{Time: now.Add(debounce)})
	if !d.IsBaselined() {
		t.Fatal("setup: detector should be baselined")
	}
	return d, now.Add(debounce)
}

func TestNewDetector(t *testing.T) {
	d := NewDetector(debounce)
	if d == nil {
		t.Fatal("NewDetector returned nil")
	}
	if d.debounceDuration != debounce {
		t.Errorf("expected debounce duration %v, got %v", debounce, d.debounceDuration)
	}
	if d.IsBaselined() {
		t.Error("new detector should not be baselined")
	}
}

func TestBaselineEstablishment(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(debounce)

	if p := d.Process(Input{Time: now}); len(p) != 0 {
		t.Errorf("expected no presses during baseline, got %d", len(p))
	}
	if d.Process(Input{Time: now.Add(debounce / 2)}); d.IsBaselined() {
		t.Error("should not be baselined before debounce period")
	}
	if p := d.Process(Input{Time: now.Add(debounce)}); len(p) != 0 {
		t.Errorf("expected no presses at baseline, got %d", len(p))
	}
	if !d.IsBaselined() {
		t.Error("should be baselined after debounce period")
	}
}

func TestHeldAtBootIsNotAPress(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := NewDetector(debounce)

	for i := 0; i < 5; i++ {
		p := d.Process(Input{Start: true, Time: now.Add(time.Duration(i) * debounce)})
		if len(p) != 0 {
			t.Fatalf("sample %d: held button reported as press", i)
		}
	}
	start, _, _ := d.Held()
	if !start {
		t.Error("expected start held after baseline")
	}

	// Release then press again is a real press.
	base := now.Add(5 * debounce)
	d.Process(Input{Time: base})
	d.Process(Input{Time: base.Add(debounce)})
	d.Process(Input{Start: true, Time: base.Add(2 * debounce)})
	p := d.Process(Input{Start: true, Time: base.Add(3 * debounce)})
	if len(p) != 1 || p[0].Button != ButtonStart {
		t.Errorf("expected one start press, got %+v", p)
	}
}

func TestSinglePress(t *testing.T) {
	d, now := setupBaselinedDetector(t)

	if p := d.Process(Input{Stop: true, Time: now.Add(10 * time.Millisecond)}); len(p) != 0 {
		t.Errorf("press reported before debounce: %+v", p)
	}
	p := d.Process(Input{Stop: true, Time: now.Add(60 * time.Millisecond)})
	if len(p) != 1 {
		t.Fatalf("expected 1 press, got %d", len(p))
	}
	if p[0].Button != ButtonStop {
		t.Errorf("expected stop, got %s", p[0].Button)
	}
	if !p[0].Timestamp.Equal(now.Add(60 * time.Millisecond)) {
		t.Errorf("timestamp: got %v", p[0].Timestamp)
	}

	// Holding does not repeat.
	if p := d.Process(Input{Stop: true, Time: now.Add(500 * time.Millisecond)}); len(p) != 0 {
		t.Errorf("held button repeated: %+v", p)
	}
}

func TestReleaseIsNotReported(t *testing.T) {
	d, now := setupBaselinedDetector(t)
	d.Process(Input{Reset: true, Time: now.Add(10 * time.Millisecond)})
	d.Process(Input{Reset: true, Time: now.Add(70 * time.Millisecond)})

	d.Process(Input{Time: now.Add(100 * time.Millisecond)})
	if p := d.Process(Input{Time: now.Add(200 * time.Millisecond)}); len(p) != 0 {
		t.Errorf("release reported: %+v", p)
	}
	_, _, reset := d.Held()
	if reset {
		t.Error("reset should read released")
	}
}

func TestBounceRejected(t *testing.T) {
	d, now := setupBaselinedDetector(t)

	d.Process(Input{Start: true, Time: now.Add(10 * time.Millisecond)})
	d.Process(Input{Time: now.Add(20 * time.Millisecond)})
	if p := d.Process(Input{Time: now.Add(100 * time.Millisecond)}); len(p) != 0 {
		t.Errorf("bounce reported as press: %+v", p)
	}
}

func TestSimultaneousPressesOrdered(t *testing.T) {
	d, now := setupBaselinedDetector(t)

	in := Input{Start: true, Stop: true, Reset: true}
	in.Time = now.Add(10 * time.Millisecond)
	d.Process(in)
	in.Time = now.Add(60 * time.Millisecond)
	p := d.Process(in)

	if len(p) != 3 {
		t.Fatalf("expected 3 presses, got %d", len(p))
	}
	want := []Button{ButtonStart, ButtonStop, ButtonReset}
	for i, b := range want {
		if p[i].Button != b {
			t.Errorf("press %d: got %s, want %s", i, p[i].Button, b)
		}
	}
}
