package sat

import "testing"

func TestLuby_KnownPrefix(t *testing.T) {
	want := []int64{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}
	for i, w := range want {
		if got := luby(int64(i + 1)); got != w {
			t.Errorf("luby(%d) = %d, want %d", i+1, got, w)
		}
	}
}

func TestRestartScheduler_DisabledNeverRestarts(t *testing.T) {
	r := NewRestartScheduler(RestartConfig{Enabled: false, Interval: 1})
	for i := 0; i < 1000; i++ {
		r.NotifyConflict(5)
	}
	if r.ShouldRestart(false) || r.ShouldRestart(true) {
		t.Errorf("ShouldRestart() = true while disabled")
	}
}

func TestRestartScheduler_StableModeUsesLubyThreshold(t *testing.T) {
	r := NewRestartScheduler(RestartConfig{Enabled: true, Interval: 10})
	for i := 0; i < 9; i++ {
		r.NotifyConflict(3)
	}
	if r.ShouldRestart(true) {
		t.Fatalf("ShouldRestart(stable) = true before the Luby(1)*interval threshold")
	}
	r.NotifyConflict(3)
	if !r.ShouldRestart(true) {
		t.Errorf("ShouldRestart(stable) = false at the threshold")
	}
}

func TestRestartScheduler_FocusedModeTriggersOnGlueDivergence(t *testing.T) {
	r := NewRestartScheduler(RestartConfig{Enabled: true, Interval: 100, MarginPct: 20})
	if r.ShouldRestart(false) {
		t.Fatalf("ShouldRestart(focused) = true before either EMA is seeded")
	}
	for i := 0; i < 200; i++ {
		r.NotifyConflict(2) // low, stable glue seeds both EMAs near 2.
	}
	if r.ShouldRestart(false) {
		t.Fatalf("ShouldRestart(focused) = true with converged EMAs")
	}
	for i := 0; i < 5; i++ {
		r.NotifyConflict(100) // sudden spike should pull the short EMA above the long one.
	}
	if !r.ShouldRestart(false) {
		t.Errorf("ShouldRestart(focused) = false after a glue spike")
	}
}

func TestRestartScheduler_OnRestartAdvancesLubyAndResetsWindow(t *testing.T) {
	r := NewRestartScheduler(RestartConfig{Enabled: true, Interval: 1})
	r.NotifyConflict(5)
	r.OnRestart()

	if got, want := r.conflictsSinceRestart, 0; got != want {
		t.Errorf("conflictsSinceRestart = %d, want %d", got, want)
	}
	if got, want := r.lubyIdx, int64(2); got != want {
		t.Errorf("lubyIdx = %d, want %d", got, want)
	}
}

func TestRestartScheduler_AdjustScaleClampsToBounds(t *testing.T) {
	r := NewRestartScheduler(RestartConfig{Enabled: true, Adaptive: true})
	for i := 0; i < 1000; i++ {
		r.AdjustScale(100) // push hard toward the upper bound.
	}
	if r.scale != restartScaleMax {
		t.Errorf("scale = %v, want clamped %v", r.scale, restartScaleMax)
	}
	for i := 0; i < 1000; i++ {
		r.AdjustScale(-100)
	}
	if r.scale != restartScaleMin {
		t.Errorf("scale = %v, want clamped %v", r.scale, restartScaleMin)
	}
}

func TestReduceScheduler_ShouldReduceRespectsIntervalAndEnabled(t *testing.T) {
	r := NewReduceScheduler(ReduceConfig{Enabled: true, Interval: 3})
	for i := 0; i < 2; i++ {
		r.NotifyConflict()
	}
	if r.ShouldReduce() {
		t.Fatalf("ShouldReduce() = true before interval elapses")
	}
	r.NotifyConflict()
	if !r.ShouldReduce() {
		t.Errorf("ShouldReduce() = false at interval")
	}

	disabled := NewReduceScheduler(ReduceConfig{Enabled: false, Interval: 1})
	disabled.NotifyConflict()
	if disabled.ShouldReduce() {
		t.Errorf("ShouldReduce() = true while disabled")
	}
}

func TestReduceScheduler_DeletionPercentTapersTowardLow(t *testing.T) {
	r := NewReduceScheduler(ReduceConfig{HighTenths: 750, LowTenths: 250})

	first := r.deletionPercent()
	if got, want := first, 0.75; got != want {
		t.Errorf("deletionPercent() before any reduce = %v, want %v", got, want)
	}

	for i := 0; i < reduceTaperHorizon; i++ {
		r.OnReduce(0, 0)
	}
	last := r.deletionPercent()
	if last >= first {
		t.Errorf("deletionPercent() did not taper down: first %v, after horizon %v", first, last)
	}
	if last < 0.25 {
		t.Errorf("deletionPercent() = %v, dropped below the low floor %v", last, 0.25)
	}
}

func TestReduceScheduler_OnReduceSchedulesNextTrigger(t *testing.T) {
	r := NewReduceScheduler(ReduceConfig{Interval: 100})
	r.conflictsSinceReduce = 100
	r.OnReduce(0, 0)

	if got, want := r.conflictsSinceReduce, 0; got != want {
		t.Errorf("conflictsSinceReduce = %d, want %d", got, want)
	}
	if r.nextTrigger < r.baseInterval/2 {
		t.Errorf("nextTrigger = %d, fell below the baseInterval/2 floor", r.nextTrigger)
	}
}
