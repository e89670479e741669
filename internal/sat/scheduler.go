package sat

import "math"

// Representative adaptive-scheduling constants (spec.md §9 Open Questions:
// exact values vary across real solvers' revisions; these need only keep the
// resulting cadence within a factor of 2 of the declared base interval).
const (
	restartShortDecay   = 0.96   // ~25-conflict glue window
	restartLongDecay    = 0.9998 // ~5000-conflict glue window
	restartScaleMin     = 0.5
	restartScaleMax     = 3.0
	reduceScaleMin      = 0.70
	reduceScaleMax      = 1.50
	reduceOverheadTarget = 0.02 // reduce() should cost ~2% of total search time
	reduceOverheadDecay  = 0.85 // smoothing weight 0.85/0.15
	reduceTaperHorizon   = 1000
)

// RestartScheduler implements the restart half of C8: a glue-EMA trigger for
// focused mode and a reluctant-doubling (Luby) trigger for stable mode, plus
// the adaptive interval-scale factor (spec.md §4.8).
type RestartScheduler struct {
	enabled    bool
	marginPct  int
	reuseTrail bool
	adaptive   bool

	shortGlue, longGlue EMA
	conflictsSinceRestart int

	baseInterval int
	lubyIdx      int64
	lubyVal      int64

	scale float64
}

// RestartConfig mirrors the restart-related fields of sat.Options.
type RestartConfig struct {
	Enabled    bool
	Interval   int
	MarginPct  int
	ReuseTrail bool
	Adaptive   bool
}

// NewRestartScheduler returns a restart scheduler ready for the first
// conflict.
func NewRestartScheduler(cfg RestartConfig) *RestartScheduler {
	return &RestartScheduler{
		enabled:      cfg.Enabled,
		marginPct:    cfg.MarginPct,
		reuseTrail:   cfg.ReuseTrail,
		adaptive:     cfg.Adaptive,
		shortGlue:    NewEMA(restartShortDecay),
		longGlue:     NewEMA(restartLongDecay),
		baseInterval: cfg.Interval,
		lubyIdx:      1,
		lubyVal:      luby(1),
		scale:        1.0,
	}
}

// NotifyConflict folds a newly learned clause's glue into both EMA windows.
func (r *RestartScheduler) NotifyConflict(glue int) {
	r.shortGlue.Add(float64(glue))
	r.longGlue.Add(float64(glue))
	r.conflictsSinceRestart++
}

// ShouldRestart reports whether a restart is due, per the active mode's
// trigger (spec.md §4.8).
func (r *RestartScheduler) ShouldRestart(stable bool) bool {
	if !r.enabled {
		return false
	}
	if stable {
		threshold := int64(float64(r.baseInterval)*r.scale) * r.lubyVal
		return int64(r.conflictsSinceRestart) >= threshold
	}
	if !r.shortGlue.init || !r.longGlue.init {
		return false
	}
	margin := 1 + float64(r.marginPct)/100
	return r.shortGlue.Val() > margin*r.longGlue.Val()
}

// OnRestart advances the Luby sequence and resets the per-restart windows.
func (r *RestartScheduler) OnRestart() {
	r.conflictsSinceRestart = 0
	r.shortGlue.Reset()
	r.lubyIdx++
	r.lubyVal = luby(r.lubyIdx)
}

// AdjustScale folds a new efficacy sample into the restart interval's
// adaptive scale, clamped to [restartScaleMin, restartScaleMax] (spec.md
// §4.8 "decision/conflict ratio... clamped relative to the base interval").
func (r *RestartScheduler) AdjustScale(efficacy float64) {
	if !r.adaptive {
		return
	}
	r.scale += (efficacy - 1) * 0.1
	if r.scale < restartScaleMin {
		r.scale = restartScaleMin
	}
	if r.scale > restartScaleMax {
		r.scale = restartScaleMax
	}
}

// luby returns the i-th term (1-indexed) of the Luby sequence
// (1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,...), re-derived from the standard
// recursive definition rather than imported from any existing solver.
func luby(i int64) int64 {
	for k := int64(1); k < 62; k++ {
		p := int64(1) << uint(k)
		if i == p-1 {
			return p / 2
		}
		if p/2 <= i && i < p-1 {
			return luby(i - p/2 + 1)
		}
	}
	return 1
}

// ReduceScheduler implements the reduce half of C8: a conflict-budget
// trigger and the adaptive next-trigger interval (spec.md §4.8).
type ReduceScheduler struct {
	enabled      bool
	baseInterval int
	highTenths   int
	lowTenths    int
	adaptive     bool
	factorPct    int
	tier1, tier2 int

	conflictsSinceReduce int
	nextTrigger          int
	reductions           int
	scale                float64
	overhead             EMA
}

// ReduceConfig mirrors the reduce-related fields of sat.Options.
type ReduceConfig struct {
	Enabled    bool
	Interval   int
	HighTenths int
	LowTenths  int
	Adaptive   bool
	FactorPct  int
	Tier1      int
	Tier2      int
}

// NewReduceScheduler returns a reduce scheduler ready for the first conflict.
func NewReduceScheduler(cfg ReduceConfig) *ReduceScheduler {
	return &ReduceScheduler{
		enabled:      cfg.Enabled,
		baseInterval: cfg.Interval,
		highTenths:   cfg.HighTenths,
		lowTenths:    cfg.LowTenths,
		adaptive:     cfg.Adaptive,
		factorPct:    cfg.FactorPct,
		tier1:        cfg.Tier1,
		tier2:        cfg.Tier2,
		nextTrigger:  cfg.Interval,
		scale:        1.0,
		overhead:     NewEMA(reduceOverheadDecay),
	}
}

// NotifyConflict advances the reduce budget counter.
func (r *ReduceScheduler) NotifyConflict() {
	r.conflictsSinceReduce++
}

// ShouldReduce reports whether the conflict budget has been exhausted.
func (r *ReduceScheduler) ShouldReduce() bool {
	return r.enabled && r.conflictsSinceReduce >= r.nextTrigger
}

// deletionPercent returns the fraction (0-1) of reduce candidates to delete,
// log-interpolated from highTenths (early, aggressive) down to lowTenths
// (late, conservative) as reductions accumulate (spec.md §4.8).
func (r *ReduceScheduler) deletionPercent() float64 {
	t := math.Log1p(float64(r.reductions)) / math.Log1p(float64(reduceTaperHorizon))
	if t > 1 {
		t = 1
	}
	high := float64(r.highTenths) / 1000
	low := float64(r.lowTenths) / 1000
	return high - t*(high-low)
}

// OnReduce folds the measured cost of the just-finished reduce pass into the
// overhead EMA, adjusts the adaptive scale, and schedules the next trigger.
func (r *ReduceScheduler) OnReduce(elapsedSeconds, totalSeconds float64) {
	r.reductions++
	r.conflictsSinceReduce = 0

	if r.adaptive && totalSeconds > 0 {
		r.overhead.Add(elapsedSeconds / totalSeconds)
		deviation := (r.overhead.Val() - reduceOverheadTarget) * (float64(r.factorPct) / 100)
		r.scale += deviation
		if r.scale < reduceScaleMin {
			r.scale = reduceScaleMin
		}
		if r.scale > reduceScaleMax {
			r.scale = reduceScaleMax
		}
	}

	next := float64(r.baseInterval) * r.scale * math.Sqrt(float64(r.reductions))
	r.nextTrigger = int(next)
	if r.nextTrigger < r.baseInterval/2 {
		r.nextTrigger = r.baseInterval / 2
	}
}
