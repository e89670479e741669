package sat

// EMA is an exponential moving average, used by the restart scheduler to
// track short/long glue windows and by the reduce scheduler to track
// overhead fraction (spec.md §4.8). Grounded on the teacher's sat/avg.go,
// unchanged.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay (weight retained from the
// previous value on each Add).
func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

// Add folds x into the average. The first call seeds the average with x.
func (ema *EMA) Add(x float64) {
	if !ema.init {
		ema.init = true
		ema.value = x
	} else {
		ema.value = ema.decay*ema.value + x*(1-ema.decay)
	}
}

// Val returns the current average.
func (ema *EMA) Val() float64 {
	return ema.value
}

// Reset clears the average back to its unseeded state, used when the
// scheduler switches mode (spec.md §4.8 "resets EMAs").
func (ema *EMA) Reset() {
	ema.value = 0
	ema.init = false
}
