package indicator

// CalculateSMA returns the simple average of values, 0 for an empty slice.
func CalculateSMA(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RollingSMA keeps the most recent period samples and averages them.
type RollingSMA struct {
	period  int
	samples []float64
}

// NewRollingSMA creates a window of the given length; lengths below 1 are
// raised to 1.
func NewRollingSMA(period int) *RollingSMA {
	if period < 1 {
		period = 1
	}
	return &RollingSMA{
		period:  period,
		samples: make([]float64, 0, period+1),
	}
}

// Push appends a sample, evicts the oldest once the window is over its
// length, and returns the new average.
func (r *RollingSMA) Push(v float64) float64 {
	r.samples = append(r.samples, v)
	if len(r.samples) > r.period {
		r.samples = append(r.samples[:0], r.samples[1:]...)
	}
	return r.Value()
}

// Value returns the current average, 0 when empty.
func (r *RollingSMA) Value() float64 {
	return CalculateSMA(r.samples)
}

func (r *RollingSMA) Period() int { return r.period }
func (r *RollingSMA) Len() int    { return len(r.samples) }

// Samples returns a copy of the retained samples, oldest first.
func (r *RollingSMA) Samples() []float64 {
	out := make([]float64, len(r.samples))
	copy(out, r.samples)
	return out
}

func (r *RollingSMA) Reset() {
	r.samples = r.samples[:0]
}
